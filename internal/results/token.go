package results

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned before any request is made when the API token
// is a JWT whose exp claim is in the past.
var ErrTokenExpired = errors.New("api token expired")

// TokenInfo describes the API token without verifying its signature.
// The course platform verifies it; the client only reads the claims to
// fail fast and to show them in `config show`.
type TokenInfo struct {
	IsJWT     bool
	Subject   string
	Issuer    string
	ExpiresAt time.Time // zero if the token has no exp claim
}

// DescribeToken reads the registered claims of token. Opaque (non-JWT)
// tokens yield IsJWT=false and no error.
func DescribeToken(token string) TokenInfo {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}
	info := TokenInfo{IsJWT: true, Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// CheckToken returns ErrTokenExpired if token is a JWT that expired before now.
func CheckToken(token string, now time.Time) error {
	info := DescribeToken(token)
	if !info.IsJWT || info.ExpiresAt.IsZero() {
		return nil
	}
	if !now.Before(info.ExpiresAt) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, info.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
