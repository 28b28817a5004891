// Package results delivers completed exam results: to the course platform's
// REST API, to the local store, and by email.
package results

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhisek/secprep/internal/exam"
)

// ResultsPath is the course platform endpoint that accepts results.
const ResultsPath = "/api/results"

// DefaultTimeout bounds one result POST.
const DefaultTimeout = 15 * time.Second

// StatusError reports a non-2xx response from the results API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("results API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("results API returned %d", e.StatusCode)
}

// HTTPReporter POSTs results as JSON with a bearer token.
type HTTPReporter struct {
	baseURL string
	token   string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPReporter creates a reporter for the API at baseURL. An empty token
// sends no Authorization header. timeout <= 0 uses DefaultTimeout.
func NewHTTPReporter(baseURL, token string, timeout time.Duration) *HTTPReporter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPReporter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Report implements exam.Reporter.
func (r *HTTPReporter) Report(ctx context.Context, p exam.Payload) (*exam.Receipt, error) {
	if r.token != "" {
		if err := CheckToken(r.token, r.now()); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+ResultsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post result: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	receipt := decodeReceipt(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		receipt.Success = false
		if receipt.Message == "" {
			receipt.Message = http.StatusText(resp.StatusCode)
		}
		return receipt, &StatusError{StatusCode: resp.StatusCode, Message: receipt.Message}
	}
	return receipt, nil
}

// decodeReceipt reads {success, message}. An empty body counts as success;
// a body that is not JSON becomes the message.
func decodeReceipt(raw []byte) *exam.Receipt {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &exam.Receipt{Success: true}
	}
	var receipt exam.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return &exam.Receipt{Message: string(raw)}
	}
	return &receipt
}
