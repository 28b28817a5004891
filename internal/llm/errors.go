package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoProvider is returned when no provider is selected and none could be
// discovered from the environment.
var ErrNoProvider = errors.New("no LLM provider configured")

// RateLimitError is a 429 from the provider.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// UnavailableError covers 5xx responses and transport failures.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// InvalidOutputError means the content is not JSON or does not match the
// requested schema.
type InvalidOutputError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid LLM output: %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error { return e.Err }

// TruncatedError means generation stopped at MaxTokens before the
// structured output was complete.
type TruncatedError struct {
	Content json.RawMessage
}

func (e *TruncatedError) Error() string {
	return "LLM output truncated at max tokens"
}
