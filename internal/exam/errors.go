package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for an out-of-range option or question
	// index, and for missing name or email on submission.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotCompleted is returned when a result is requested before the
	// session has been submitted or has expired.
	ErrNotCompleted = errors.New("session not completed")

	// ErrSubmissionFailed is matched by every *SubmissionError.
	ErrSubmissionFailed = errors.New("result submission failed")

	// ErrStateMismatch is returned when a saved state does not fit the bank.
	ErrStateMismatch = errors.New("saved state does not match bank")
)

// IndexError reports an index outside [0, Limit).
type IndexError struct {
	Op    string
	Index int
	Limit int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Op, e.Index, e.Limit)
}

func (e *IndexError) Unwrap() error { return ErrInvalidArgument }

// SubmissionError is returned when the result-reporting collaborator fails
// or rejects the payload. Session state is untouched, so the caller can retry.
type SubmissionError struct {
	// Message is the collaborator's explanation, if it gave one.
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("result submission failed: %s: %v", e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("result submission failed: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("result submission failed: %s", e.Message)
	default:
		return "result submission failed"
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == ErrSubmissionFailed }
