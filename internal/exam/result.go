package exam

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/secprep/internal/validate"
)

// Payload is what a completed session hands to the result-reporting
// collaborator. JSON names match the course platform's results API.
type Payload struct {
	Email          string `json:"email" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Score          int    `json:"score" validate:"min=0"`
	TotalQuestions int    `json:"totalQuestions" validate:"min=1"`
	TimeTaken      int    `json:"timeTaken" validate:"min=0"`
	TestType       string `json:"testType" validate:"required"`
}

// Receipt is the collaborator's answer.
type Receipt struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Reporter delivers a result to wherever results are recorded.
type Reporter interface {
	Report(ctx context.Context, p Payload) (*Receipt, error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, p Payload) (*Receipt, error)

func (f ReporterFunc) Report(ctx context.Context, p Payload) (*Receipt, error) {
	return f(ctx, p)
}

// Payload builds the result for a completed session. Name and email are
// trimmed and must be non-empty; email format is left to the collaborator.
func (s *Session) Payload(name, email string) (Payload, error) {
	if s.phase != PhaseCompleted {
		return Payload{}, ErrNotCompleted
	}
	p := Payload{
		Email:          strings.TrimSpace(email),
		Name:           strings.TrimSpace(name),
		Score:          s.score,
		TotalQuestions: len(s.answers),
		TimeTaken:      s.TimeTaken(),
		TestType:       s.TestType(),
	}
	if err := validate.Struct(p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return p, nil
}

// Report sends p through r. Any error or a receipt with Success=false comes
// back as a *SubmissionError. There is no retry.
func Report(ctx context.Context, r Reporter, p Payload) (*Receipt, error) {
	receipt, err := r.Report(ctx, p)
	if err != nil {
		msg := ""
		if receipt != nil {
			msg = receipt.Message
		}
		return receipt, &SubmissionError{Message: msg, Err: err}
	}
	if receipt == nil {
		return nil, &SubmissionError{Message: "empty response from result service"}
	}
	if !receipt.Success {
		return receipt, &SubmissionError{Message: receipt.Message}
	}
	return receipt, nil
}

// SubmitResult builds the payload and reports it. The session is not
// modified, so a failed call can simply be repeated.
func (s *Session) SubmitResult(ctx context.Context, r Reporter, name, email string) (*Receipt, error) {
	p, err := s.Payload(name, email)
	if err != nil {
		return nil, err
	}
	return Report(ctx, r, p)
}
