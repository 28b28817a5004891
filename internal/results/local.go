package results

import (
	"context"
	"fmt"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/store"
)

// Offline accepts every result. Paired with Recorded it keeps results in
// the local store when no API is configured.
type Offline struct{}

// Report implements exam.Reporter.
func (Offline) Report(context.Context, exam.Payload) (*exam.Receipt, error) {
	return &exam.Receipt{Success: true, Message: "result saved locally"}, nil
}

type sessionKey struct{}

// WithSession attaches the exam session ID recorded with result events.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom extracts the session ID from ctx, or "".
func SessionFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}

// Recorded decorates a reporter and appends every delivery attempt,
// successful or not, to the event store. A failure to record is noted in
// the receipt message; it never changes the outcome.
type Recorded struct {
	inner  exam.Reporter
	name   string
	events store.EventRepo
}

// WithRecording wraps inner so each Report call is logged under name.
func WithRecording(inner exam.Reporter, name string, events store.EventRepo) *Recorded {
	return &Recorded{inner: inner, name: name, events: events}
}

// Report implements exam.Reporter.
func (r *Recorded) Report(ctx context.Context, p exam.Payload) (*exam.Receipt, error) {
	receipt, err := r.inner.Report(ctx, p)

	data := store.ResultEventData{
		SessionID: SessionFrom(ctx),
		TestType:  p.TestType,
		Name:      p.Name,
		Email:     p.Email,
		Score:     p.Score,
		Total:     p.TotalQuestions,
		TimeTaken: p.TimeTaken,
		Reporter:  r.name,
	}
	if receipt != nil {
		data.Success = receipt.Success
		data.Message = receipt.Message
	}
	if err != nil {
		data.Success = false
		data.Message = err.Error()
	}

	if r.events != nil {
		if logErr := r.events.AppendResultEvent(context.WithoutCancel(ctx), data); logErr != nil && receipt != nil {
			receipt = withWarning(receipt, fmt.Sprintf("not recorded locally: %v", logErr))
		}
	}
	return receipt, err
}
