package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/secprep/internal/store"
)

type purposeKey struct{}

// WithPurpose labels the LLM calls made with ctx, e.g. "bank-draft".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}

// Recorder stores one event per LLM call. store.EventRepo satisfies it.
type Recorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type recording struct {
	inner Provider
	rec   Recorder
	now   func() time.Time
}

// WithRecording records every call made through p, failed ones included.
// A failure to record is reported on stderr and never fails the call.
func WithRecording(p Provider, rec Recorder) Provider {
	return &recording{inner: p, rec: rec, now: time.Now}
}

func (r *recording) Name() string  { return r.inner.Name() }
func (r *recording) Model() string { return r.inner.Model() }

func (r *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  r.inner.Name(),
		Model:     r.inner.Model(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: r.now().Sub(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// ctx may already be cancelled; the event is still worth keeping.
	if lerr := r.rec.AppendLLMRequest(context.WithoutCancel(ctx), data); lerr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record LLM request: %v\n", lerr)
	}
	return resp, err
}
