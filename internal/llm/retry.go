package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type retrying struct {
	inner   Provider
	cfg     RetryConfig
	timeout time.Duration
	sleep   func(context.Context, time.Duration) error
}

// WithRetry retries transient failures with exponential backoff. A
// positive timeout bounds the whole call, retries included.
func WithRetry(p Provider, cfg RetryConfig, timeout time.Duration) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retrying{inner: p, cfg: cfg, timeout: timeout, sleep: sleepCtx}
}

func (r *retrying) Name() string  { return r.inner.Name() }
func (r *retrying) Model() string { return r.inner.Model() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var (
		err            error
		invalidRetried bool
	)
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if serr := r.sleep(ctx, r.delay(attempt-1, err)); serr != nil {
				return nil, serr
			}
		}

		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, &invalidRetried) {
			return nil, err
		}
	}
	return nil, err
}

// retryable reports whether err is worth another attempt. Invalid output
// is retried once since a second sample often conforms.
func retryable(err error, invalidRetried *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var truncated *TruncatedError
	if errors.As(err, &truncated) {
		return false
	}

	var invalid *InvalidOutputError
	if errors.As(err, &invalid) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

func (r *retrying) delay(attempt int, err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	d := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt))
	if ceil := float64(r.cfg.MaxWait); ceil > 0 && d > ceil {
		d = ceil
	}
	// +/-20% jitter
	d += d * 0.2 * (2*rand.Float64() - 1)
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
