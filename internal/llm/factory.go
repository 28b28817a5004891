package llm

import (
	"context"
	"fmt"
)

// New builds the configured provider. Calls pass through retry, then
// recording (when rec is non-nil), then the provider itself, so every
// attempt is recorded.
func New(ctx context.Context, cfg Config, rec Recorder) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ep, err := cfg.Selected()
	if err != nil {
		return nil, err
	}

	var base Provider
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropic(ep)
	case ProviderOpenAI:
		base, err = NewOpenAI(ep)
	case ProviderOpenRouter:
		base, err = NewOpenRouter(ep)
	case ProviderGemini:
		base, err = NewGemini(ctx, ep)
	case ProviderMock:
		base = NewMock()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	if rec != nil {
		base = WithRecording(base, rec)
	}
	return WithRetry(base, cfg.Retry, cfg.Timeout), nil
}
