package llm

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures a provider. It is decoded by viper from
// the "llm" section of the secprep config.
type Config struct {
	// Provider is one of the Provider* constants. Empty means discover a
	// provider from the standard API key variables.
	Provider string `mapstructure:"provider" yaml:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`

	Anthropic  Endpoint `mapstructure:"anthropic" yaml:"anthropic"`
	OpenAI     Endpoint `mapstructure:"openai" yaml:"openai"`
	Gemini     Endpoint `mapstructure:"gemini" yaml:"gemini"`
	OpenRouter Endpoint `mapstructure:"openrouter" yaml:"openrouter"`

	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// Endpoint is the per-provider connection setting.
type Endpoint struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"gte=1"`
	InitialWait time.Duration `mapstructure:"initial_wait" yaml:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `mapstructure:"max_wait" yaml:"max_wait" validate:"gte=0"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier" validate:"gte=1"`
}

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// Defaults returns the built-in configuration with no provider selected.
func Defaults() Config {
	return Config{
		Anthropic:  Endpoint{Model: "claude-haiku"},
		OpenAI:     Endpoint{Model: "gpt-4o-mini"},
		Gemini:     Endpoint{Model: "gemini-flash"},
		OpenRouter: Endpoint{Model: "google/gemini-2.0-flash-exp", BaseURL: defaultOpenRouterURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 90 * time.Second,
	}
}

// standardKeys lists the vendor API key variables in discovery order.
var standardKeys = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Discover fills empty API keys from the vendors' standard environment
// variables and, when no provider is selected, picks the first provider
// that has a key. lookup is usually os.Getenv.
func (c Config) Discover(lookup func(string) string) Config {
	for _, k := range standardKeys {
		ep := c.endpoint(k.provider)
		if ep.APIKey == "" {
			ep.APIKey = lookup(k.env)
		}
	}
	if c.Provider != "" {
		return c
	}
	for _, k := range standardKeys {
		if c.endpoint(k.provider).APIKey != "" {
			c.Provider = k.provider
			break
		}
	}
	return c
}

func (c *Config) endpoint(provider string) *Endpoint {
	switch provider {
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderGemini:
		return &c.Gemini
	case ProviderOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// Selected returns the endpoint of the chosen provider. The mock provider
// has an empty endpoint.
func (c Config) Selected() (Endpoint, error) {
	switch c.Provider {
	case "":
		return Endpoint{}, ErrNoProvider
	case ProviderMock:
		return Endpoint{Model: "mock"}, nil
	}
	ep := c.endpoint(c.Provider)
	if ep == nil {
		return Endpoint{}, fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	return *ep, nil
}

// Validate checks that a provider is selected and has an API key.
func (c Config) Validate() error {
	ep, err := c.Selected()
	if err != nil {
		return err
	}
	if c.Provider != ProviderMock && ep.APIKey == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider (or set SECPREP_LLM_%s_API_KEY)",
			c.Provider, c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}
