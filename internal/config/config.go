// Package config loads secprep settings from defaults, an optional YAML
// file, a .env file, SECPREP_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/secprep/internal/llm"
	"github.com/abhisek/secprep/internal/results"
	"github.com/abhisek/secprep/internal/store"
	"github.com/abhisek/secprep/internal/validate"
)

const EnvPrefix = "SECPREP"

type Config struct {
	DBPath   string `mapstructure:"db" yaml:"db" validate:"required"`
	BanksDir string `mapstructure:"banks_dir" yaml:"banks_dir"`

	API   APIConfig   `mapstructure:"api" yaml:"api"`
	Exam  ExamConfig  `mapstructure:"exam" yaml:"exam"`
	Email EmailConfig `mapstructure:"email" yaml:"email"`
	LLM   llm.Config  `mapstructure:"llm" yaml:"llm"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// APIConfig points at the course platform's result endpoint.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Token   string        `mapstructure:"token" yaml:"token"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

type ExamConfig struct {
	// TimeLimit in seconds. Zero defers to the bank, then to the
	// engine default.
	TimeLimit int `mapstructure:"time_limit" yaml:"time_limit" validate:"gte=0"`
}

// EmailConfig enables score receipts through SendGrid when a key is set.
type EmailConfig struct {
	SendgridKey  string `mapstructure:"sendgrid_key" yaml:"sendgrid_key"`
	SendgridHost string `mapstructure:"sendgrid_host" yaml:"sendgrid_host" validate:"omitempty,url"`
	From         string `mapstructure:"from" yaml:"from" validate:"omitempty,email"`
	FromName     string `mapstructure:"from_name" yaml:"from_name"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. It must exist.
	File string

	// EnvFile is loaded into the process environment when present.
	// Defaults to ".env" in the working directory.
	EnvFile string

	// Overrides are flag values keyed by config key, e.g. "db".
	Overrides map[string]any
}

// Load resolves the configuration and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	if err := setDefaults(v); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := configFile(opts.File)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file
	cfg.LLM = cfg.LLM.Discover(os.Getenv)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Email.SendgridKey != "" && cfg.Email.From == "" {
		return nil, errors.New("invalid config: email.from is required when email.sendgrid_key is set")
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// configFile returns explicit when set, otherwise the default location if
// a file exists there.
func configFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	p, err := DefaultPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(p); err != nil {
		return "", nil
	}
	return p, nil
}

// DefaultPath is $XDG_CONFIG_HOME/secprep/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "secprep", "config.yaml"), nil
}

func setDefaults(v *viper.Viper) error {
	db, err := store.DefaultDBPath()
	if err != nil {
		return err
	}
	banks, err := store.DefaultBanksDir()
	if err != nil {
		return err
	}
	v.SetDefault("db", db)
	v.SetDefault("banks_dir", banks)

	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", results.DefaultTimeout)

	v.SetDefault("exam.time_limit", 0)

	v.SetDefault("email.sendgrid_key", "")
	v.SetDefault("email.sendgrid_host", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "secprep")

	d := llm.Defaults()
	v.SetDefault("llm.provider", d.Provider)
	for name, ep := range map[string]llm.Endpoint{
		llm.ProviderAnthropic:  d.Anthropic,
		llm.ProviderOpenAI:     d.OpenAI,
		llm.ProviderGemini:     d.Gemini,
		llm.ProviderOpenRouter: d.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", ep.APIKey)
		v.SetDefault("llm."+name+".model", ep.Model)
		v.SetDefault("llm."+name+".base_url", ep.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.Timeout)
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	c.API.Token = mask(c.API.Token)
	c.Email.SendgridKey = mask(c.Email.SendgridKey)
	c.LLM.Anthropic.APIKey = mask(c.LLM.Anthropic.APIKey)
	c.LLM.OpenAI.APIKey = mask(c.LLM.OpenAI.APIKey)
	c.LLM.Gemini.APIKey = mask(c.LLM.Gemini.APIKey)
	c.LLM.OpenRouter.APIKey = mask(c.LLM.OpenRouter.APIKey)
	return c
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}
