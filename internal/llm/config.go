package llm

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"
)

// Config selects and configures one provider.
type Config struct {
	// Provider is a key of the vendor table, or "mock".
	Provider string

	APIKey  string
	Model   string
	BaseURL string

	Retry RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

// RetryConfig controls backoff between attempts.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

type vendor struct {
	name    string
	model   string
	keyEnv  string
	baseURL string
	dial    func(ctx context.Context, cfg Config) (sender, error)
}

// vendors lists the supported providers in discovery order.
var vendors = []vendor{
	{name: "gemini", model: "gemini-2.0-flash", keyEnv: "GEMINI_API_KEY", dial: dialGemini},
	{name: "openai", model: "gpt-4o-mini", keyEnv: "OPENAI_API_KEY", dial: dialOpenAI},
	{name: "anthropic", model: "claude-haiku-4-5-20251001", keyEnv: "ANTHROPIC_API_KEY", dial: dialAnthropic},
	{
		name:    "openrouter",
		model:   "google/gemini-2.0-flash-001",
		keyEnv:  "OPENROUTER_API_KEY",
		baseURL: "https://openrouter.ai/api/v1",
		dial:    dialOpenAI,
	},
}

func lookupVendor(name string) (vendor, bool) {
	i := slices.IndexFunc(vendors, func(v vendor) bool { return v.name == name })
	if i < 0 {
		return vendor{}, false
	}
	return vendors[i], true
}

// DefaultConfig returns the retry and timeout defaults with no provider
// selected.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads QUIZMASTER_LLM_* variables. When no provider is
// named, the first vendor whose standard key variable is set (for example
// GEMINI_API_KEY) is picked.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = os.Getenv("QUIZMASTER_LLM_PROVIDER")
	cfg.APIKey = os.Getenv("QUIZMASTER_LLM_API_KEY")
	cfg.Model = os.Getenv("QUIZMASTER_LLM_MODEL")
	cfg.BaseURL = os.Getenv("QUIZMASTER_LLM_BASE_URL")

	if cfg.Provider == "" {
		for _, v := range vendors {
			if os.Getenv(v.keyEnv) != "" {
				cfg.Provider = v.name
				break
			}
		}
	}
	if v, ok := lookupVendor(cfg.Provider); ok && cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(v.keyEnv)
	}

	if d, err := time.ParseDuration(os.Getenv("QUIZMASTER_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("QUIZMASTER_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// Validate reports whether cfg can build a provider.
func (c Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("no LLM provider configured: set QUIZMASTER_LLM_PROVIDER or a provider API key")
	}
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s provider needs QUIZMASTER_LLM_API_KEY or %s", c.Provider, v.keyEnv)
	}
	return nil
}

// resolved fills vendor defaults into an otherwise valid config.
func (c Config) resolved(v vendor) Config {
	c.Model = cmp.Or(c.Model, v.model)
	c.BaseURL = cmp.Or(c.BaseURL, v.baseURL)
	return c
}
