package llm

import (
	"context"
	"testing"
	"time"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QUIZMASTER_LLM_PROVIDER", "QUIZMASTER_LLM_API_KEY", "QUIZMASTER_LLM_MODEL",
		"QUIZMASTER_LLM_BASE_URL", "QUIZMASTER_LLM_TIMEOUT", "QUIZMASTER_LLM_MAX_ATTEMPTS",
	} {
		t.Setenv(k, "")
	}
	for _, v := range vendors {
		t.Setenv(v.keyEnv, "")
	}
}

func TestConfigFromEnvExplicit(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("QUIZMASTER_LLM_PROVIDER", "openai")
	t.Setenv("QUIZMASTER_LLM_API_KEY", "sk-test")
	t.Setenv("QUIZMASTER_LLM_TIMEOUT", "45s")
	t.Setenv("QUIZMASTER_LLM_MAX_ATTEMPTS", "5")
	t.Setenv("GEMINI_API_KEY", "ignored")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.APIKey != "sk-test" {
		t.Errorf("provider = %q key %q, want openai sk-test", cfg.Provider, cfg.APIKey)
	}
	if cfg.Timeout != 45*time.Second || cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Timeout %v MaxAttempts %d, want 45s and 5", cfg.Timeout, cfg.Retry.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigFromEnvDiscovers(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("OPENROUTER_API_KEY", "ork")

	cfg := ConfigFromEnv()
	if cfg.Provider != "anthropic" || cfg.APIKey != "ak" {
		t.Errorf("discovered %q with key %q, want anthropic ak", cfg.Provider, cfg.APIKey)
	}

	v, _ := lookupVendor("openrouter")
	r := Config{Provider: "openrouter", APIKey: "ork"}.resolved(v)
	if r.BaseURL != "https://openrouter.ai/api/v1" || r.Model == "" {
		t.Errorf("openrouter defaults = %q %q", r.BaseURL, r.Model)
	}
}

func TestConfigFromEnvNothingSet(t *testing.T) {
	clearLLMEnv(t)
	cfg := ConfigFromEnv()
	if cfg.Provider != "" {
		t.Errorf("Provider = %q, want none", cfg.Provider)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without a provider")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: "mock"}, false},
		{Config{Provider: "gemini", APIKey: "k"}, false},
		{Config{Provider: "gemini"}, true},
		{Config{Provider: "openrouter"}, true},
		{Config{Provider: "llama", APIKey: "k"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) = %v, wantErr %v", tt.cfg, err, tt.wantErr)
		}
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(mock): %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", p.ModelID())
	}

	cfg := DefaultConfig()
	cfg.Provider = "openai"
	cfg.APIKey = "sk-test"
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider(openai): %v", err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Errorf("ModelID = %q, want the vendor default", p.ModelID())
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestPriceOf(t *testing.T) {
	tests := []struct {
		model string
		want  float64
		found bool
	}{
		{"gpt-4o-mini", 0.15, true},
		{"claude-haiku-4-5-20251001", 1, true},
		{"google/gemini-2.0-flash-001", 0.1, true},
		{"gemini-2.5-pro", 1.25, true},
		{"mock", 0, false},
		{"claude-haiku", 0, false},
	}
	for _, tt := range tests {
		p, ok := PriceOf(tt.model)
		if ok != tt.found || p.Input != tt.want {
			t.Errorf("PriceOf(%q) = %v %v, want %v %v", tt.model, p, ok, tt.want, tt.found)
		}
	}

	usd := Price{Input: 1, Output: 5}.Cost(Usage{InputTokens: 1_000_000, OutputTokens: 200_000})
	if usd != 2 {
		t.Errorf("Cost = %v, want 2", usd)
	}
}

func TestPurposeContext(t *testing.T) {
	if p := PurposeFrom(context.Background()); p != PurposeUnknown {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", p)
	}
	ctx := WithPurpose(context.Background(), PurposeGenerate)
	if p := PurposeFrom(ctx); p != PurposeGenerate {
		t.Errorf("PurposeFrom = %q, want generate", p)
	}
}
