package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const envPrefix = "MATHEMMITA_"

// Config selects and configures the provider used for generated tricks.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter",
	// "mock". Empty disables generation.
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

// ProviderConfig holds the credentials of one provider. BaseURL is only
// honoured by OpenAI-compatible APIs.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a disabled config with model defaults filled in.
func DefaultConfig() Config {
	return Config{
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2,
		},
		Timeout: 15 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool { return c.Provider != "" }

// ConfigFromEnv reads MATHEMMITA_LLM_PROVIDER and the per-provider
// MATHEMMITA_<PROVIDER>_API_KEY / _MODEL / _BASE_URL variables. When no
// provider is named, the well-known vendor key variables are probed.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = os.Getenv(envPrefix + "LLM_PROVIDER")

	overlay := func(name string, pc *ProviderConfig) {
		if v := os.Getenv(envPrefix + name + "_API_KEY"); v != "" {
			pc.APIKey = v
		}
		if v := os.Getenv(envPrefix + name + "_MODEL"); v != "" {
			pc.Model = v
		}
		if v := os.Getenv(envPrefix + name + "_BASE_URL"); v != "" {
			pc.BaseURL = v
		}
	}
	overlay("ANTHROPIC", &cfg.Anthropic)
	overlay("OPENAI", &cfg.OpenAI)
	overlay("GEMINI", &cfg.Gemini)
	overlay("OPENROUTER", &cfg.OpenRouter)

	if v := os.Getenv(envPrefix + "LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if cfg.Provider == "" {
		if found, ok := DiscoverConfig(); ok {
			found.Retry, found.Timeout = cfg.Retry, cfg.Timeout
			return found
		}
	}
	return cfg
}

// DiscoverConfig probes vendor key variables in order Gemini, OpenAI,
// Anthropic, OpenRouter and selects the first provider found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	probes := []struct {
		env      string
		provider string
		pc       *ProviderConfig
	}{
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic},
		{"OPENROUTER_API_KEY", "openrouter", &cfg.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			p.pc.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case "", "mock":
		return nil
	case "anthropic":
		pc = c.Anthropic
	case "openai":
		pc = c.OpenAI
	case "gemini":
		pc = c.Gemini
	case "openrouter":
		pc = c.OpenRouter
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("%s%s_API_KEY is required for the %s provider",
			envPrefix, strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
