package config

import (
	"fmt"
	"os"
)

// LLMProviderConfig configures one LLM provider behind the gateway.
type LLMProviderConfig struct {
	// Type selects the provider implementation ("openai", "anthropic",
	// or "ollama").
	Type string `yaml:"type" json:"type"`

	// Model is the model identifier (e.g. "gpt-4o", "llama3.2").
	Model string `yaml:"model" json:"model"`

	// Host is the API base URL.
	Host string `yaml:"host" json:"host"`

	// APIKey authenticates requests. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key" json:"api_key,omitempty"`

	// Temperature is the default sampling temperature (0.0 - 2.0).
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// MaxTokens is the default output token budget.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Timeout is the per-request timeout in seconds. A hung provider call
	// fails the request after this deadline instead of stalling the run.
	Timeout int `yaml:"timeout" json:"timeout"`
}

// SetDefaults applies default values.
func (c *LLMProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "openai"
	}
	if c.Model == "" {
		switch c.Type {
		case "ollama":
			c.Model = "llama3.2"
		case "anthropic":
			c.Model = "claude-3-5-haiku-20241022"
		default:
			c.Model = os.Getenv("OPENAI_MODEL")
			if c.Model == "" {
				c.Model = "gpt-4o"
			}
		}
	}
	if c.Host == "" {
		switch c.Type {
		case "ollama":
			c.Host = "http://localhost:11434"
		case "anthropic":
			c.Host = "https://api.anthropic.com"
		default:
			c.Host = "https://api.openai.com/v1"
		}
	}
	if c.APIKey == "" {
		switch c.Type {
		case "openai":
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2000
	}
	if c.Timeout == 0 {
		c.Timeout = 60
	}
}

// Validate checks the provider configuration.
func (c *LLMProviderConfig) Validate() error {
	switch c.Type {
	case "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("unsupported LLM type: %s", c.Type)
	}
	if c.Model == "" {
		return fmt.Errorf("LLM model cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("LLM host cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %g", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}
