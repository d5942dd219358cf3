package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// ROOT CONFIGURATION
// ============================================================================

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// SetDefaults applies default values.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// SetDefaults applies default values.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Format)
	}
	return nil
}

// Config is the root configuration for the orchestration service.
type Config struct {
	LLM     LLMProviderConfig `yaml:"llm" json:"llm"`
	Server  ServerConfig      `yaml:"server" json:"server"`
	Logging LoggingConfig     `yaml:"logging" json:"logging"`

	// Scenarios extends or overrides the built-in scenario catalog.
	Scenarios map[string]ScenarioProfile `yaml:"scenarios" json:"scenarios,omitempty"`
}

// SetDefaults applies default values to all sections.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks all configuration sections.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// applyScenarioOverrides merges user-supplied scenarios into the built-in
// catalog. User entries win on key collisions.
func (c *Config) applyScenarioOverrides() {
	for key, profile := range c.Scenarios {
		if profile.Name == "" {
			profile.Name = key
		}
		if profile.AgentAdaptations == nil {
			profile.AgentAdaptations = map[string]map[string]any{}
		}
		builtinScenarios[key] = profile
	}
}

// Load reads a YAML config file, expands ${VAR} and ${VAR:-default}
// references, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.applyScenarioOverrides()

	return &cfg, nil
}

// Default returns a ready-to-use configuration without reading a file.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}
