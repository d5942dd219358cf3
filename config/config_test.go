package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLLMProviderConfigDefaults(t *testing.T) {
	cfg := &LLMProviderConfig{}
	cfg.SetDefaults()

	if cfg.Type != "openai" {
		t.Errorf("Type = %q, want openai", cfg.Type)
	}
	if cfg.Host != "https://api.openai.com/v1" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %g, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", cfg.MaxTokens)
	}
	if cfg.Timeout != 60 {
		t.Errorf("Timeout = %d, want 60", cfg.Timeout)
	}
}

func TestLLMProviderConfigOllamaDefaults(t *testing.T) {
	cfg := &LLMProviderConfig{Type: "ollama"}
	cfg.SetDefaults()

	if cfg.Model != "llama3.2" {
		t.Errorf("Model = %q, want llama3.2", cfg.Model)
	}
	if cfg.Host != "http://localhost:11434" {
		t.Errorf("Host = %q", cfg.Host)
	}
}

func TestLLMProviderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMProviderConfig
		wantErr bool
	}{
		{
			name:    "valid openai",
			cfg:     LLMProviderConfig{Type: "openai", Model: "gpt-4o", Host: "https://api.openai.com/v1", Temperature: 0.7, MaxTokens: 100},
			wantErr: false,
		},
		{
			name:    "unsupported type",
			cfg:     LLMProviderConfig{Type: "bedrock", Model: "m", Host: "h", Temperature: 0.7, MaxTokens: 100},
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			cfg:     LLMProviderConfig{Type: "openai", Model: "m", Host: "h", Temperature: 3.0, MaxTokens: 100},
			wantErr: true,
		},
		{
			name:    "zero max tokens",
			cfg:     LLMProviderConfig{Type: "openai", Model: "m", Host: "h", Temperature: 0.7, MaxTokens: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("CAMPANA_TEST_VAR", "resolved")
	defer os.Unsetenv("CAMPANA_TEST_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain braced", "key: ${CAMPANA_TEST_VAR}", "key: resolved"},
		{"set var with default", "key: ${CAMPANA_TEST_VAR:-fallback}", "key: resolved"},
		{"unset var with default", "key: ${CAMPANA_TEST_UNSET:-fallback}", "key: fallback"},
		{"unset var without default", "key: ${CAMPANA_TEST_UNSET}", "key: "},
		{"no references", "key: value", "key: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
llm:
  type: ollama
  model: llama3.2
server:
  port: 9090
logging:
  level: debug
scenarios:
  debt_collection:
    name: Debt Collection Notice
    agent_adaptations:
      drafting:
        focus: Respect and clarity
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Type != "ollama" {
		t.Errorf("LLM.Type = %q, want ollama", cfg.LLM.Type)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text default", cfg.Logging.Format)
	}

	profile, ok := ScenarioFor("debt_collection")
	if !ok {
		t.Fatal("expected debt_collection scenario after load")
	}
	if got := profile.AgentAdaptations["drafting"]["focus"]; got != "Respect and clarity" {
		t.Errorf("adaptation focus = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScenarioFor(t *testing.T) {
	profile, ok := ScenarioFor("insurance_renewal")
	if !ok {
		t.Fatal("expected built-in insurance_renewal scenario")
	}
	if profile.Name != "Insurance Policy Renewal" {
		t.Errorf("Name = %q", profile.Name)
	}

	unknown, ok := ScenarioFor("unknown_scenario")
	if ok {
		t.Error("expected ok=false for unknown scenario")
	}
	if unknown.Name != "unknown_scenario" {
		t.Errorf("unknown profile Name = %q", unknown.Name)
	}
}

func TestScenarioAdaptations(t *testing.T) {
	adaptations := ScenarioAdaptations("healthcare_reminder", "compliance")
	if adaptations["risk_threshold"] != "very_low" {
		t.Errorf("risk_threshold = %v, want very_low", adaptations["risk_threshold"])
	}

	if got := ScenarioAdaptations("unknown", "drafting"); len(got) != 0 {
		t.Errorf("expected empty adaptations for unknown scenario, got %v", got)
	}
	if got := ScenarioAdaptations("insurance_renewal", "unknown_agent"); len(got) != 0 {
		t.Errorf("expected empty adaptations for unknown agent, got %v", got)
	}
}

func TestAgentProfileFor(t *testing.T) {
	profile, ok := AgentProfileFor("drafting")
	if !ok {
		t.Fatal("expected built-in drafting profile")
	}
	if profile.Name != "Dynamic Copywriter" {
		t.Errorf("Name = %q", profile.Name)
	}
	if !profile.Enabled {
		t.Error("expected drafting profile enabled")
	}

	fallback, ok := AgentProfileFor("nonexistent")
	if ok {
		t.Error("expected ok=false for unknown agent key")
	}
	if fallback.Name != "nonexistent" || !fallback.Enabled {
		t.Errorf("fallback profile = %+v", fallback)
	}
}
