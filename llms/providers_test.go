package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campana-ai/campana/config"
)

func TestOpenAIProviderComplete(t *testing.T) {
	var captured openAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := openAIResponse{
			Choices: []openAIChoice{{Message: openAIMessage{Role: "assistant", Content: `{"result": "ok"}`}}},
			Usage:   Usage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(&config.LLMProviderConfig{
		Type:   "openai",
		Model:  "gpt-4o",
		Host:   server.URL,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	content, usage, err := provider.Complete(context.Background(), Request{
		SystemPrompt: "You are a test agent.",
		UserPrompt:   "Do the thing.",
		Format:       FormatJSON,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if content != `{"result": "ok"}` {
		t.Errorf("content = %q", content)
	}
	if usage.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", usage.TotalTokens)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("message roles = %s, %s", captured.Messages[0].Role, captured.Messages[1].Role)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Error("expected json_object response format for FormatJSON")
	}
}

func TestOpenAIProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(&config.LLMProviderConfig{
		Type:   "openai",
		Model:  "gpt-4o",
		Host:   server.URL,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	if _, _, err := provider.Complete(context.Background(), Request{UserPrompt: "x"}); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestOpenAIProviderRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewOpenAIProvider(&config.LLMProviderConfig{Type: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestOllamaProviderComplete(t *testing.T) {
	var captured ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := ollamaResponse{
			Message:         ollamaMessage{Role: "assistant", Content: `{"result": "ok"}`},
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       8,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(&config.LLMProviderConfig{
		Type:  "ollama",
		Model: "llama3.2",
		Host:  server.URL,
	})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	content, usage, err := provider.Complete(context.Background(), Request{
		SystemPrompt: "You are a test agent.",
		UserPrompt:   "Do the thing.",
		Format:       FormatJSON,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if content != `{"result": "ok"}` {
		t.Errorf("content = %q", content)
	}
	if usage.PromptTokens != 12 || usage.CompletionTokens != 8 || usage.TotalTokens != 20 {
		t.Errorf("usage = %+v", usage)
	}
	if captured.Format != "json" {
		t.Errorf("Format = %q, want json", captured.Format)
	}
	if len(captured.Messages) == 0 || !strings.Contains(captured.Messages[0].Content, jsonOnlyInstruction) {
		t.Error("expected JSON-only instruction in the system message")
	}
	if captured.Options.Temperature == 0 {
		t.Error("expected default temperature to be applied")
	}
}

func TestOllamaProviderUsageFallback(t *testing.T) {
	// Older Ollama builds omit prompt_eval_count/eval_count; usage is then
	// counted locally from the prompts and the reply.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ollamaResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"result": "ok"}`},
			Done:    true,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(&config.LLMProviderConfig{
		Type:  "ollama",
		Model: "llama3.2",
		Host:  server.URL,
	})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	_, usage, err := provider.Complete(context.Background(), Request{
		SystemPrompt: "You are a test agent.",
		UserPrompt:   "Do the thing.",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if usage.PromptTokens == 0 || usage.CompletionTokens == 0 {
		t.Errorf("expected locally counted usage, got %+v", usage)
	}
	if usage.TotalTokens != usage.PromptTokens+usage.CompletionTokens {
		t.Errorf("TotalTokens = %d, want %d", usage.TotalTokens, usage.PromptTokens+usage.CompletionTokens)
	}
}

func TestAnthropicProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if key := r.Header.Get("x-api-key"); key != "test-key" {
			t.Errorf("x-api-key = %q", key)
		}

		resp := anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: `{"result": "ok"}`}},
			Usage:   anthropicUsage{InputTokens: 15, OutputTokens: 5},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(&config.LLMProviderConfig{
		Type:   "anthropic",
		Model:  "claude-3-5-haiku-20241022",
		Host:   server.URL,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	content, usage, err := provider.Complete(context.Background(), Request{UserPrompt: "Do the thing."})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != `{"result": "ok"}` {
		t.Errorf("content = %q", content)
	}
	if usage.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d, want 20", usage.TotalTokens)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(&config.LLMProviderConfig{Type: "ollama"}); err != nil {
		t.Errorf("NewProvider(ollama) error = %v", err)
	}
	if _, err := NewProvider(&config.LLMProviderConfig{Type: "bedrock"}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestProviderRegistry(t *testing.T) {
	reg := NewProviderRegistry()

	provider, err := reg.CreateProvider("local", &config.LLMProviderConfig{Type: "ollama"})
	if err != nil {
		t.Fatalf("CreateProvider() error = %v", err)
	}
	if provider == nil {
		t.Fatal("expected non-nil provider")
	}

	got, ok := reg.Get("local")
	if !ok {
		t.Fatal("expected provider to be registered")
	}
	if got.ModelName() != "llama3.2" {
		t.Errorf("ModelName = %q", got.ModelName())
	}

	if _, err := reg.CreateProvider("local", &config.LLMProviderConfig{Type: "ollama"}); err == nil {
		t.Error("expected error registering duplicate name")
	}
}
