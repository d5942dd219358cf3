package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/campana-ai/campana/config"
	"github.com/campana-ai/campana/utils"
)

// ============================================================================
// OLLAMA PROVIDER IMPLEMENTATION
// ============================================================================

// OllamaProvider implements Provider for a local Ollama server.
type OllamaProvider struct {
	config *config.LLMProviderConfig
	client *http.Client
}

// ollamaRequest is the request payload for /api/chat.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options"`
}

// ollamaMessage is a message in the conversation.
type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ollamaOptions carries sampling parameters.
type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaResponse is the non-streaming response from /api/chat.
type ollamaResponse struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// NewOllamaProvider creates an Ollama provider from config.
func NewOllamaProvider(cfg *config.LLMProviderConfig) (*OllamaProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OllamaProvider{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}, nil
}

// Complete performs one completion call against the Ollama chat API.
func (o *OllamaProvider) Complete(ctx context.Context, req Request) (string, Usage, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = o.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.config.MaxTokens
	}

	systemPrompt := req.SystemPrompt
	if req.Format == FormatJSON {
		systemPrompt = strings.TrimSpace(systemPrompt + "\n\n" + jsonOnlyInstruction)
	}

	messages := make([]ollamaMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.UserPrompt})

	payload := ollamaRequest{
		Model:    o.config.Model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	}
	if req.Format == FormatJSON {
		payload.Format = "json"
	}

	response, err := o.makeRequest(ctx, payload)
	if err != nil {
		return "", Usage{}, err
	}

	if response.Error != "" {
		return "", Usage{}, fmt.Errorf("Ollama API error: %s", response.Error)
	}

	usage := Usage{
		PromptTokens:     response.PromptEvalCount,
		CompletionTokens: response.EvalCount,
	}
	// Older Ollama builds omit eval counts; count tokens locally instead.
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		usage.PromptTokens = utils.CountTokens(o.config.Model, req.SystemPrompt+req.UserPrompt)
		usage.CompletionTokens = utils.CountTokens(o.config.Model, response.Message.Content)
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	return response.Message.Content, usage, nil
}

// ModelName returns the configured model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.config.Model
}

// Close closes the provider.
func (o *OllamaProvider) Close() error {
	return nil
}

// makeRequest sends the payload and decodes the response.
func (o *OllamaProvider) makeRequest(ctx context.Context, payload ollamaRequest) (*ollamaResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.config.Host+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
