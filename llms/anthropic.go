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
)

// ============================================================================
// ANTHROPIC PROVIDER IMPLEMENTATION
// ============================================================================

// AnthropicProvider implements Provider for the Anthropic Messages API.
type AnthropicProvider struct {
	config *config.LLMProviderConfig
	client *http.Client
}

// anthropicRequest is the request payload for /v1/messages.
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
}

// anthropicMessage is a message in the conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response from /v1/messages.
type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

// anthropicContent is one content block in the response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// anthropicUsage reports token usage.
type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// anthropicError is an API-level error.
type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicProvider creates an Anthropic provider from config.
func NewAnthropicProvider(cfg *config.LLMProviderConfig) (*AnthropicProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	return &AnthropicProvider{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}, nil
}

// Complete performs one completion call against the Anthropic API.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, Usage, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	// No native JSON mode; rely on the prompt instruction.
	systemPrompt := req.SystemPrompt
	if req.Format == FormatJSON {
		systemPrompt = strings.TrimSpace(systemPrompt + "\n\n" + jsonOnlyInstruction)
	}

	payload := anthropicRequest{
		Model:       p.config.Model,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      systemPrompt,
	}

	response, err := p.makeRequest(ctx, payload)
	if err != nil {
		return "", Usage{}, err
	}

	if response.Error != nil {
		return "", Usage{}, fmt.Errorf("Anthropic API error: %s", response.Error.Message)
	}

	var content strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return "", Usage{}, fmt.Errorf("no text content returned")
	}

	usage := Usage{
		PromptTokens:     response.Usage.InputTokens,
		CompletionTokens: response.Usage.OutputTokens,
		TotalTokens:      response.Usage.InputTokens + response.Usage.OutputTokens,
	}

	return content.String(), usage, nil
}

// ModelName returns the configured model identifier.
func (p *AnthropicProvider) ModelName() string {
	return p.config.Model
}

// Close closes the provider.
func (p *AnthropicProvider) Close() error {
	return nil
}

// makeRequest sends the payload and decodes the response.
func (p *AnthropicProvider) makeRequest(ctx context.Context, payload anthropicRequest) (*anthropicResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Host+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
