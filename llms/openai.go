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
// OPENAI PROVIDER IMPLEMENTATION
// ============================================================================

// OpenAIProvider implements Provider for the OpenAI chat completions API.
type OpenAIProvider struct {
	config *config.LLMProviderConfig
	client *http.Client
}

// openAIRequest is the request payload for /chat/completions.
type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

// openAIMessage is a message in the conversation.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIResponseFormat selects the native JSON mode.
type openAIResponseFormat struct {
	Type string `json:"type"`
}

// openAIResponse is the response from /chat/completions.
type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
	Error   *openAIError   `json:"error,omitempty"`
}

// openAIChoice is one response choice.
type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// openAIError is an API-level error.
type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// NewOpenAIProvider creates an OpenAI provider from config.
func NewOpenAIProvider(cfg *config.LLMProviderConfig) (*OpenAIProvider, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAIProvider{
		config: cfg,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}, nil
}

// Complete performs one completion call against the OpenAI API.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, Usage, error) {
	request := p.buildRequest(req)

	response, err := p.makeRequest(ctx, request)
	if err != nil {
		return "", Usage{}, err
	}

	if response.Error != nil {
		return "", Usage{}, fmt.Errorf("OpenAI API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no response choices returned")
	}

	return response.Choices[0].Message.Content, response.Usage, nil
}

// ModelName returns the configured model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.config.Model
}

// Close closes the provider.
func (p *OpenAIProvider) Close() error {
	return nil
}

// buildRequest builds the API payload from a normalized request.
func (p *OpenAIProvider) buildRequest(req Request) openAIRequest {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	systemPrompt := req.SystemPrompt
	if req.Format == FormatJSON {
		systemPrompt = strings.TrimSpace(systemPrompt + "\n\n" + jsonOnlyInstruction)
	}

	messages := make([]openAIMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.UserPrompt})

	request := openAIRequest{
		Model:       p.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	if req.Format == FormatJSON {
		request.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	return request
}

// makeRequest sends the payload and decodes the response.
func (p *OpenAIProvider) makeRequest(ctx context.Context, request openAIRequest) (*openAIResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Host+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}
