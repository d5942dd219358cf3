package llms

import (
	"context"
	"time"
)

// ============================================================================
// CORE TYPES
// ============================================================================

// Format constrains the shape of the provider reply.
type Format string

const (
	// FormatText requests free-form text.
	FormatText Format = "text"

	// FormatJSON requests a JSON-only reply. Providers that support a native
	// JSON mode use it; others get an instruction appended to the system
	// prompt.
	FormatJSON Format = "json"
)

// Request is a single completion request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	Format       Format
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the gateway's normalized completion result. Failed calls are
// reported through Success and Error instead of a Go error so downstream
// agents always receive a structured envelope.
type Response struct {
	Content   string    `json:"content"`
	Usage     Usage     `json:"usage"`
	ModelUsed string    `json:"model_used"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Provider is a synchronous LLM backend.
type Provider interface {
	// Complete performs one completion call.
	Complete(ctx context.Context, req Request) (string, Usage, error)

	// ModelName returns the configured model identifier.
	ModelName() string

	// Close releases provider resources.
	Close() error
}

// jsonOnlyInstruction is appended to the system prompt when the caller asks
// for JSON output. Providers with a native JSON mode still include it so the
// behavior stays consistent across backends.
const jsonOnlyInstruction = "Respond with valid JSON only. No additional text or formatting."
