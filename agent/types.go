package agent

import (
	"context"
	"time"

	"github.com/campana-ai/campana/llms"
)

// ============================================================================
// AGENT CONTRACT
// ============================================================================

// Performance reports resource usage for one agent execution.
type Performance struct {
	ProcessingTime float64 `json:"processing_time"`
	TokensUsed     int     `json:"tokens_used"`
	ModelUsed      string  `json:"model_used,omitempty"`
}

// Metadata identifies one agent execution.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	AgentKey  string    `json:"agent_key"`
}

// Result is the uniform envelope every agent returns. Failures are carried
// in-band: Success=false with Error set, never a Go error, so one broken
// step degrades the pipeline instead of aborting it.
type Result struct {
	Success         bool           `json:"success"`
	AgentName       string         `json:"agent_name"`
	Scenario        string         `json:"scenario"`
	Data            any            `json:"data,omitempty"`
	AdaptationsUsed map[string]any `json:"adaptations_used,omitempty"`
	Performance     Performance    `json:"performance"`
	Metadata        Metadata       `json:"metadata"`
	Error           string         `json:"error,omitempty"`

	// Critical marks a failure severe enough to halt the remaining
	// pipeline steps.
	Critical bool `json:"critical,omitempty"`
}

// Input is what one agent receives for a single execution.
type Input struct {
	// Fields is the caller-supplied request payload (audience, channel,
	// tone, placeholders, num_messages, ...).
	Fields map[string]any

	// Previous holds the results of earlier pipeline steps keyed by agent
	// key.
	Previous map[string]*Result

	// Scenario selects the adaptation profile.
	Scenario string

	// StartedAt is when the surrounding workflow run began.
	StartedAt time.Time
}

// PreviousData returns the Data payload of an earlier successful step, or
// nil when the step is absent or failed.
func (in *Input) PreviousData(agentKey string) any {
	if in.Previous == nil {
		return nil
	}
	result, ok := in.Previous[agentKey]
	if !ok || result == nil || !result.Success {
		return nil
	}
	return result.Data
}

// Agent is one pipeline step.
type Agent interface {
	// Key is the stable identifier used in sequences and adaptations.
	Key() string

	// Name is the human-readable agent name.
	Name() string

	// Process executes the agent. The returned result is always non-nil.
	Process(ctx context.Context, in *Input) *Result
}

// Gateway is the LLM surface agents depend on. *llms.Gateway satisfies it;
// tests substitute stubs.
type Gateway interface {
	Complete(ctx context.Context, req llms.Request) llms.Response
	ModelName() string
}
