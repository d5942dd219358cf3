package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/config"
	"github.com/campana-ai/campana/llms"
	"github.com/campana-ai/campana/logger"
	"github.com/campana-ai/campana/observability"
)

// ============================================================================
// BASE AGENT
// ============================================================================

// variant is the behavior each concrete agent plugs into BaseAgent: how to
// phrase the request and how to interpret the reply. processResponse must
// always return usable data, falling back to deterministic analysis when the
// reply is not parseable.
type variant interface {
	buildUserPrompt(in *Input, adaptations map[string]any) string
	processResponse(content string, in *Input, adaptations map[string]any) any
}

// samplingParams are the LLM sampling knobs an adaptation set may override.
type samplingParams struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// BaseAgent implements the shared execution skeleton: adaptation resolution,
// prompt rendering, the gateway call, response processing, audit logging,
// and metrics. Concrete agents supply a variant.
type BaseAgent struct {
	key     string
	profile config.AgentProfile
	gateway Gateway
	audits  *audit.Store
	log     *slog.Logger
	variant variant
}

func newBaseAgent(key string, gateway Gateway, audits *audit.Store, v variant) *BaseAgent {
	profile, _ := config.AgentProfileFor(key)
	return &BaseAgent{
		key:     key,
		profile: profile,
		gateway: gateway,
		audits:  audits,
		log:     logger.Get().With("agent", key),
		variant: v,
	}
}

// Key returns the agent's stable identifier.
func (a *BaseAgent) Key() string { return a.key }

// Name returns the agent's human-readable name.
func (a *BaseAgent) Name() string { return a.profile.Name }

// Process executes one agent step. It never returns nil and never panics:
// gateway failures and panics both surface as Success=false results.
func (a *BaseAgent) Process(ctx context.Context, in *Input) (result *Result) {
	start := time.Now()
	adaptations := a.resolveAdaptations(in.Scenario)

	defer func() {
		if r := recover(); r != nil {
			a.log.Error("agent panicked", "scenario", in.Scenario, "panic", r)
			result = a.failure(in.Scenario, start, fmt.Sprintf("agent panic: %v", r))
		}
		a.record(in, adaptations, result)
	}()

	systemPrompt := a.renderSystemPrompt(in, adaptations)
	userPrompt := a.variant.buildUserPrompt(in, adaptations)
	sampling := resolveSampling(adaptations)

	resp := a.gateway.Complete(ctx, llms.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  sampling.Temperature,
		MaxTokens:    sampling.MaxTokens,
		Format:       llms.FormatJSON,
	})
	if !resp.Success {
		a.log.Warn("LLM call failed", "scenario", in.Scenario, "error", resp.Error)
		return a.failure(in.Scenario, start, fmt.Sprintf("LLM call failed: %s", resp.Error))
	}

	data := a.variant.processResponse(resp.Content, in, adaptations)

	result = &Result{
		Success:         true,
		AgentName:       a.profile.Name,
		Scenario:        in.Scenario,
		Data:            data,
		AdaptationsUsed: adaptations,
		Performance: Performance{
			ProcessingTime: time.Since(start).Seconds(),
			TokensUsed:     resp.Usage.TotalTokens,
			ModelUsed:      resp.ModelUsed,
		},
		Metadata: Metadata{
			Timestamp: start.UTC(),
			AgentKey:  a.key,
		},
	}
	return result
}

// resolveAdaptations merges the profile defaults with the scenario overrides.
// Scenario values win on key collisions.
func (a *BaseAgent) resolveAdaptations(scenario string) map[string]any {
	merged := make(map[string]any, len(a.profile.DefaultAdaptations))
	for key, value := range a.profile.DefaultAdaptations {
		merged[key] = value
	}
	for key, value := range config.ScenarioAdaptations(scenario, a.key) {
		merged[key] = value
	}
	return merged
}

// renderSystemPrompt fills the profile's prompt template with scenario
// context, the raw input fields, and the resolved adaptations.
func (a *BaseAgent) renderSystemPrompt(in *Input, adaptations map[string]any) string {
	vars := map[string]any{
		"scenario_context": in.Scenario,
	}
	if profile, ok := config.ScenarioFor(in.Scenario); ok {
		vars["scenario_name"] = profile.Name
		vars["scenario_description"] = profile.Description
	}
	for key, value := range in.Fields {
		vars[key] = value
	}
	for key, value := range adaptations {
		vars[key] = value
	}
	return RenderTemplate(a.profile.SystemPromptTemplate, vars)
}

// failure builds a Success=false result with zero token usage.
func (a *BaseAgent) failure(scenario string, start time.Time, errMsg string) *Result {
	return &Result{
		Success:   false,
		AgentName: a.profile.Name,
		Scenario:  scenario,
		Error:     errMsg,
		Performance: Performance{
			ProcessingTime: time.Since(start).Seconds(),
		},
		Metadata: Metadata{
			Timestamp: start.UTC(),
			AgentKey:  a.key,
		},
	}
}

// record audit-logs the execution and updates metrics. Failed executions are
// logged too; the audit trail must cover every attempt.
func (a *BaseAgent) record(in *Input, adaptations map[string]any, result *Result) {
	if result == nil {
		return
	}

	if a.audits != nil {
		a.audits.Log(
			a.profile.Name,
			in.Scenario,
			"process",
			in.Fields,
			result,
			adaptations,
			map[string]any{
				"processing_time": result.Performance.ProcessingTime,
				"tokens_used":     result.Performance.TokensUsed,
				"model_used":      result.Performance.ModelUsed,
			},
			result.Success,
		)
	}

	observability.AgentExecutions.WithLabelValues(a.key, in.Scenario, observability.StatusLabel(result.Success)).Inc()
	observability.AgentDuration.WithLabelValues(a.key).Observe(result.Performance.ProcessingTime)
	observability.TokensUsed.WithLabelValues(a.key).Add(float64(result.Performance.TokensUsed))
}

// resolveSampling decodes temperature/max_tokens overrides from the
// adaptation set, tolerating string-typed values from YAML or JSON sources.
func resolveSampling(adaptations map[string]any) samplingParams {
	params := samplingParams{Temperature: 0.7, MaxTokens: 2000}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &params,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return params
	}
	if err := decoder.Decode(adaptations); err != nil {
		return samplingParams{Temperature: 0.7, MaxTokens: 2000}
	}
	if params.Temperature <= 0 {
		params.Temperature = 0.7
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = 2000
	}
	return params
}
