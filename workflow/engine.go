package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campana-ai/campana/agent"
	"github.com/campana-ai/campana/logger"
	"github.com/campana-ai/campana/observability"
)

// ============================================================================
// WORKFLOW ENGINE
// ============================================================================

// DefaultSequence is the standard four-step pipeline order.
var DefaultSequence = []string{
	agent.KeyDrafting,
	agent.KeyCompliance,
	agent.KeyFeedback,
	agent.KeyDecision,
}

// Summary describes one completed workflow run.
type Summary struct {
	Scenario            string   `json:"scenario"`
	TotalAgents         int      `json:"total_agents"`
	SuccessfulAgents    int      `json:"successful_agents"`
	TotalProcessingTime float64  `json:"total_processing_time"`
	SequenceUsed        []string `json:"sequence_used"`
}

// RunResult carries every step's result plus the run summary. Results is
// keyed by agent key; Order preserves execution order.
type RunResult struct {
	Results map[string]*agent.Result `json:"results"`
	Order   []string                 `json:"order"`
	Summary Summary                  `json:"workflow_summary"`
}

// Engine executes agent pipelines sequentially, threading each step's result
// into the next step's input. A failed step never aborts the run unless it
// is marked critical.
type Engine struct {
	agents *agent.Registry
	log    *slog.Logger
}

// NewEngine creates a workflow engine over the given agent registry.
func NewEngine(agents *agent.Registry) *Engine {
	return &Engine{
		agents: agents,
		log:    logger.Get().With("component", "workflow_engine"),
	}
}

// Execute runs the pipeline for one scenario. A nil or empty sequence uses
// DefaultSequence. The returned RunResult is always non-nil and contains one
// result per requested step, failed steps included.
func (e *Engine) Execute(ctx context.Context, scenario string, input map[string]any, sequence []string) *RunResult {
	start := time.Now()
	if len(sequence) == 0 {
		sequence = DefaultSequence
	}
	if input == nil {
		input = map[string]any{}
	}

	e.log.Info("workflow started", "scenario", scenario, "sequence", sequence)

	results := make(map[string]*agent.Result, len(sequence))
	order := make([]string, 0, len(sequence))
	accumulated := make(map[string]*agent.Result, len(sequence))

	for _, key := range sequence {
		step, ok := e.agents.Get(key)
		if !ok {
			e.log.Warn("agent not available", "agent", key)
			results[key] = &agent.Result{
				Success:  false,
				Scenario: scenario,
				Error:    fmt.Sprintf("Agent %s not available", key),
				Metadata: agent.Metadata{Timestamp: time.Now().UTC(), AgentKey: key},
			}
			order = append(order, key)
			continue
		}

		// Each step sees its own snapshot of the accumulated results.
		previous := make(map[string]*agent.Result, len(accumulated))
		for k, v := range accumulated {
			previous[k] = v
		}

		result := step.Process(ctx, &agent.Input{
			Fields:    input,
			Previous:  previous,
			Scenario:  scenario,
			StartedAt: start,
		})

		results[key] = result
		order = append(order, key)
		accumulated[key] = result

		if !result.Success && result.Critical {
			e.log.Error("critical step failed, halting workflow", "agent", key, "error", result.Error)
			break
		}
	}

	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}

	elapsed := time.Since(start).Seconds()
	observability.WorkflowRuns.WithLabelValues(scenario).Inc()
	observability.WorkflowDuration.WithLabelValues(scenario).Observe(elapsed)

	e.log.Info("workflow finished",
		"scenario", scenario,
		"successful_agents", successful,
		"total_agents", len(sequence),
		"duration", time.Since(start))

	return &RunResult{
		Results: results,
		Order:   order,
		Summary: Summary{
			Scenario:            scenario,
			TotalAgents:         len(sequence),
			SuccessfulAgents:    successful,
			TotalProcessingTime: elapsed,
			SequenceUsed:        sequence,
		},
	}
}
