// Package observability exposes Prometheus metrics for agent and workflow
// execution.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AgentExecutions counts agent executions by agent, scenario, and outcome.
	AgentExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campana_agent_executions_total",
		Help: "Total agent executions partitioned by agent, scenario, and status.",
	}, []string{"agent", "scenario", "status"})

	// AgentDuration observes per-agent processing time in seconds.
	AgentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campana_agent_duration_seconds",
		Help:    "Agent processing time in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"agent"})

	// WorkflowRuns counts workflow runs by scenario.
	WorkflowRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campana_workflow_runs_total",
		Help: "Total workflow runs partitioned by scenario.",
	}, []string{"scenario"})

	// WorkflowDuration observes end-to-end workflow duration in seconds.
	WorkflowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campana_workflow_duration_seconds",
		Help:    "End-to-end workflow duration in seconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"scenario"})

	// TokensUsed counts LLM tokens consumed by agent.
	TokensUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campana_llm_tokens_total",
		Help: "Total LLM tokens consumed partitioned by agent.",
	}, []string{"agent"})
)

// StatusLabel maps a success flag to the metric status label.
func StatusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
