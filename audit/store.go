package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// AUDIT LOG STORE
// ============================================================================

// Entry is one audited agent execution.
type Entry struct {
	LogID              string         `json:"log_id"`
	Timestamp          time.Time      `json:"timestamp"`
	AgentName          string         `json:"agent_name"`
	Scenario           string         `json:"scenario"`
	Action             string         `json:"action"`
	InputData          map[string]any `json:"input_data"`
	OutputData         any            `json:"output_data"`
	AdaptationsApplied map[string]any `json:"adaptations_applied"`
	PerformanceMetrics map[string]any `json:"performance_metrics"`
	Success            bool           `json:"success"`
}

// AgentPerformance aggregates one agent's executions within a scenario.
type AgentPerformance struct {
	Executions  int     `json:"executions"`
	Successes   int     `json:"successes"`
	SuccessRate float64 `json:"success_rate"`
	AvgTime     float64 `json:"avg_time"`
}

// ScenarioAnalytics summarizes all audited executions for one scenario.
type ScenarioAnalytics struct {
	Scenario            string                      `json:"scenario"`
	TotalExecutions     int                         `json:"total_executions"`
	SuccessRate         float64                     `json:"success_rate"`
	AvgProcessingTime   float64                     `json:"avg_processing_time"`
	MostUsedAdaptations []AdaptationCount           `json:"most_used_adaptations"`
	AgentPerformance    map[string]AgentPerformance `json:"agent_performance"`
}

// AdaptationCount is one "key:value" adaptation and its usage count.
type AdaptationCount struct {
	Adaptation string `json:"adaptation"`
	Count      int    `json:"count"`
}

// Store is an in-memory, append-only audit log. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore creates an empty audit store.
func NewStore() *Store {
	return &Store{}
}

// Log appends one execution record and returns its generated log id.
func (s *Store) Log(agentName, scenario, action string, input map[string]any, output any, adaptations map[string]any, metrics map[string]any, success bool) string {
	entry := Entry{
		LogID:              uuid.NewString(),
		Timestamp:          time.Now().UTC(),
		AgentName:          agentName,
		Scenario:           scenario,
		Action:             action,
		InputData:          input,
		OutputData:         output,
		AdaptationsApplied: adaptations,
		PerformanceMetrics: metrics,
		Success:            success,
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	return entry.LogID
}

// Entries returns a snapshot of all entries in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntriesForScenario returns a snapshot of entries matching one scenario.
func (s *Store) EntriesForScenario(scenario string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, entry := range s.entries {
		if entry.Scenario == scenario {
			out = append(out, entry)
		}
	}
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Analytics aggregates execution statistics for one scenario. A scenario
// with no entries yields a zero-valued report rather than an error.
func (s *Store) Analytics(scenario string) ScenarioAnalytics {
	entries := s.EntriesForScenario(scenario)

	analytics := ScenarioAnalytics{
		Scenario:            scenario,
		TotalExecutions:     len(entries),
		MostUsedAdaptations: []AdaptationCount{},
		AgentPerformance:    map[string]AgentPerformance{},
	}
	if len(entries) == 0 {
		return analytics
	}

	var successes int
	var totalTime float64
	adaptationCounts := map[string]int{}
	agentStats := map[string]*AgentPerformance{}

	for _, entry := range entries {
		if entry.Success {
			successes++
		}

		var procTime float64
		if v, ok := entry.PerformanceMetrics["processing_time"]; ok {
			if f, ok := toFloat(v); ok {
				procTime = f
			}
		}
		totalTime += procTime

		for key, value := range entry.AdaptationsApplied {
			adaptationCounts[fmt.Sprintf("%s:%v", key, value)]++
		}

		stats := agentStats[entry.AgentName]
		if stats == nil {
			stats = &AgentPerformance{}
			agentStats[entry.AgentName] = stats
		}
		stats.Executions++
		if entry.Success {
			stats.Successes++
		}
		stats.AvgTime += procTime
	}

	analytics.SuccessRate = float64(successes) / float64(len(entries))
	analytics.AvgProcessingTime = totalTime / float64(len(entries))

	for name, stats := range agentStats {
		perf := *stats
		perf.SuccessRate = float64(perf.Successes) / float64(perf.Executions)
		perf.AvgTime = perf.AvgTime / float64(perf.Executions)
		analytics.AgentPerformance[name] = perf
	}

	analytics.MostUsedAdaptations = topAdaptations(adaptationCounts, 10)

	return analytics
}

// ExportScenarioReport renders an indented JSON report for one scenario,
// combining analytics with the 10 most recent entries.
func (s *Store) ExportScenarioReport(scenario string) ([]byte, error) {
	entries := s.EntriesForScenario(scenario)

	recent := entries
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	if recent == nil {
		recent = []Entry{}
	}

	report := struct {
		Scenario    string            `json:"scenario"`
		GeneratedAt time.Time         `json:"generated_at"`
		Analytics   ScenarioAnalytics `json:"analytics"`
		Recent      []Entry           `json:"recent_entries"`
	}{
		Scenario:    scenario,
		GeneratedAt: time.Now().UTC(),
		Analytics:   s.Analytics(scenario),
		Recent:      recent,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// topAdaptations returns the n most frequent adaptations, ordered by count
// descending with key ascending as tiebreak.
func topAdaptations(counts map[string]int, n int) []AdaptationCount {
	out := make([]AdaptationCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, AdaptationCount{Adaptation: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Adaptation < out[j].Adaptation
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
