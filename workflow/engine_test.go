package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/campana-ai/campana/agent"
)

// stubAgent records the input it received and returns a canned result.
type stubAgent struct {
	key      string
	success  bool
	critical bool
	lastIn   *agent.Input
}

func (s *stubAgent) Key() string  { return s.key }
func (s *stubAgent) Name() string { return s.key }

func (s *stubAgent) Process(ctx context.Context, in *agent.Input) *agent.Result {
	s.lastIn = in
	return &agent.Result{
		Success:   s.success,
		AgentName: s.key,
		Scenario:  in.Scenario,
		Data:      map[string]any{"from": s.key},
		Critical:  s.critical,
		Metadata:  agent.Metadata{Timestamp: time.Now().UTC(), AgentKey: s.key},
	}
}

func stubRegistry(agents ...*stubAgent) *agent.Registry {
	r := agent.NewRegistry()
	for _, a := range agents {
		_ = r.Register(a.key, a)
	}
	return r
}

func TestExecuteDefaultSequence(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: true}
	compliance := &stubAgent{key: agent.KeyCompliance, success: true}
	feedback := &stubAgent{key: agent.KeyFeedback, success: true}
	decision := &stubAgent{key: agent.KeyDecision, success: true}
	engine := NewEngine(stubRegistry(drafting, compliance, feedback, decision))

	run := engine.Execute(context.Background(), "insurance_renewal", map[string]any{"channel": "email"}, nil)

	if len(run.Results) != 4 {
		t.Fatalf("Results = %d entries, want 4", len(run.Results))
	}
	wantOrder := []string{agent.KeyDrafting, agent.KeyCompliance, agent.KeyFeedback, agent.KeyDecision}
	for i, key := range wantOrder {
		if run.Order[i] != key {
			t.Fatalf("Order = %v, want %v", run.Order, wantOrder)
		}
	}

	summary := run.Summary
	if summary.Scenario != "insurance_renewal" {
		t.Errorf("Scenario = %q", summary.Scenario)
	}
	if summary.TotalAgents != 4 || summary.SuccessfulAgents != 4 {
		t.Errorf("summary = %+v", summary)
	}

	// The request fields reach every step.
	if decision.lastIn.Fields["channel"] != "email" {
		t.Errorf("decision fields = %v", decision.lastIn.Fields)
	}
}

func TestExecuteThreadsPreviousResults(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: true}
	compliance := &stubAgent{key: agent.KeyCompliance, success: true}
	engine := NewEngine(stubRegistry(drafting, compliance))

	engine.Execute(context.Background(), "loan_reminder", nil,
		[]string{agent.KeyDrafting, agent.KeyCompliance})

	if len(drafting.lastIn.Previous) != 0 {
		t.Errorf("first step saw previous results: %v", drafting.lastIn.Previous)
	}
	prev := compliance.lastIn.Previous[agent.KeyDrafting]
	if prev == nil || !prev.Success {
		t.Fatalf("compliance did not receive drafting result: %v", compliance.lastIn.Previous)
	}
	if data, _ := prev.Data.(map[string]any); data["from"] != agent.KeyDrafting {
		t.Errorf("threaded data = %v", prev.Data)
	}
}

func TestExecuteCustomSequence(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: true}
	engine := NewEngine(stubRegistry(drafting))

	run := engine.Execute(context.Background(), "ecommerce_promotion", nil, []string{agent.KeyDrafting})

	if len(run.Results) != 1 {
		t.Fatalf("Results = %d entries, want 1", len(run.Results))
	}
	if run.Summary.TotalAgents != 1 || run.Summary.SuccessfulAgents != 1 {
		t.Errorf("summary = %+v", run.Summary)
	}
	if got := run.Summary.SequenceUsed; len(got) != 1 || got[0] != agent.KeyDrafting {
		t.Errorf("SequenceUsed = %v", got)
	}
}

func TestExecuteUnknownAgent(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: true}
	engine := NewEngine(stubRegistry(drafting))

	run := engine.Execute(context.Background(), "healthcare_reminder", nil,
		[]string{agent.KeyDrafting, "translation"})

	missing := run.Results["translation"]
	if missing == nil {
		t.Fatal("expected a failure result for the unknown agent")
	}
	if missing.Success {
		t.Error("unknown agent result must not be successful")
	}
	if missing.Error != "Agent translation not available" {
		t.Errorf("Error = %q", missing.Error)
	}

	// The known step still ran.
	if !run.Results[agent.KeyDrafting].Success {
		t.Error("drafting step should have succeeded")
	}
	if run.Summary.SuccessfulAgents != 1 {
		t.Errorf("SuccessfulAgents = %d, want 1", run.Summary.SuccessfulAgents)
	}
}

func TestExecuteNonCriticalFailureContinues(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: false}
	compliance := &stubAgent{key: agent.KeyCompliance, success: true}
	engine := NewEngine(stubRegistry(drafting, compliance))

	run := engine.Execute(context.Background(), "insurance_renewal", nil,
		[]string{agent.KeyDrafting, agent.KeyCompliance})

	if len(run.Order) != 2 {
		t.Fatalf("Order = %v, want both steps", run.Order)
	}
	if run.Summary.SuccessfulAgents != 1 {
		t.Errorf("SuccessfulAgents = %d, want 1", run.Summary.SuccessfulAgents)
	}

	// The failed result is still visible downstream.
	prev := compliance.lastIn.Previous[agent.KeyDrafting]
	if prev == nil || prev.Success {
		t.Errorf("compliance previous = %v", compliance.lastIn.Previous)
	}
}

func TestExecuteCriticalFailureHalts(t *testing.T) {
	drafting := &stubAgent{key: agent.KeyDrafting, success: false, critical: true}
	compliance := &stubAgent{key: agent.KeyCompliance, success: true}
	engine := NewEngine(stubRegistry(drafting, compliance))

	run := engine.Execute(context.Background(), "insurance_renewal", nil,
		[]string{agent.KeyDrafting, agent.KeyCompliance})

	if compliance.lastIn != nil {
		t.Error("compliance ran after a critical failure")
	}
	if len(run.Order) != 1 || run.Order[0] != agent.KeyDrafting {
		t.Errorf("Order = %v, want only drafting", run.Order)
	}
	if run.Summary.SuccessfulAgents != 0 {
		t.Errorf("SuccessfulAgents = %d, want 0", run.Summary.SuccessfulAgents)
	}
}
