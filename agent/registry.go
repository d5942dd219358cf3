package agent

import (
	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/registry"
)

// ============================================================================
// AGENT REGISTRY
// ============================================================================

// Registry manages the pipeline's agents by key.
type Registry struct {
	*registry.BaseRegistry[Agent]
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		BaseRegistry: registry.NewBaseRegistry[Agent](),
	}
}

// NewDefaultRegistry creates a registry populated with the four standard
// pipeline agents sharing one gateway and audit store.
func NewDefaultRegistry(gateway Gateway, audits *audit.Store) *Registry {
	r := NewRegistry()
	for _, a := range []Agent{
		NewDraftingAgent(gateway, audits),
		NewComplianceAgent(gateway, audits),
		NewFeedbackAgent(gateway, audits),
		NewDecisionAgent(gateway, audits),
	} {
		// Keys are hardcoded constants, registration cannot collide.
		_ = r.Register(a.Key(), a)
	}
	return r
}
