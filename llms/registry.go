package llms

import (
	"fmt"

	"github.com/campana-ai/campana/config"
	"github.com/campana-ai/campana/registry"
)

// ============================================================================
// PROVIDER REGISTRY
// ============================================================================

// ProviderRegistry manages named LLM providers.
type ProviderRegistry struct {
	*registry.BaseRegistry[Provider]
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		BaseRegistry: registry.NewBaseRegistry[Provider](),
	}
}

// CreateProvider instantiates a provider from config and registers it under
// the given name.
func (r *ProviderRegistry) CreateProvider(name string, cfg *config.LLMProviderConfig) (Provider, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	if err := r.Register(name, provider); err != nil {
		return nil, err
	}
	return provider, nil
}

// NewProvider instantiates a provider for the configured type.
func NewProvider(cfg *config.LLMProviderConfig) (Provider, error) {
	cfg.SetDefaults()
	switch cfg.Type {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM type: %s", cfg.Type)
	}
}
