package llms

import (
	"context"
	"log/slog"
	"time"

	"github.com/campana-ai/campana/logger"
)

// ============================================================================
// LLM GATEWAY
// ============================================================================

// Gateway wraps a Provider and normalizes every call into a Response
// envelope. Provider failures never surface as Go errors: the envelope
// carries Success=false and the error text so downstream agents can degrade
// instead of aborting the run.
type Gateway struct {
	provider Provider
	log      *slog.Logger
}

// NewGateway creates a gateway over the given provider.
func NewGateway(provider Provider) *Gateway {
	return &Gateway{
		provider: provider,
		log:      logger.Get().With("component", "llm_gateway"),
	}
}

// Complete performs a synchronous completion. The returned envelope is always
// non-nil and timestamped.
func (g *Gateway) Complete(ctx context.Context, req Request) Response {
	start := time.Now()

	content, usage, err := g.provider.Complete(ctx, req)
	if err != nil {
		g.log.Error("completion failed",
			"model", g.provider.ModelName(),
			"duration", time.Since(start),
			"error", err)
		return Response{
			ModelUsed: g.provider.ModelName(),
			Timestamp: time.Now().UTC(),
			Success:   false,
			Error:     err.Error(),
		}
	}

	g.log.Debug("completion succeeded",
		"model", g.provider.ModelName(),
		"duration", time.Since(start),
		"total_tokens", usage.TotalTokens)

	return Response{
		Content:   content,
		Usage:     usage,
		ModelUsed: g.provider.ModelName(),
		Timestamp: time.Now().UTC(),
		Success:   true,
	}
}

// CompleteAsync performs the completion in a goroutine and delivers the
// envelope on the returned channel. The channel is buffered so the worker
// never blocks on a slow consumer, and is closed after the single send.
func (g *Gateway) CompleteAsync(ctx context.Context, req Request) <-chan Response {
	ch := make(chan Response, 1)

	go func() {
		defer close(ch)
		ch <- g.Complete(ctx, req)
	}()

	return ch
}

// ModelName returns the underlying provider's model identifier.
func (g *Gateway) ModelName() string {
	return g.provider.ModelName()
}

// Close releases the underlying provider.
func (g *Gateway) Close() error {
	return g.provider.Close()
}
