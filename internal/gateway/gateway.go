// Package gateway routes generative calls to a primary provider with a
// secondary fallback. Every component that needs text generation goes
// through the single Generate entry point.
package gateway

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/config"
)

// GenerateRequest carries one generation call's parameters. The same request
// is replayed verbatim against the secondary provider on failover.
type GenerateRequest struct {
	Prompt    string
	MaxTokens int64
	System    string
}

// Provider is one generative backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Generator is the contract the rest of the pipeline depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Gateway tries the primary provider and falls back to the secondary on any
// error. When both fail, the secondary's error is propagated; callers own
// their degraded-result behavior.
type Gateway struct {
	primary   Provider
	secondary Provider
}

// New selects providers once from configuration. The relay, when configured,
// is primary with direct Anthropic as fallback; otherwise direct Anthropic
// serves alone. At least one must be configured.
func New(relayCfg config.RelayConfig, aiCfg config.AnthropicConfig) (*Gateway, error) {
	var direct Provider
	if aiCfg.Key != "" {
		direct = newAnthropicProvider(aiCfg)
	}

	if relayCfg.Enabled() {
		g := &Gateway{
			primary:   newRelayProvider(relayCfg),
			secondary: direct,
		}
		zap.L().Info("gateway: relay primary",
			zap.String("workspace", relayCfg.Workspace),
			zap.Bool("anthropic_fallback", direct != nil),
		)
		return g, nil
	}

	if direct == nil {
		return nil, eris.New("gateway: no provider configured; set relay key+workspace or anthropic key")
	}
	zap.L().Info("gateway: direct anthropic only")
	return &Gateway{primary: direct}, nil
}

// NewWithProviders wires explicit providers; secondary may be nil.
func NewWithProviders(primary, secondary Provider) (*Gateway, error) {
	if primary == nil {
		return nil, eris.New("gateway: primary provider is required")
	}
	return &Gateway{primary: primary, secondary: secondary}, nil
}

// Generate runs the request against the primary provider, falling back to
// the secondary with identical parameters on any failure.
func (g *Gateway) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	text, err := g.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}

	if g.secondary == nil {
		return "", eris.Wrapf(err, "gateway: %s failed, no fallback", g.primary.Name())
	}

	zap.L().Warn("gateway: primary provider failed, falling back",
		zap.String("primary", g.primary.Name()),
		zap.String("secondary", g.secondary.Name()),
		zap.Error(err),
	)

	text, err = g.secondary.Generate(ctx, req)
	if err != nil {
		return "", eris.Wrapf(err, "gateway: fallback %s failed", g.secondary.Name())
	}
	return text, nil
}
