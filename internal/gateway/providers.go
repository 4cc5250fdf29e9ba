package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rivaliq/internal/config"
	"github.com/sells-group/rivaliq/pkg/anthropic"
)

// anthropicProvider calls the Anthropic API directly.
type anthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicProvider(cfg config.AnthropicConfig) *anthropicProvider {
	return &anthropicProvider{
		client:    anthropic.NewClient(cfg.Key),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropic.Message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", eris.Wrap(err, "gateway: anthropic generate")
	}
	resp.Usage.LogCost(p.model, "generate")

	return resp.Text(), nil
}

// relayProvider calls an Anthropic-compatible model relay. The underlying
// client is built lazily on first use so that constructing a Gateway never
// performs network-adjacent setup.
type relayProvider struct {
	cfg    config.RelayConfig
	once   sync.Once
	client anthropic.Client
}

func newRelayProvider(cfg config.RelayConfig) *relayProvider {
	return &relayProvider{cfg: cfg}
}

func (p *relayProvider) Name() string { return "relay" }

func (p *relayProvider) init() {
	baseURL := fmt.Sprintf("%s/%s/models/%s", p.cfg.BaseURL, p.cfg.Workspace, p.cfg.Model)
	p.client = anthropic.NewProxiedClient(baseURL, map[string]string{
		"X-Blaxel-Authorization": "Bearer " + p.cfg.Key,
		"X-Blaxel-Workspace":     p.cfg.Workspace,
	})
}

func (p *relayProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.once.Do(p.init)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.cfg.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []anthropic.Message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return "", eris.Wrap(err, "gateway: relay generate")
	}

	return resp.Text(), nil
}
