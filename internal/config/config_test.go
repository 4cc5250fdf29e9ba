package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 800, cfg.Collector.ChunkWords)
	assert.Equal(t, 100, cfg.Collector.OverlapWords)
	assert.Equal(t, 8, cfg.Collector.MaxFetch)
	assert.Equal(t, 30, cfg.Collector.TimeoutSecs)
	assert.InDelta(t, 0.6, cfg.Eval.RelevanceThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Eval.EvidenceCoverageThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.Eval.HallucinationRiskThreshold, 1e-9)
	assert.InDelta(t, 0.5, cfg.Eval.ActionabilityThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.Eval.FreshnessThreshold, 1e-9)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/rivaliq
anthropic:
  key: sk-test
relay:
  key: relay-key
  workspace: acme
server:
  port: 9100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/rivaliq", cfg.Store.DatabaseURL)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Relay.Enabled())
	assert.False(t, cfg.WhiteCircle.Enabled())
}

func TestRelayConfig_Enabled(t *testing.T) {
	assert.False(t, RelayConfig{Key: "k"}.Enabled())
	assert.False(t, RelayConfig{Workspace: "w"}.Enabled())
	assert.True(t, RelayConfig{Key: "k", Workspace: "w"}.Enabled())
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nonsense", Format: "json"})
	require.Error(t, err)
}
