package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Relay       RelayConfig       `yaml:"relay" mapstructure:"relay"`
	WhiteCircle WhiteCircleConfig `yaml:"whitecircle" mapstructure:"whitecircle"`
	Collector   CollectorConfig   `yaml:"collector" mapstructure:"collector"`
	Eval        EvalConfig        `yaml:"eval" mapstructure:"eval"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds direct Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RelayConfig holds the model relay gateway settings. When Key and Workspace
// are both set, the relay is used as the primary generation provider with
// direct Anthropic as the fallback.
type RelayConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Workspace string `yaml:"workspace" mapstructure:"workspace"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Model     string `yaml:"model" mapstructure:"model"`
}

// Enabled reports whether the relay provider is configured.
func (c RelayConfig) Enabled() bool {
	return c.Key != "" && c.Workspace != ""
}

// WhiteCircleConfig holds the external artifact-evaluation API settings.
// When Key is empty, evaluation falls back to the built-in LLM judge.
type WhiteCircleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Enabled reports whether White Circle evaluation is configured.
func (c WhiteCircleConfig) Enabled() bool {
	return c.Key != ""
}

// CollectorConfig configures fetching, chunking, and research behavior.
type CollectorConfig struct {
	TimeoutSecs  int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ChunkWords   int `yaml:"chunk_words" mapstructure:"chunk_words"`
	OverlapWords int `yaml:"overlap_words" mapstructure:"overlap_words"`
	MaxFetch     int `yaml:"max_fetch" mapstructure:"max_fetch"`
}

// EvalConfig holds the per-rubric quality-gate thresholds. A score that is
// not strictly above its threshold flags the artifact.
type EvalConfig struct {
	RelevanceThreshold         float64 `yaml:"relevance_threshold" mapstructure:"relevance_threshold"`
	EvidenceCoverageThreshold  float64 `yaml:"evidence_coverage_threshold" mapstructure:"evidence_coverage_threshold"`
	HallucinationRiskThreshold float64 `yaml:"hallucination_risk_threshold" mapstructure:"hallucination_risk_threshold"`
	ActionabilityThreshold     float64 `yaml:"actionability_threshold" mapstructure:"actionability_threshold"`
	FreshnessThreshold         float64 `yaml:"freshness_threshold" mapstructure:"freshness_threshold"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RIVALIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "rivaliq.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("relay.base_url", "https://run.blaxel.ai")
	v.SetDefault("relay.model", "claude-sonnet")
	v.SetDefault("whitecircle.base_url", "https://api.whitecircle.ai/v1")
	v.SetDefault("collector.timeout_secs", 30)
	v.SetDefault("collector.chunk_words", 800)
	v.SetDefault("collector.overlap_words", 100)
	v.SetDefault("collector.max_fetch", 8)
	v.SetDefault("eval.relevance_threshold", 0.6)
	v.SetDefault("eval.evidence_coverage_threshold", 0.5)
	v.SetDefault("eval.hallucination_risk_threshold", 0.4)
	v.SetDefault("eval.actionability_threshold", 0.5)
	v.SetDefault("eval.freshness_threshold", 0.4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
