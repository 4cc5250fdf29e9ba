package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/rivaliq/internal/config"
	"github.com/sells-group/rivaliq/internal/gateway"
	"github.com/sells-group/rivaliq/internal/pipeline"
	"github.com/sells-group/rivaliq/internal/store"
	"github.com/sells-group/rivaliq/pkg/whitecircle"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rivaliq",
	Short: "Competitor intelligence pipeline",
	Long:  "Ingests competitor sources (URLs, PDFs, pasted text), extracts insights via Claude, clusters themes, and generates quality-gated battlecards and reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens and migrates the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// env bundles the dependencies the pipeline commands share.
type env struct {
	Store store.Store
	Orch  *pipeline.Orchestrator
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv builds the store, the generation gateway, and the orchestrator.
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(cfg.Relay, cfg.Anthropic)
	if err != nil {
		st.Close()
		return nil, err
	}

	var external whitecircle.Client
	if cfg.WhiteCircle.Enabled() {
		external = whitecircle.NewClient(cfg.WhiteCircle.Key, whitecircle.WithBaseURL(cfg.WhiteCircle.BaseURL))
	}

	return &env{
		Store: st,
		Orch:  pipeline.New(st, gw, external, cfg),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
