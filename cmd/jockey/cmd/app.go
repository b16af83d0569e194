package cmd

import (
	"context"

	"github.com/ecommercejockey/jockey/internal/config"
	"github.com/ecommercejockey/jockey/internal/orchestrator"
	"github.com/fatih/color"
)

// getOrchestrator loads the configuration and opens the database-backed
// orchestrator that every catalog command runs through
func getOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		color.Yellow("  Warning: Could not load config, using defaults")
		cfg = config.DefaultConfig()
	}

	orch := orchestrator.New(cfg)
	if err := orch.Initialize(ctx); err != nil {
		return nil, err
	}
	return orch, nil
}
