// Package retailflow provides a top-level convenience entry point for the
// multi-specialist retail coordination core.
//
// Usage:
//
//	import "github.com/BaSui01/retailflow"
//
//	core, err := retailflow.New(nil, logger)
//	consensus := core.RunDay(ctx, status)
//
// This wires the default ledger, conflict detector, debate engine, translator
// and the five built-in specialists. Pass a config to customize any of them.
package retailflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/budget"
	"github.com/BaSui01/retailflow/config"
	"github.com/BaSui01/retailflow/conflict"
	"github.com/BaSui01/retailflow/coordination"
	"github.com/BaSui01/retailflow/debate"
	"github.com/BaSui01/retailflow/internal/metrics"
	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/specialists"
	"github.com/BaSui01/retailflow/translate"
	"github.com/BaSui01/retailflow/types"
)

// Core bundles the coordination pipeline behind one handle.
type Core struct {
	Coordinator *coordination.Coordinator
	Ledger      *budget.Ledger
	Debate      *debate.Engine
}

// New builds a fully wired core from the config. A nil config uses defaults;
// the five built-in specialists are registered in the standard order.
func New(cfg *config.Config, logger *zap.Logger) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var orc oracle.Oracle
	if cfg.Oracle.Enabled {
		orc = oracle.NewOpenAI(cfg.Oracle.ToOracleConfig(), logger)
	}

	ledger := budget.NewLedger(cfg.Budget.ToLedgerConfig(), logger)
	engine := debate.NewEngine(cfg.Debate, orc, logger)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, logger)
	}

	coordinator := coordination.NewCoordinator(cfg.Coordination, coordination.Dependencies{
		Ledger:     ledger,
		Detector:   conflict.NewDetector(nil, logger),
		Debate:     engine,
		Translator: translate.NewTranslator(cfg.Translate, nil, logger),
		Metrics:    collector,
	}, logger)

	for _, s := range specialists.All(logger) {
		if err := coordinator.Register(s); err != nil {
			return nil, err
		}
	}

	return &Core{
		Coordinator: coordinator,
		Ledger:      ledger,
		Debate:      engine,
	}, nil
}

// RunDay executes one coordination round for the given store snapshot.
func (c *Core) RunDay(ctx context.Context, status types.StoreStatus) types.Consensus {
	return c.Coordinator.RunRound(ctx, status)
}

// ReportPerformance feeds one day's business result back for trend tracking.
func (c *Core) ReportPerformance(p coordination.DayPerformance) {
	c.Coordinator.ReportPerformance(p)
}

// Summary aggregates the coordination history so far.
func (c *Core) Summary() coordination.RoundSummary {
	return c.Coordinator.Summary()
}
