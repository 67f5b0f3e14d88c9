package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow"
	"github.com/BaSui01/retailflow/config"
	"github.com/BaSui01/retailflow/coordination"
	"github.com/BaSui01/retailflow/types"
)

// Simulation drives the core through a multi-day store run. The market model
// is deliberately simple: fixed daily demand per product, shifted by how our
// price compares to the competitor's.
type Simulation struct {
	core     *retailflow.Core
	scenario *Scenario
	store    ScenarioStore
	logger   *zap.Logger
}

// NewSimulation builds a wired core for the scenario.
func NewSimulation(cfg *config.Config, scenario *Scenario, logger *zap.Logger) (*Simulation, error) {
	core, err := retailflow.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		core:     core,
		scenario: scenario,
		store:    scenario.Store,
		logger:   logger.With(zap.String("component", "simulation")),
	}, nil
}

// Run executes the full scenario day by day.
func (s *Simulation) Run() error {
	ctx := context.Background()

	for day := 1; day <= s.scenario.Days; day++ {
		status := s.store.Status(day)
		consensus := s.core.RunDay(ctx, status)

		perf := s.applyAction(day, consensus)
		s.core.ReportPerformance(perf)

		s.logger.Info("day complete",
			zap.Int("day", day),
			zap.Float64("profit", perf.Profit),
			zap.Float64("revenue", perf.Revenue),
			zap.Float64("cash", s.store.Cash),
			zap.Int("stockouts", perf.Stockouts),
			zap.Bool("debate", consensus.DebateOccurred))
	}

	summary := s.core.Summary()
	s.logger.Info("simulation finished",
		zap.Int("rounds", summary.Rounds),
		zap.Int("debates", summary.Debates),
		zap.Float64("debate_rate", summary.DebateRate),
		zap.Float64("final_cash", s.store.Cash))
	return nil
}

// applyAction executes the consensus against the store and trades one day.
func (s *Simulation) applyAction(day int, consensus types.Consensus) coordination.DayPerformance {
	if consensus.Action != nil {
		for product, price := range consensus.Action.Prices {
			if p, ok := s.store.Prices[product]; ok && price > 0 {
				p.Price = price
				s.store.Prices[product] = p
			}
		}
		for product, qty := range consensus.Action.Orders {
			p, ok := s.store.Prices[product]
			if !ok || qty <= 0 {
				continue
			}
			cost := float64(qty) * p.Cost
			if cost > s.store.Cash {
				continue
			}
			s.store.Cash -= cost
			s.store.Inventory[product] += qty
		}
	}

	var revenue, cogs float64
	for product, stock := range s.store.Inventory {
		p, ok := s.store.Prices[product]
		if !ok {
			continue
		}
		sold := min(stock, s.demand(product, p.Price))
		s.store.Inventory[product] = stock - sold
		revenue += float64(sold) * p.Price
		cogs += float64(sold) * p.Cost
	}
	s.store.Cash += revenue

	stockouts := 0
	for _, qty := range s.store.Inventory {
		if qty == 0 {
			stockouts++
		}
	}

	return coordination.DayPerformance{
		Day:       day,
		Profit:    revenue - cogs,
		Revenue:   revenue,
		Stockouts: stockouts,
	}
}

// demand shifts the base demand by price position: undercutting the
// competitor sells one more unit, pricing well above sells one less.
func (s *Simulation) demand(product string, price float64) int {
	base, ok := s.scenario.Store.DailyDemand[product]
	if !ok {
		base = 4
	}
	competitor, ok := s.store.CompetitorPrices[product]
	if !ok {
		return base
	}
	switch {
	case price < competitor:
		base++
	case price > competitor*1.10:
		base--
	}
	if base < 0 {
		base = 0
	}
	return base
}
