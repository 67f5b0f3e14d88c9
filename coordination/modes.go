package coordination

import (
	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// OperationMode is the coordination posture for a day.
type OperationMode string

const (
	ModeDailyOperations  OperationMode = "daily_operations"
	ModeStrategicReview  OperationMode = "strategic_review"
	ModeCrisisManagement OperationMode = "crisis_management"
)

// DayPerformance is one day's business result, fed back by the caller after
// each round so trend metrics can be computed.
type DayPerformance struct {
	Day       int     `json:"day"`
	Profit    float64 `json:"profit"`
	Revenue   float64 `json:"revenue"`
	Stockouts int     `json:"stockouts"`
}

// BusinessMetrics is the snapshot used to pick an operation mode.
type BusinessMetrics struct {
	Day           int     `json:"day"`
	DailyProfit   float64 `json:"daily_profit"`
	DailyRevenue  float64 `json:"daily_revenue"`
	Stockouts     int     `json:"stockouts"`
	Cash          float64 `json:"cash"`
	ProfitTrend   float64 `json:"profit_trend"`   // % change vs previous day
	RevenueTrend  float64 `json:"revenue_trend"`  // % change vs previous day
	StockoutTrend int     `json:"stockout_trend"` // count change over 3 days
	HasHistory    bool    `json:"has_history"`
}

// CrisisTriggered reports whether the metrics warrant crisis management.
// Profit triggers need at least one reported day; cash and stockout triggers
// always apply.
func (m BusinessMetrics) CrisisTriggered() bool {
	return (m.HasHistory && m.DailyProfit < 5.0) ||
		m.ProfitTrend < -20.0 ||
		m.RevenueTrend < -15.0 ||
		m.Stockouts >= 3 ||
		m.Cash < 50.0 ||
		m.StockoutTrend >= 2
}

// NeedsStrategicReview reports whether the day calls for a strategic review.
// Reviews run every third day.
func (m BusinessMetrics) NeedsStrategicReview() bool {
	return m.Day > 0 && m.Day%3 == 0
}

// ModePlanner derives the operation mode from the store snapshot and recent
// performance.
type ModePlanner struct {
	logger *zap.Logger
}

// NewModePlanner creates a planner. Nil logger falls back to a no-op logger.
func NewModePlanner(logger *zap.Logger) *ModePlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModePlanner{logger: logger.With(zap.String("component", "mode_planner"))}
}

// ComputeMetrics builds the metrics snapshot from the current status and the
// recent performance window (oldest first).
func (p *ModePlanner) ComputeMetrics(status types.StoreStatus, recent []DayPerformance) BusinessMetrics {
	m := BusinessMetrics{
		Day:       status.Day,
		Stockouts: status.StockoutCount(),
		Cash:      status.Cash,
	}
	if len(recent) > 0 {
		last := recent[len(recent)-1]
		m.DailyProfit = last.Profit
		m.DailyRevenue = last.Revenue
		m.HasHistory = true
	}
	if len(recent) >= 2 {
		prev := recent[len(recent)-2]
		last := recent[len(recent)-1]
		if prev.Profit > 0 {
			m.ProfitTrend = (last.Profit - prev.Profit) / prev.Profit * 100
		}
		if prev.Revenue > 0 {
			m.RevenueTrend = (last.Revenue - prev.Revenue) / prev.Revenue * 100
		}
	}
	if len(recent) >= 3 {
		window := recent[len(recent)-3:]
		m.StockoutTrend = window[len(window)-1].Stockouts - window[0].Stockouts
	}
	return m
}

// Plan picks the operation mode for the day.
func (p *ModePlanner) Plan(status types.StoreStatus, recent []DayPerformance) (OperationMode, BusinessMetrics) {
	m := p.ComputeMetrics(status, recent)
	switch {
	case m.CrisisTriggered():
		p.logger.Warn("crisis mode activated",
			zap.Int("day", m.Day),
			zap.Float64("cash", m.Cash),
			zap.Int("stockouts", m.Stockouts))
		return ModeCrisisManagement, m
	case m.NeedsStrategicReview():
		p.logger.Info("strategic review day", zap.Int("day", m.Day))
		return ModeStrategicReview, m
	default:
		return ModeDailyOperations, m
	}
}

// ActiveRoles returns the specialists gated in for a mode when mode gating
// is enabled. Daily operations keep the two core operators; reviews add the
// planner; crises add the crisis manager on top of that.
func ActiveRoles(mode OperationMode) []types.Role {
	switch mode {
	case ModeCrisisManagement:
		return []types.Role{types.RoleInventory, types.RolePricing, types.RoleStrategy, types.RoleCrisis}
	case ModeStrategicReview:
		return []types.Role{types.RoleInventory, types.RolePricing, types.RoleStrategy}
	default:
		return []types.Role{types.RoleInventory, types.RolePricing}
	}
}
