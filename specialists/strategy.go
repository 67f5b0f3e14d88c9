package specialists

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// StrategySpecialist reads the store's overall position and sets direction.
type StrategySpecialist struct {
	logger *zap.Logger
}

// NewStrategy creates the strategic planner.
func NewStrategy(logger *zap.Logger) *StrategySpecialist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategySpecialist{logger: logger.With(zap.String("component", "strategy_specialist"))}
}

// Role returns the specialist's role.
func (s *StrategySpecialist) Role() types.Role { return types.RoleStrategy }

// Analyze grades financial strength from cash on hand and operational
// efficiency from stockouts, then picks a direction: expand from strength,
// stabilize from weakness.
func (s *StrategySpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	strength := "weak"
	switch {
	case status.Cash >= 300:
		strength = "strong"
	case status.Cash >= 200:
		strength = "moderate"
	}

	stockouts := status.StockoutCount()
	efficiency := "excellent"
	switch {
	case stockouts > 2:
		efficiency = "poor"
	case stockouts > 0:
		efficiency = "good"
	}

	var risks []string
	if strength == "weak" {
		risks = append(risks, "low cash limits options")
	}
	if efficiency == "poor" {
		risks = append(risks, "multiple stockouts")
	}

	direction := "stabilize"
	if strength == "strong" && efficiency != "poor" {
		direction = "expand"
	}

	d := types.Decision{
		Role: types.RoleStrategy,
		Type: "strategic_planning",
		Params: types.DecisionParams{
			Strategy: direction,
			Extra: map[string]any{
				"financial_strength":     strength,
				"operational_efficiency": efficiency,
			},
		},
		Confidence: s.confidence(strength),
		Priority:   s.priority(strength, risks),
		Reasoning:  s.reasoning(strength, efficiency, direction, risks),
	}
	s.logger.Debug("strategic assessment",
		zap.String("strength", strength),
		zap.String("direction", direction))
	return d, nil
}

func (s *StrategySpecialist) priority(strength string, risks []string) int {
	switch {
	case strength == "weak":
		return 7
	case len(risks) > 1:
		return 5
	}
	return 3
}

func (s *StrategySpecialist) confidence(strength string) float64 {
	switch strength {
	case "strong":
		return 0.95
	case "weak":
		return 0.7
	}
	return 0.85
}

func (s *StrategySpecialist) reasoning(strength, efficiency, direction string, risks []string) string {
	parts := []string{fmt.Sprintf("financial strength %s, operations %s, direction: %s",
		strength, efficiency, direction)}
	for _, r := range risks {
		parts = append(parts, "risk: "+r)
	}
	return strings.Join(parts, "; ")
}
