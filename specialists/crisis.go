package specialists

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// Threat levels, worst first.
const (
	threatRed    = "RED"
	threatOrange = "ORANGE"
	threatGreen  = "GREEN"
)

// CrisisSpecialist assesses immediate threats to cash and operations.
type CrisisSpecialist struct {
	logger *zap.Logger
}

// NewCrisis creates the crisis specialist.
func NewCrisis(logger *zap.Logger) *CrisisSpecialist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrisisSpecialist{logger: logger.With(zap.String("component", "crisis_specialist"))}
}

// Role returns the specialist's role.
func (s *CrisisSpecialist) Role() types.Role { return types.RoleCrisis }

// Analyze runs the threat assessment: cash at or under 50 or five stockouts
// is a red alert, cash under 100 or three stockouts is orange. Red alerts
// carry an emergency restock costed against the cheapest missing products.
// Emergency orders are not sized to the daily allocation; they escalate to
// the reserve instead.
func (s *CrisisSpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	stockouts := status.StockoutProducts()
	level := threatGreen
	var threats []string

	if status.Cash <= 50 {
		level = threatRed
		threats = append(threats, "cash critically low")
	} else if status.Cash <= 100 {
		level = threatOrange
		threats = append(threats, "financial pressure increasing")
	}

	if len(stockouts) >= 5 {
		level = threatRed
		threats = append(threats, fmt.Sprintf("%d products out of stock", len(stockouts)))
	} else if len(stockouts) >= 3 {
		if level != threatRed {
			level = threatOrange
		}
		threats = append(threats, "multiple stockouts affecting operations")
	}

	params := types.DecisionParams{Strategy: "crisis_containment"}
	if level == threatRed && len(stockouts) > 0 {
		params.Products = stockouts
		params.EmergencyCost = s.emergencyCost(status, stockouts)
		params.Orders = make(map[string]int, len(stockouts))
		for _, product := range stockouts {
			params.Orders[product] = 3
		}
	}

	d := types.Decision{
		Role:       types.RoleCrisis,
		Type:       "crisis_management",
		Params:     params,
		Confidence: s.confidence(level),
		Priority:   s.priority(level),
		Reasoning:  s.reasoning(level, threats),
	}
	s.logger.Debug("threat assessment",
		zap.String("level", level),
		zap.Int("threats", len(threats)))
	return d, nil
}

func (s *CrisisSpecialist) emergencyCost(status types.StoreStatus, stockouts []string) float64 {
	var cost float64
	for _, product := range stockouts {
		if p, ok := status.Prices[product]; ok {
			cost += 3 * p.Cost
		}
	}
	return cost
}

func (s *CrisisSpecialist) priority(level string) int {
	switch level {
	case threatRed:
		return 9
	case threatOrange:
		return 7
	}
	return 2
}

func (s *CrisisSpecialist) confidence(level string) float64 {
	if level == threatRed {
		return 0.95
	}
	return 0.9
}

func (s *CrisisSpecialist) reasoning(level string, threats []string) string {
	if len(threats) == 0 {
		return "threat level GREEN, all systems nominal"
	}
	return fmt.Sprintf("threat level %s: %s", level, strings.Join(threats, "; "))
}
