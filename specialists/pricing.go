package specialists

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// PricingSpecialist fights the competitor on price and margin.
type PricingSpecialist struct {
	logger *zap.Logger
}

// NewPricing creates the pricing specialist.
func NewPricing(logger *zap.Logger) *PricingSpecialist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingSpecialist{logger: logger.With(zap.String("component", "pricing_specialist"))}
}

// Role returns the specialist's role.
func (s *PricingSpecialist) Role() types.Role { return types.RolePricing }

// Analyze compares every price against the competitor. Significantly
// overpriced products undercut to just below the competitor; significantly
// underpriced ones claw margin back to just under it. The overall market
// position sets urgency and confidence.
func (s *PricingSpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	changes := make(map[string]float64)
	var overpriced, dominating []string
	winning := 0.0
	compared := 0

	for _, product := range sortedProducts(status.Prices) {
		our := status.Prices[product].Price
		competitor, ok := status.CompetitorPrices[product]
		if !ok {
			continue
		}
		compared++
		gap := our - competitor
		switch {
		case gap > 0.10:
			overpriced = append(overpriced, product)
			changes[product] = round2(competitor - 0.05)
		case gap < -0.10:
			dominating = append(dominating, product)
			winning++
		case gap < -0.05:
			// slightly cheap, recover margin without losing the lead
			changes[product] = round2(competitor - 0.01)
			winning += 0.5
		}
	}

	position := "competitive"
	if compared > 0 {
		switch rate := winning / float64(compared); {
		case rate >= 0.7:
			position = "dominating"
		case rate < 0.4:
			position = "defensive"
		}
	}

	d := types.Decision{
		Role: types.RolePricing,
		Type: "pricing_warfare",
		Params: types.DecisionParams{
			PriceChanges: changes,
			Strategy:     "maximize_profit",
		},
		Confidence: s.confidence(position),
		Priority:   s.priority(position, overpriced),
		Reasoning:  s.reasoning(position, overpriced, dominating, changes),
	}
	s.logger.Debug("pricing analysis",
		zap.String("position", position),
		zap.Int("price_changes", len(changes)))
	return d, nil
}

func (s *PricingSpecialist) priority(position string, overpriced []string) int {
	switch {
	case position == "defensive":
		return 8
	case len(overpriced) > 0:
		return 6
	}
	return 4
}

func (s *PricingSpecialist) confidence(position string) float64 {
	switch position {
	case "dominating":
		return 0.9
	case "defensive":
		return 0.75
	}
	return 0.85
}

func (s *PricingSpecialist) reasoning(position string, overpriced, dominating []string, changes map[string]float64) string {
	parts := []string{fmt.Sprintf("market position %s", position)}
	if len(overpriced) > 0 {
		parts = append(parts, fmt.Sprintf("losing on price for %s, undercut to take share back",
			strings.Join(overpriced, ", ")))
	}
	if len(dominating) > 0 {
		parts = append(parts, fmt.Sprintf("dominating on %s", strings.Join(dominating, ", ")))
	}
	if len(changes) > 0 {
		parts = append(parts, fmt.Sprintf("%d price moves planned", len(changes)))
	}
	return strings.Join(parts, "; ")
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
