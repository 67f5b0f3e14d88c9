package specialists

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// CustomerSpecialist guards satisfaction: stockouts and price hikes both
// cost goodwill.
type CustomerSpecialist struct {
	logger *zap.Logger
}

// NewCustomer creates the customer service specialist.
func NewCustomer(logger *zap.Logger) *CustomerSpecialist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerSpecialist{logger: logger.With(zap.String("component", "customer_specialist"))}
}

// Role returns the specialist's role.
func (s *CustomerSpecialist) Role() types.Role { return types.RoleCustomer }

// Analyze scores satisfaction from the snapshot. Every stockout costs five
// points off the baseline 75; prices well above the competitor cost goodwill
// too.
func (s *CustomerSpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	stockouts := status.StockoutProducts()
	score := 75 - len(stockouts)*5

	var priceRisks []string
	for _, product := range sortedProducts(status.Prices) {
		competitor, ok := status.CompetitorPrices[product]
		if !ok {
			continue
		}
		if status.Prices[product].Price > competitor*1.15 {
			priceRisks = append(priceRisks, product)
			score -= 3
		}
	}

	d := types.Decision{
		Role: types.RoleCustomer,
		Type: "customer_experience",
		Params: types.DecisionParams{
			Products: stockouts,
			Strategy: "retention",
			Extra:    map[string]any{"satisfaction_score": score},
		},
		Confidence: s.confidence(score),
		Priority:   s.priority(stockouts, priceRisks),
		Reasoning:  s.reasoning(score, stockouts, priceRisks),
	}
	s.logger.Debug("customer analysis",
		zap.Int("satisfaction_score", score),
		zap.Int("stockouts", len(stockouts)))
	return d, nil
}

func (s *CustomerSpecialist) priority(stockouts, priceRisks []string) int {
	switch {
	case len(stockouts) >= 2:
		return 7
	case len(stockouts) > 0 || len(priceRisks) > 1:
		return 5
	}
	return 3
}

func (s *CustomerSpecialist) confidence(score int) float64 {
	if score < 50 {
		return 0.65
	}
	return 0.75
}

func (s *CustomerSpecialist) reasoning(score int, stockouts, priceRisks []string) string {
	parts := []string{fmt.Sprintf("satisfaction at %d%%", score)}
	if len(stockouts) > 0 {
		parts = append(parts, fmt.Sprintf("customers disappointed by empty shelves: %s",
			strings.Join(stockouts, ", ")))
	}
	if len(priceRisks) > 0 {
		parts = append(parts, fmt.Sprintf("prices on %s risk driving shoppers to the competitor",
			strings.Join(priceRisks, ", ")))
	}
	if len(parts) == 1 {
		parts = append(parts, "customers are happy, keep service levels steady")
	}
	return strings.Join(parts, "; ")
}
