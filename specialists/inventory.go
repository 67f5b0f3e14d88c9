package specialists

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

const (
	lowStockLevel    = 2
	overstockLevel   = 15
	defaultForecast  = 5
	emergencyOrder   = 8
	regularOrderFlow = 6
)

// InventorySpecialist watches stock levels and recommends restocking.
type InventorySpecialist struct {
	logger *zap.Logger
}

// NewInventory creates the inventory specialist.
func NewInventory(logger *zap.Logger) *InventorySpecialist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventorySpecialist{logger: logger.With(zap.String("component", "inventory_specialist"))}
}

// Role returns the specialist's role.
func (s *InventorySpecialist) Role() types.Role { return types.RoleInventory }

// Analyze classifies every product's stock level and builds a restock plan.
// Stockouts reorder at double the forecast, low stock at forecast plus a
// safety buffer. A plan exceeding the remaining allocation is sized down to
// it rather than submitted whole.
func (s *InventorySpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	var stockouts, low, optimal []string
	for _, product := range sortedProducts(status.Inventory) {
		switch qty := status.Inventory[product]; {
		case qty == 0:
			stockouts = append(stockouts, product)
		case qty <= lowStockLevel:
			low = append(low, product)
		case qty < overstockLevel:
			optimal = append(optimal, product)
		}
	}

	orders := make(map[string]int)
	for _, product := range stockouts {
		orders[product] = max(defaultForecast*2, emergencyOrder)
	}
	for _, product := range low {
		orders[product] = max(defaultForecast+3, regularOrderFlow)
	}

	totalCost := planCost(orders, status)
	sized := false
	if budget > 0 && totalCost > budget {
		totalCost = sizeToBudget(orders, stockouts, status, budget)
		sized = true
	}

	reasoning := s.reasoning(stockouts, low, orders)
	if sized {
		reasoning += fmt.Sprintf("; order plan sized to the $%.2f remaining allocation", budget)
	}

	d := types.Decision{
		Role: types.RoleInventory,
		Type: "inventory_optimization",
		Params: types.DecisionParams{
			Orders:    orders,
			Products:  append(append([]string{}, stockouts...), low...),
			TotalCost: totalCost,
		},
		Confidence: s.confidence(stockouts, low, optimal),
		Priority:   s.priority(stockouts, low),
		Reasoning:  reasoning,
	}
	s.logger.Debug("inventory analysis",
		zap.Int("stockouts", len(stockouts)),
		zap.Int("low_stock", len(low)),
		zap.Int("order_lines", len(orders)))
	return d, nil
}

func (s *InventorySpecialist) priority(stockouts, low []string) int {
	switch {
	case len(stockouts) > 2:
		return 9
	case len(stockouts) > 0:
		return 7
	case len(low) > 3:
		return 6
	case len(low) > 0:
		return 4
	}
	return 2
}

func (s *InventorySpecialist) confidence(stockouts, low, optimal []string) float64 {
	confidence := 0.8
	if len(stockouts)*10+len(low)*5 > 20 {
		confidence -= 0.2
	}
	if len(optimal) > len(stockouts)+len(low) {
		confidence += 0.1
	}
	return confidence
}

func (s *InventorySpecialist) reasoning(stockouts, low []string, orders map[string]int) string {
	var parts []string
	if len(stockouts) > 0 {
		parts = append(parts, fmt.Sprintf("%d products out of stock: %s",
			len(stockouts), strings.Join(stockouts, ", ")))
	}
	if len(low) > 0 {
		parts = append(parts, fmt.Sprintf("%d products dangerously low: %s",
			len(low), strings.Join(low, ", ")))
	}
	if len(orders) > 0 {
		parts = append(parts, fmt.Sprintf("restock order prepared for %d products", len(orders)))
	}
	if len(parts) == 0 {
		return "inventory levels optimal, continuing to monitor"
	}
	return strings.Join(parts, "; ")
}

// sizeToBudget scales the order plan down to the remaining allocation.
// Stockout lines keep at least one unit while anything at all fits; low-stock
// lines shrink or drop first. Returns the sized plan's cost.
func sizeToBudget(orders map[string]int, stockouts []string, status types.StoreStatus, budget float64) float64 {
	total := planCost(orders, status)
	if total <= budget {
		return total
	}

	scale := budget / total
	mustKeep := make(map[string]bool, len(stockouts))
	for _, product := range stockouts {
		mustKeep[product] = true
	}
	for _, product := range sortedProducts(orders) {
		qty := int(float64(orders[product]) * scale)
		if qty < 1 {
			if !mustKeep[product] {
				delete(orders, product)
				continue
			}
			qty = 1
		}
		orders[product] = qty
	}

	// min-one floors can leave a tight allocation still exceeded
	for planCost(orders, status) > budget {
		trimmed := false
		for _, product := range sortedProducts(orders) {
			if planCost(orders, status) <= budget {
				break
			}
			orders[product]--
			if orders[product] == 0 {
				delete(orders, product)
			}
			trimmed = true
		}
		if !trimmed {
			break
		}
	}
	return planCost(orders, status)
}

func planCost(orders map[string]int, status types.StoreStatus) float64 {
	var total float64
	for product, qty := range orders {
		if p, ok := status.Prices[product]; ok {
			total += float64(qty) * p.Cost
		}
	}
	return total
}

func sortedProducts[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
