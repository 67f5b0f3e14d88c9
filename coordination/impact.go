package coordination

import (
	"sort"
	"strings"

	"github.com/BaSui01/retailflow/types"
)

// Impact is the predicted business effect of executing one decision.
type Impact struct {
	CashDelta      float64 `json:"cash_delta"`      // negative = spend
	StockoutRelief int     `json:"stockout_relief"` // stocked-out products it restocks
	Score          float64 `json:"score"`
}

// PredictImpact estimates what a decision would do to the store if executed.
// Used for execution ordering and round notes, not for approval.
func PredictImpact(d types.Decision, status types.StoreStatus) Impact {
	var imp Impact
	imp.CashDelta = -d.Params.CostEstimate()

	stockouts := make(map[string]bool)
	for _, p := range status.StockoutProducts() {
		stockouts[p] = true
	}
	for product, qty := range d.Params.Orders {
		if qty > 0 && stockouts[product] {
			imp.StockoutRelief++
		}
	}

	imp.Score = float64(d.Priority) * d.Confidence
	imp.Score += float64(imp.StockoutRelief) * 2
	return imp
}

// stage buckets decision types into coarse execution stages: stock before
// price, price before outreach. Crisis responses run with stock so emergency
// restocks land first.
func stage(decisionType string) int {
	t := strings.ToLower(decisionType)
	switch {
	case strings.Contains(t, "crisis"), strings.Contains(t, "emergency"):
		return 0
	case strings.Contains(t, "inventory"), strings.Contains(t, "order"), strings.Contains(t, "stock"):
		return 0
	case strings.Contains(t, "pricing"), strings.Contains(t, "price"):
		return 1
	case strings.Contains(t, "customer"), strings.Contains(t, "service"):
		return 2
	}
	return 1
}

// OrderForExecution sequences decisions for translation: urgency first, then
// stage dependencies (restocks before repricing before outreach) so a price
// move never fronts-run the inventory it depends on. Ties break on the fixed
// role arbitration order.
func OrderForExecution(decisions []types.Decision, status types.StoreStatus) []types.Decision {
	ordered := make([]types.Decision, len(decisions))
	copy(ordered, decisions)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		si, sj := stage(ordered[i].Type), stage(ordered[j].Type)
		if si != sj {
			return si < sj
		}
		ii := PredictImpact(ordered[i], status)
		ij := PredictImpact(ordered[j], status)
		if ii.Score != ij.Score {
			return ii.Score > ij.Score
		}
		return ordered[i].Role.TieBreakRank() < ordered[j].Role.TieBreakRank()
	})
	return ordered
}
