// Package translate turns the round's final decisions into a concrete
// executable business action: price targets and order quantities, with
// executive oversight annotations.
package translate

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/authority"
	"github.com/BaSui01/retailflow/types"
)

// Config configures translation heuristics and oversight thresholds.
type Config struct {
	// DirectionalStep is the price move applied when a decision names a
	// direction but no target, as a fraction of the current price.
	DirectionalStep float64 `json:"directional_step" yaml:"directional_step" env:"DIRECTIONAL_STEP"`
	// OversightPriceDelta flags price moves beyond this fraction of the
	// current price. Flag only, never block.
	OversightPriceDelta float64 `json:"oversight_price_delta" yaml:"oversight_price_delta" env:"OVERSIGHT_PRICE_DELTA"`
	// OversightCashShare flags order plans consuming more than this
	// fraction of cash on hand.
	OversightCashShare float64 `json:"oversight_cash_share" yaml:"oversight_cash_share" env:"OVERSIGHT_CASH_SHARE"`
	// EmergencyOrderUnits is the per-product quantity of the minimal safe
	// order issued when products are stocked out and no one ordered.
	EmergencyOrderUnits int `json:"emergency_order_units" yaml:"emergency_order_units" env:"EMERGENCY_ORDER_UNITS"`
}

// DefaultConfig returns the standard thresholds: 10% directional steps,
// oversight at 20% price moves and 80% cash commitment.
func DefaultConfig() Config {
	return Config{
		DirectionalStep:     0.10,
		OversightPriceDelta: 0.20,
		OversightCashShare:  0.80,
		EmergencyOrderUnits: 2,
	}
}

var raiseWords = []string{"raise", "increase", "higher", "premium", "up"}
var lowerWords = []string{"lower", "decrease", "cut", "reduce", "drop", "undercut"}

// Translator converts decisions into a BusinessAction.
type Translator struct {
	config    Config
	extractor NumericExtractor
	logger    *zap.Logger
}

// NewTranslator creates a translator. Nil extractor falls back to the regex
// extractor, nil logger to a no-op logger.
func NewTranslator(config Config, extractor NumericExtractor, logger *zap.Logger) *Translator {
	def := DefaultConfig()
	if config.DirectionalStep <= 0 {
		config.DirectionalStep = def.DirectionalStep
	}
	if config.OversightPriceDelta <= 0 {
		config.OversightPriceDelta = def.OversightPriceDelta
	}
	if config.OversightCashShare <= 0 {
		config.OversightCashShare = def.OversightCashShare
	}
	if config.EmergencyOrderUnits <= 0 {
		config.EmergencyOrderUnits = def.EmergencyOrderUnits
	}
	if extractor == nil {
		extractor = RegexExtractor{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		config:    config,
		extractor: extractor,
		logger:    logger.With(zap.String("component", "translator")),
	}
}

// Translate converts the round's decisions into a business action. Higher
// priority decisions write first; later ones never overwrite a product that
// already has a target. When products are stocked out, cash is on hand, and
// nobody ordered anything, a minimal safe order is issued so the store never
// starves by silence.
func (t *Translator) Translate(decisions []types.Decision, status types.StoreStatus) types.BusinessAction {
	ordered := make([]types.Decision, len(decisions))
	copy(ordered, decisions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].Role.TieBreakRank() < ordered[j].Role.TieBreakRank()
	})

	action := types.BusinessAction{
		Prices: make(map[string]float64),
		Orders: make(map[string]int),
	}
	if len(ordered) > 0 {
		action.PrimaryDecisionMaker = ordered[0].Role
		action.Confidence = ordered[0].Confidence
	}

	for _, d := range ordered {
		t.applyPrices(d, status, &action)
		t.applyOrders(d, &action)
		if d.Priority >= authority.OverrideThreshold(d.Role) {
			action.OverrideOccurred = true
		}
	}

	t.emergencyFallback(status, &action)
	t.annotateOversight(status, &action)

	t.logger.Info("decisions translated",
		zap.Int("decisions", len(decisions)),
		zap.Int("price_targets", len(action.Prices)),
		zap.Int("order_lines", len(action.Orders)),
		zap.Bool("override", action.OverrideOccurred))
	return action
}

func (t *Translator) applyPrices(d types.Decision, status types.StoreStatus, action *types.BusinessAction) {
	for product, price := range d.Params.PriceChanges {
		if _, taken := action.Prices[product]; !taken && price > 0 {
			action.Prices[product] = price
		}
	}
	if len(d.Params.PriceChanges) > 0 {
		return
	}

	// no explicit targets: recover them from the wording for the products
	// the decision names
	for _, product := range d.Params.Products {
		if _, taken := action.Prices[product]; taken {
			continue
		}
		current, known := status.Prices[product]
		if target, ok := t.extractor.ExtractNear(product, d.Reasoning); ok && target > 0 {
			action.Prices[product] = target
			continue
		}
		if !known {
			continue
		}
		switch direction(d) {
		case 1:
			action.Prices[product] = current.Price * (1 + t.config.DirectionalStep)
		case -1:
			action.Prices[product] = current.Price * (1 - t.config.DirectionalStep)
		}
	}
}

func (t *Translator) applyOrders(d types.Decision, action *types.BusinessAction) {
	for product, qty := range d.Params.Orders {
		if _, taken := action.Orders[product]; !taken && qty > 0 {
			action.Orders[product] = qty
		}
	}
	if len(d.Params.Orders) > 0 {
		return
	}

	for _, product := range d.Params.Products {
		if _, taken := action.Orders[product]; taken {
			continue
		}
		text := strings.ToLower(d.Reasoning)
		if !strings.Contains(text, "order") && !strings.Contains(text, "restock") {
			continue
		}
		if qty, ok := t.extractor.ExtractNear("order", d.Reasoning); ok && qty >= 1 {
			action.Orders[product] = int(qty)
		}
	}
}

// direction reads the price direction signalled by a decision's wording:
// 1 up, -1 down, 0 unknown.
func direction(d types.Decision) int {
	text := strings.ToLower(d.Type + " " + d.Params.Strategy + " " + d.Reasoning)
	for _, w := range raiseWords {
		if strings.Contains(text, w) {
			return 1
		}
	}
	for _, w := range lowerWords {
		if strings.Contains(text, w) {
			return -1
		}
	}
	return 0
}

// emergencyFallback issues a minimal safe order when products are stocked
// out, cash is on hand, and the round produced no orders at all.
func (t *Translator) emergencyFallback(status types.StoreStatus, action *types.BusinessAction) {
	if len(action.Orders) > 0 || status.Cash <= 0 {
		return
	}
	stockouts := status.StockoutProducts()
	if len(stockouts) == 0 {
		return
	}

	// cheapest first, so the thinnest cash position still restocks something
	sort.SliceStable(stockouts, func(i, j int) bool {
		return unitCost(status, stockouts[i]) < unitCost(status, stockouts[j])
	})

	remaining := status.Cash
	for _, product := range stockouts {
		cost := unitCost(status, product)
		if cost <= 0 || cost > remaining {
			continue
		}
		qty := t.config.EmergencyOrderUnits
		for qty > 0 && float64(qty)*cost > remaining {
			qty--
		}
		if qty == 0 {
			continue
		}
		action.Orders[product] = qty
		remaining -= float64(qty) * cost
	}

	if len(action.Orders) > 0 {
		action.OversightNotes = append(action.OversightNotes,
			"emergency fallback: minimal restock order issued for stocked-out products")
		t.logger.Warn("emergency fallback order issued",
			zap.Int("order_lines", len(action.Orders)),
			zap.Float64("cash", status.Cash))
	}
}

func unitCost(status types.StoreStatus, product string) float64 {
	if p, ok := status.Prices[product]; ok && p.Cost > 0 {
		return p.Cost
	}
	return 1
}

// annotateOversight flags large price moves and heavy cash commitments.
// Oversight observes and records; it never blocks.
func (t *Translator) annotateOversight(status types.StoreStatus, action *types.BusinessAction) {
	for product, target := range action.Prices {
		current, ok := status.Prices[product]
		if !ok || current.Price <= 0 {
			continue
		}
		delta := (target - current.Price) / current.Price
		if delta > t.config.OversightPriceDelta || delta < -t.config.OversightPriceDelta {
			action.OversightNotes = append(action.OversightNotes,
				fmt.Sprintf("price move on %s exceeds %.0f%%: %.2f -> %.2f",
					product, t.config.OversightPriceDelta*100, current.Price, target))
		}
	}

	var orderCost float64
	for product, qty := range action.Orders {
		orderCost += float64(qty) * unitCost(status, product)
	}
	if status.Cash > 0 && orderCost > status.Cash*t.config.OversightCashShare {
		action.OversightNotes = append(action.OversightNotes,
			fmt.Sprintf("order plan commits $%.2f of $%.2f cash on hand", orderCost, status.Cash))
	}
	sort.Strings(action.OversightNotes)
}
