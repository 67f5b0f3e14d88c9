package types

import "fmt"

// DecisionParams is the structured payload of a decision. Known fields cover
// the per-domain schemas (pricing, ordering, spend requests); Extra carries
// auxiliary fields that have no first-class slot.
type DecisionParams struct {
	// PriceChanges maps product name to an absolute target price.
	PriceChanges map[string]float64 `json:"price_changes,omitempty"`
	// Orders maps product name to a requested order quantity.
	Orders map[string]int `json:"orders,omitempty"`
	// Products lists the products this decision is scoped to.
	Products []string `json:"products,omitempty"`
	// TotalCost is the declared total cost of executing the decision.
	TotalCost float64 `json:"total_cost,omitempty"`
	// CashRequired is the cash demand used for resource conflict detection.
	CashRequired float64 `json:"cash_required,omitempty"`
	// EmergencyCost is the cost of an emergency response, drawn from reserve.
	EmergencyCost float64 `json:"emergency_cost,omitempty"`
	// Strategy is a free-form strategic posture label (e.g. "maximize_profit").
	Strategy string `json:"strategy,omitempty"`
	// Extra holds auxiliary fields outside the known schema.
	Extra map[string]any `json:"extra,omitempty"`
}

// CostEstimate returns the cash this decision would consume if executed.
// Declared totals win over derived demand; most decisions cost nothing.
func (p DecisionParams) CostEstimate() float64 {
	switch {
	case p.TotalCost > 0:
		return p.TotalCost
	case p.EmergencyCost > 0:
		return p.EmergencyCost
	case p.CashRequired > 0:
		return p.CashRequired
	}
	return 0
}

// Decision is one specialist's recommendation for the current round.
// Decisions are created fresh each round and only ever annotated afterwards
// (reasoning suffixes, priority boosts), never rewritten.
type Decision struct {
	Role       Role           `json:"role"`
	Type       string         `json:"decision_type"`
	Params     DecisionParams `json:"parameters"`
	Confidence float64        `json:"confidence"` // 0.0-1.0
	Reasoning  string         `json:"reasoning"`
	Priority   int            `json:"priority"` // 0-10, higher = more urgent
}

// Validate checks the declared ranges. Decisions failing validation are
// dropped by the collector with a warning rather than aborting the round.
func (d *Decision) Validate() error {
	if !d.Role.Valid() {
		return NewError(ErrRoleUnknown, fmt.Sprintf("unknown role %q", d.Role))
	}
	if d.Type == "" {
		return NewError(ErrInvalidDecision, "decision type is empty")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return NewError(ErrInvalidDecision, fmt.Sprintf("confidence %.2f outside [0,1]", d.Confidence))
	}
	if d.Priority < 0 || d.Priority > 10 {
		return NewError(ErrInvalidDecision, fmt.Sprintf("priority %d outside [0,10]", d.Priority))
	}
	return nil
}

// Annotate appends a bracketed note to the decision reasoning.
func (d *Decision) Annotate(note string) {
	d.Reasoning += " [" + note + "]"
}

// BoostPriority raises priority by delta, capped at 10.
func (d *Decision) BoostPriority(delta int) {
	d.Priority += delta
	if d.Priority > 10 {
		d.Priority = 10
	}
}

// BoostConfidence raises confidence by delta, capped at 1.0.
func (d *Decision) BoostConfidence(delta float64) {
	d.Confidence += delta
	if d.Confidence > 1.0 {
		d.Confidence = 1.0
	}
}
