package types

// BusinessAction is the concrete, executable outcome of a round: price
// targets and order quantities per product, plus provenance and oversight
// annotations. It is the only thing the core emits back to the simulation.
type BusinessAction struct {
	Prices               map[string]float64 `json:"prices"`
	Orders               map[string]int     `json:"orders"`
	Confidence           float64            `json:"confidence"`
	PrimaryDecisionMaker Role               `json:"primary_decision_maker"`
	OverrideOccurred     bool               `json:"override_occurred"`
	OversightNotes       []string           `json:"oversight_notes,omitempty"`
}

// Consensus is the result of one coordination round. A round always yields a
// Consensus, even when every specialist failed and the decision list is empty.
type Consensus struct {
	FinalDecisions    []Decision      `json:"final_decisions"`
	ConflictsResolved []string        `json:"conflicts_resolved,omitempty"`
	CoordinationNotes string          `json:"coordination_notes"`
	OverallConfidence float64         `json:"overall_confidence"`
	DebateOccurred    bool            `json:"debate_occurred"`
	Action            *BusinessAction `json:"business_action,omitempty"`
}
