// Package oracle abstracts the external model consulted during debates for
// positions, rebuttals and compromise proposals. The coordination core treats
// it as an unreliable collaborator: every call carries a timeout and every
// failure degrades to a neutral default instead of stalling the round.
package oracle

import (
	"context"
	"fmt"

	"github.com/BaSui01/retailflow/types"
)

// Stance is a position's level of agreement with the debate topic's framing.
type Stance string

const (
	StanceStronglyAgree    Stance = "strongly_agree"
	StanceAgree            Stance = "agree"
	StanceNeutral          Stance = "neutral"
	StanceDisagree         Stance = "disagree"
	StanceStronglyDisagree Stance = "strongly_disagree"
)

var stanceOrdinals = map[Stance]int{
	StanceStronglyAgree:    2,
	StanceAgree:            1,
	StanceNeutral:          0,
	StanceDisagree:         -1,
	StanceStronglyDisagree: -2,
}

// Ordinal maps the stance onto the -2..2 agreement scale.
func (s Stance) Ordinal() int {
	return stanceOrdinals[s]
}

// Valid reports whether s is one of the five known stances.
func (s Stance) Valid() bool {
	_, ok := stanceOrdinals[s]
	return ok
}

// Extreme reports whether the stance sits at either end of the scale.
func (s Stance) Extreme() bool {
	return s == StanceStronglyAgree || s == StanceStronglyDisagree
}

// StanceDistance returns the normalized disagreement between two stances,
// 0.0 for identical through 1.0 for opposite extremes.
func StanceDistance(a, b Stance) float64 {
	d := a.Ordinal() - b.Ordinal()
	if d < 0 {
		d = -d
	}
	return float64(d) / 4
}

// Position is one participant's opening statement in a debate.
type Position struct {
	Role       types.Role `json:"role"`
	Stance     Stance     `json:"stance"`
	Statement  string     `json:"statement"`
	Arguments  []string   `json:"arguments,omitempty"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

// Rebuttal is one participant's response to another's position.
type Rebuttal struct {
	From   types.Role `json:"from"`
	Target types.Role `json:"target"`
	Text   string     `json:"text"`
}

// PositionRequest asks the oracle for a participant's opening position.
type PositionRequest struct {
	Role       types.Role
	Topic      string
	Status     types.StoreStatus
	Triggering []types.Decision
}

// RebuttalRequest asks the oracle for a response to a target position.
type RebuttalRequest struct {
	From   Position
	Target Position
	Topic  string
	Status types.StoreStatus
}

// CompromiseRequest asks the oracle to draft middle ground between positions.
type CompromiseRequest struct {
	Topic     string
	Positions []Position
	Status    types.StoreStatus
}

// Oracle generates debate content. Implementations must honor ctx deadlines.
type Oracle interface {
	GeneratePosition(ctx context.Context, req PositionRequest) (Position, error)
	GenerateRebuttal(ctx context.Context, req RebuttalRequest) (Rebuttal, error)
	GenerateCompromise(ctx context.Context, req CompromiseRequest) (string, error)
}

// DefaultPosition is the neutral fallback used when the oracle is absent or
// fails: the participant still votes, just without conviction.
func DefaultPosition(role types.Role) Position {
	return Position{
		Role:       role,
		Stance:     StanceNeutral,
		Statement:  fmt.Sprintf("%s is still analyzing the situation", role.Persona()),
		Arguments:  []string{"analysis in progress"},
		Confidence: 0.5,
		Reasoning:  "fallback position",
	}
}
