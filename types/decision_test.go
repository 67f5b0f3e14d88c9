package types

import "testing"

func TestDecision_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		decision Decision
		wantCode ErrorCode
	}{
		{
			name: "valid",
			decision: Decision{
				Role: RolePricing, Type: "set_prices",
				Confidence: 0.8, Priority: 5,
			},
		},
		{
			name:     "unknown role",
			decision: Decision{Role: "barista", Type: "set_prices", Confidence: 0.5},
			wantCode: ErrRoleUnknown,
		},
		{
			name:     "empty type",
			decision: Decision{Role: RolePricing, Confidence: 0.5},
			wantCode: ErrInvalidDecision,
		},
		{
			name:     "confidence out of range",
			decision: Decision{Role: RolePricing, Type: "set_prices", Confidence: 1.2},
			wantCode: ErrInvalidDecision,
		},
		{
			name:     "priority out of range",
			decision: Decision{Role: RolePricing, Type: "set_prices", Confidence: 0.5, Priority: 11},
			wantCode: ErrInvalidDecision,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.decision.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if GetErrorCode(err) != tt.wantCode {
				t.Fatalf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestDecision_Boosts(t *testing.T) {
	t.Parallel()

	d := Decision{Role: RoleCrisis, Type: "emergency_response", Confidence: 0.95, Priority: 9}
	d.BoostPriority(2)
	if d.Priority != 10 {
		t.Fatalf("priority must cap at 10, got %d", d.Priority)
	}
	d.BoostConfidence(0.2)
	if d.Confidence != 1.0 {
		t.Fatalf("confidence must cap at 1.0, got %.2f", d.Confidence)
	}
	d.Annotate("debate winner")
	if d.Reasoning != " [debate winner]" {
		t.Fatalf("unexpected reasoning %q", d.Reasoning)
	}
}

func TestDecisionParams_CostEstimate(t *testing.T) {
	t.Parallel()

	if got := (DecisionParams{TotalCost: 40, CashRequired: 10}).CostEstimate(); got != 40 {
		t.Fatalf("declared total wins, got %.2f", got)
	}
	if got := (DecisionParams{EmergencyCost: 15}).CostEstimate(); got != 15 {
		t.Fatalf("emergency cost, got %.2f", got)
	}
	if got := (DecisionParams{CashRequired: 120}).CostEstimate(); got != 120 {
		t.Fatalf("cash required, got %.2f", got)
	}
	if got := (DecisionParams{}).CostEstimate(); got != 0 {
		t.Fatalf("empty params cost nothing, got %.2f", got)
	}
}
