// MockSpecialist is a scripted specialist implementation for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/retailflow/types"
)

// MockSpecialist produces a scripted decision (or error) for its role.
type MockSpecialist struct {
	mu sync.Mutex

	role     types.Role
	decision types.Decision
	err      error
	calls    int
	budgets  []float64
}

// NewMockSpecialist creates a specialist that recommends a no-op observation
// decision until scripted otherwise.
func NewMockSpecialist(role types.Role) *MockSpecialist {
	return &MockSpecialist{
		role: role,
		decision: types.Decision{
			Role:       role,
			Type:       "observe",
			Confidence: 0.5,
			Reasoning:  "nothing to report",
			Priority:   1,
		},
	}
}

// WithDecision scripts the decision returned by Analyze. The decision's role
// is forced to the specialist's role.
func (m *MockSpecialist) WithDecision(d types.Decision) *MockSpecialist {
	d.Role = m.role
	m.decision = d
	return m
}

// WithError makes Analyze fail.
func (m *MockSpecialist) WithError(err error) *MockSpecialist {
	m.err = err
	return m
}

// Role returns the specialist's role.
func (m *MockSpecialist) Role() types.Role {
	return m.role
}

// Analyze returns the scripted decision or error, recording the budget the
// caller passed in.
func (m *MockSpecialist) Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error) {
	m.mu.Lock()
	m.calls++
	m.budgets = append(m.budgets, budget)
	m.mu.Unlock()

	if m.err != nil {
		return types.Decision{}, m.err
	}
	return m.decision, nil
}

// Calls returns how many times Analyze ran.
func (m *MockSpecialist) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Budgets returns the budget passed to each Analyze call, in call order.
func (m *MockSpecialist) Budgets() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.budgets))
	copy(out, m.budgets)
	return out
}
