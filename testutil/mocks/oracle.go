// MockOracle is a scripted oracle implementation for tests.
//
// Supports fixed positions per role, error injection and call recording.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/types"
)

// MockOracle implements oracle.Oracle with scripted responses.
type MockOracle struct {
	mu sync.Mutex

	positions      map[types.Role]oracle.Position
	positionErrs   map[types.Role]error
	rebuttalTexts  map[types.Role]string
	rebuttalErr    error
	compromiseText string
	compromiseErr  error

	positionCalls   []types.Role
	rebuttalCalls   int
	compromiseCalls int
}

// NewMockOracle creates an empty mock; unscripted roles fall back to the
// neutral default position.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		positions:     make(map[types.Role]oracle.Position),
		positionErrs:  make(map[types.Role]error),
		rebuttalTexts: make(map[types.Role]string),
	}
}

// --- Builder methods ---

// WithPosition scripts the position returned for a role.
func (m *MockOracle) WithPosition(role types.Role, pos oracle.Position) *MockOracle {
	pos.Role = role
	m.positions[role] = pos
	return m
}

// WithStance scripts a minimal position with the given stance, statement and
// confidence.
func (m *MockOracle) WithStance(role types.Role, stance oracle.Stance, statement string, confidence float64) *MockOracle {
	return m.WithPosition(role, oracle.Position{
		Stance:     stance,
		Statement:  statement,
		Confidence: confidence,
	})
}

// WithPositionError makes position generation fail for a role.
func (m *MockOracle) WithPositionError(role types.Role, err error) *MockOracle {
	m.positionErrs[role] = err
	return m
}

// WithRebuttal scripts the rebuttal text a role produces.
func (m *MockOracle) WithRebuttal(from types.Role, text string) *MockOracle {
	m.rebuttalTexts[from] = text
	return m
}

// WithRebuttalError makes all rebuttal generation fail.
func (m *MockOracle) WithRebuttalError(err error) *MockOracle {
	m.rebuttalErr = err
	return m
}

// WithCompromise scripts the compromise statement.
func (m *MockOracle) WithCompromise(text string) *MockOracle {
	m.compromiseText = text
	return m
}

// WithCompromiseError makes compromise generation fail.
func (m *MockOracle) WithCompromiseError(err error) *MockOracle {
	m.compromiseErr = err
	return m
}

// --- oracle.Oracle implementation ---

func (m *MockOracle) GeneratePosition(ctx context.Context, req oracle.PositionRequest) (oracle.Position, error) {
	m.mu.Lock()
	m.positionCalls = append(m.positionCalls, req.Role)
	m.mu.Unlock()

	if err := m.positionErrs[req.Role]; err != nil {
		return oracle.Position{}, err
	}
	if pos, ok := m.positions[req.Role]; ok {
		return pos, nil
	}
	return oracle.DefaultPosition(req.Role), nil
}

func (m *MockOracle) GenerateRebuttal(ctx context.Context, req oracle.RebuttalRequest) (oracle.Rebuttal, error) {
	m.mu.Lock()
	m.rebuttalCalls++
	m.mu.Unlock()

	if m.rebuttalErr != nil {
		return oracle.Rebuttal{}, m.rebuttalErr
	}
	text := m.rebuttalTexts[req.From.Role]
	if text == "" {
		text = fmt.Sprintf("%s disputes %s", req.From.Role.Persona(), req.Target.Role.Persona())
	}
	return oracle.Rebuttal{From: req.From.Role, Target: req.Target.Role, Text: text}, nil
}

func (m *MockOracle) GenerateCompromise(ctx context.Context, req oracle.CompromiseRequest) (string, error) {
	m.mu.Lock()
	m.compromiseCalls++
	m.mu.Unlock()

	if m.compromiseErr != nil {
		return "", m.compromiseErr
	}
	if m.compromiseText != "" {
		return m.compromiseText, nil
	}
	return "split the difference", nil
}

// --- Call inspection ---

// PositionCalls returns the roles positions were requested for, in call order.
func (m *MockOracle) PositionCalls() []types.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Role, len(m.positionCalls))
	copy(out, m.positionCalls)
	return out
}

// RebuttalCalls returns how many rebuttals were requested.
func (m *MockOracle) RebuttalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rebuttalCalls
}

// CompromiseCalls returns how many compromises were requested.
func (m *MockOracle) CompromiseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compromiseCalls
}
