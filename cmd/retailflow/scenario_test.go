package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Default(t *testing.T) {
	t.Parallel()

	s, err := LoadScenario("")
	require.NoError(t, err)
	assert.Equal(t, 7, s.Days)
	assert.Equal(t, 500.0, s.Store.Cash)

	status := s.Store.Status(3)
	assert.Equal(t, 3, status.Day)
	assert.Equal(t, 12, status.Inventory["chips"])
	assert.InDelta(t, 2.00, status.Prices["chips"].Price, 1e-9)
}

func TestLoadScenario_FileOverridesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("days: 3\nstore:\n  cash: 75\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Days)
	assert.Equal(t, 75.0, s.Store.Cash)
	assert.NotEmpty(t, s.Store.Inventory, "unspecified fields keep defaults")
}

func TestSimulation_DemandFollowsPricePosition(t *testing.T) {
	t.Parallel()

	sim := &Simulation{scenario: DefaultScenario(), store: DefaultScenario().Store}

	// chips base demand 5, competitor at 2.10
	assert.Equal(t, 6, sim.demand("chips", 1.99), "undercutting sells more")
	assert.Equal(t, 5, sim.demand("chips", 2.10))
	assert.Equal(t, 4, sim.demand("chips", 2.50), "pricing far above sells less")
	assert.Equal(t, 6, sim.demand("candy", 0.90), "no competitor price, base demand")
}
