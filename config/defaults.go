package config

import (
	"time"

	"github.com/BaSui01/retailflow/coordination"
	"github.com/BaSui01/retailflow/debate"
	"github.com/BaSui01/retailflow/translate"
)

// DefaultConfig returns the built-in defaults. The core runs fully
// deterministic out of the box; the oracle stays off until enabled with an
// API key.
func DefaultConfig() *Config {
	return &Config{
		Coordination: coordination.DefaultConfig(),
		Budget: BudgetConfig{
			AllocatableShare: 0.8,
			ReserveShare:     0.2,
			AlertThreshold:   0.8,
		},
		Debate:    debate.DefaultConfig(),
		Translate: translate.DefaultConfig(),
		Oracle: OracleConfig{
			Model:       "gpt-4o-mini",
			Timeout:     30 * time.Second,
			Temperature: 0.7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "retailflow",
			Addr:      ":9090",
		},
	}
}
