package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.roundsTotal)
	assert.NotNil(t, collector.decisionsTotal)
	assert.NotNil(t, collector.debatesTotal)
	assert.NotNil(t, collector.budgetRejectionsTotal)
}

func TestCollector_RecordRound(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRound("daily_operations", 50*time.Millisecond, 0.8)
	collector.RecordRound("crisis_management", 120*time.Millisecond, 0.6)

	assert.Greater(t, testutil.CollectAndCount(collector.roundsTotal), 0)
}

func TestCollector_RecordDebate(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordDebate("pricing_strategy", true)
	collector.RecordDebate("pricing_strategy", false)

	assert.Greater(t, testutil.CollectAndCount(collector.debatesTotal), 0)
	assert.Greater(t, testutil.CollectAndCount(collector.debateOutcomes), 0)
}

func TestCollector_BudgetMetrics(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordBudgetSpend("inventory_manager", "daily", 42.5)
	collector.RecordBudgetRejection("strategic_planner")
	collector.SetEmergencyReserve(120)

	assert.Greater(t, testutil.CollectAndCount(collector.budgetSpendTotal), 0)
	assert.InDelta(t, 120.0, testutil.ToFloat64(collector.emergencyReserve), 1e-9)
}
