package coordination

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/retailflow/budget"
	"github.com/BaSui01/retailflow/debate"
	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/testutil/fixtures"
	"github.com/BaSui01/retailflow/testutil/mocks"
	"github.com/BaSui01/retailflow/types"
)

func newTestCoordinator(t *testing.T, cfg Config, deps Dependencies) *Coordinator {
	t.Helper()
	return NewCoordinator(cfg, deps, nil)
}

func registerAll(t *testing.T, c *Coordinator) map[types.Role]*mocks.MockSpecialist {
	t.Helper()
	out := make(map[types.Role]*mocks.MockSpecialist)
	for _, role := range types.AllRoles() {
		m := mocks.NewMockSpecialist(role)
		require.NoError(t, c.Register(m))
		out[role] = m
	}
	return out
}

func TestCoordinator_RegisterDuplicateRole(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, Dependencies{})
	require.NoError(t, c.Register(mocks.NewMockSpecialist(types.RolePricing)))

	err := c.Register(mocks.NewMockSpecialist(types.RolePricing))
	require.Error(t, err)
	assert.Equal(t, types.ErrRoleUnknown, types.GetErrorCode(err))

	err = c.Register(mocks.NewMockSpecialist(types.Role("janitor")))
	require.Error(t, err)
}

func TestCoordinator_ModeGatingConsultsActiveRoles(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{ModeGating: true}, Dependencies{})
	specialists := registerAll(t, c)

	// healthy day 5: daily operations, only the two core operators run
	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.Equal(t, 1, specialists[types.RoleInventory].Calls())
	assert.Equal(t, 1, specialists[types.RolePricing].Calls())
	assert.Equal(t, 0, specialists[types.RoleStrategy].Calls())
	assert.Equal(t, 0, specialists[types.RoleCustomer].Calls())
	assert.Equal(t, 0, specialists[types.RoleCrisis].Calls())

	require.Len(t, consensus.FinalDecisions, 2)
	require.NotNil(t, consensus.Action)

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, ModeDailyOperations, history[0].Mode)
}

func TestCoordinator_GatingDisabledConsultsEveryone(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, Dependencies{})
	specialists := registerAll(t, c)

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	for role, m := range specialists {
		assert.Equal(t, 1, m.Calls(), "role %s consulted exactly once", role)
	}
	assert.Len(t, consensus.FinalDecisions, 5)
}

func TestCoordinator_CrisisModeActivatesCrisisManager(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{ModeGating: true}, Dependencies{})
	specialists := registerAll(t, c)

	// broke store: cash under 50 and three stockouts
	c.RunRound(context.Background(), fixtures.BrokeStore())

	assert.Equal(t, 1, specialists[types.RoleCrisis].Calls())
	assert.Equal(t, 1, specialists[types.RoleStrategy].Calls())
	assert.Equal(t, 0, specialists[types.RoleCustomer].Calls())

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, ModeCrisisManagement, history[0].Mode)
}

func TestCoordinator_ProfitCollapseTriggersCrisis(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{ModeGating: true}, Dependencies{})
	registerAll(t, c)

	c.ReportPerformance(DayPerformance{Day: 3, Profit: 100, Revenue: 300})
	c.ReportPerformance(DayPerformance{Day: 4, Profit: 20, Revenue: 280})

	c.RunRound(context.Background(), fixtures.HealthyStore())

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, ModeCrisisManagement, history[0].Mode, "an 80%% profit drop is a crisis")
}

func TestCoordinator_SpecialistFailureIsIsolated(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, Dependencies{})
	require.NoError(t, c.Register(mocks.NewMockSpecialist(types.RoleInventory)))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithError(errors.New("model timeout"))))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	require.Len(t, consensus.FinalDecisions, 1)
	assert.Equal(t, types.RoleInventory, consensus.FinalDecisions[0].Role)
	assert.Contains(t, consensus.CoordinationNotes, "pricing_analyst unavailable")
}

func TestCoordinator_InvalidDecisionDropped(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, Dependencies{})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "set_prices", Confidence: 2.0, Priority: 5,
		})))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.Empty(t, consensus.FinalDecisions)
	assert.Contains(t, consensus.CoordinationNotes, "invalid decision")
}

func TestCoordinator_RoundNeverFails(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{}, Dependencies{})
	for _, role := range types.AllRoles() {
		require.NoError(t, c.Register(
			mocks.NewMockSpecialist(role).WithError(errors.New("down"))))
	}

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.Empty(t, consensus.FinalDecisions)
	require.NotNil(t, consensus.Action)
	assert.Zero(t, consensus.OverallConfidence)

	history := c.History()
	require.Len(t, history, 1)
	assert.Equal(t, 5, history[0].Dropped)
}

func TestCoordinator_BudgetGateRejectsOverspend(t *testing.T) {
	t.Parallel()

	ledger := budget.NewLedger(budget.DefaultConfig(), nil)
	c := newTestCoordinator(t, Config{}, Dependencies{Ledger: ledger})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_reorder", Confidence: 0.8, Priority: 5,
			Params: types.DecisionParams{TotalCost: 200, Orders: map[string]int{"chips": 150}},
		})))

	// inventory allocation on a $500 day is $160; a $200 plan at priority 5
	// has no claim on the reserve
	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.Empty(t, consensus.FinalDecisions)
	assert.Contains(t, consensus.CoordinationNotes, "exceeds budget")
	assert.InDelta(t, 160.0, ledger.Remaining(types.RoleInventory), 1e-9, "failed spend leaves the ledger untouched")
	assert.InDelta(t, 100.0, ledger.Reserve(), 1e-9)
}

func TestCoordinator_EmergencyReserveApproval(t *testing.T) {
	t.Parallel()

	ledger := budget.NewLedger(budget.DefaultConfig(), nil)
	c := newTestCoordinator(t, Config{}, Dependencies{Ledger: ledger})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleCrisis).WithDecision(types.Decision{
			Type: "emergency_response", Confidence: 0.9, Priority: 9,
			Params:    types.DecisionParams{EmergencyCost: 60},
			Reasoning: "supplier failure needs an immediate workaround",
		})))

	// crisis budget on a $500 day is $40; priority 9 unlocks the reserve
	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	require.Len(t, consensus.FinalDecisions, 1)
	assert.Contains(t, consensus.FinalDecisions[0].Reasoning, "approved from emergency reserve")
	assert.Contains(t, consensus.CoordinationNotes, "emergency reserve")
	assert.InDelta(t, 40.0, ledger.Reserve(), 1e-9)
	assert.InDelta(t, 40.0, ledger.Remaining(types.RoleCrisis), 1e-9, "daily budget untouched")
}

func TestCoordinator_DebateBoostsWinner(t *testing.T) {
	t.Parallel()

	orc := mocks.NewMockOracle().
		WithStance(types.RolePricing, oracle.StanceStronglyAgree, "undercut them now", 0.95).
		WithStance(types.RoleInventory, oracle.StanceNeutral, "depends on stock", 0.3).
		WithStance(types.RoleStrategy, oracle.StanceNeutral, "either could work", 0.3)
	engine := debate.NewEngine(debate.DefaultConfig(), orc, nil)

	c := newTestCoordinator(t, Config{DebateEnabled: true}, Dependencies{Debate: engine})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "pricing_expansion", Confidence: 0.8, Priority: 8,
			Params:    types.DecisionParams{Strategy: "aggressive"},
			Reasoning: "maximize share while the competitor is weak",
		})))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_conservation", Confidence: 0.7, Priority: 7,
			Params:    types.DecisionParams{Strategy: "conservative"},
			Reasoning: "careful, cash conservation comes first",
		})))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.True(t, consensus.DebateOccurred)
	assert.NotEmpty(t, consensus.ConflictsResolved)

	var pricing *types.Decision
	for i := range consensus.FinalDecisions {
		if consensus.FinalDecisions[i].Role == types.RolePricing {
			pricing = &consensus.FinalDecisions[i]
		}
	}
	require.NotNil(t, pricing)
	assert.Equal(t, 10, pricing.Priority, "8 boosted by 2")
	assert.InDelta(t, 1.0, pricing.Confidence, 1e-9, "0.8 boosted by 0.2")
	assert.True(t, strings.Contains(pricing.Reasoning, "debate winner"))
}

func TestCoordinator_DebateDisabled(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{DebateEnabled: true}, Dependencies{})
	c.SetDebateEnabled(false)
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "pricing_expansion", Confidence: 0.8, Priority: 8,
			Reasoning: "aggressive expansion",
		})))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_conservation", Confidence: 0.7, Priority: 7,
			Reasoning: "conservative hold",
		})))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())
	assert.False(t, consensus.DebateOccurred)
}

func TestCoordinator_PassesRemainingAllocationToSpecialists(t *testing.T) {
	t.Parallel()

	ledger := budget.NewLedger(budget.DefaultConfig(), nil)
	c := newTestCoordinator(t, Config{}, Dependencies{Ledger: ledger})
	inv := mocks.NewMockSpecialist(types.RoleInventory)
	pricing := mocks.NewMockSpecialist(types.RolePricing)
	require.NoError(t, c.Register(inv))
	require.NoError(t, c.Register(pricing))

	// $500 cash: 80% allocatable, inventory holds 40% and pricing 20%
	c.RunRound(context.Background(), fixtures.HealthyStore())

	require.Len(t, inv.Budgets(), 1)
	assert.InDelta(t, 160.0, inv.Budgets()[0], 1e-9)
	require.Len(t, pricing.Budgets(), 1)
	assert.InDelta(t, 80.0, pricing.Budgets()[0], 1e-9)
}

func TestCoordinator_CompromiseTakesMinimumPriority(t *testing.T) {
	t.Parallel()

	// confidences are set so the four seats split two against two: the
	// inventory and pricing camps each draw exactly half the ballots, so the
	// debate resolves by compromise instead of consensus
	orc := mocks.NewMockOracle().
		WithStance(types.RoleInventory, oracle.StanceAgree, "restock the empty shelves first", 0.78).
		WithStance(types.RolePricing, oracle.StanceStronglyDisagree, "protect margin before restocking", 0.99).
		WithStance(types.RoleCustomer, oracle.StanceNeutral, "either works for shoppers", 0.3).
		WithStance(types.RoleStrategy, oracle.StanceNeutral, "no strong preference", 0.3)
	engine := debate.NewEngine(debate.DefaultConfig(), orc, nil)

	c := newTestCoordinator(t, Config{DebateEnabled: true, DebateThreshold: 7}, Dependencies{Debate: engine})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_reorder", Confidence: 0.7, Priority: 4,
			Reasoning: "restock the empty shelves",
		})))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "pricing_adjustment", Confidence: 0.6, Priority: 3,
			Reasoning: "match the competitor on soda",
		})))

	// two stockouts force an inventory allocation debate at urgency 4
	consensus := c.RunRound(context.Background(), fixtures.StockoutStore())
	require.True(t, consensus.DebateOccurred)

	var synthesized *types.Decision
	for i := range consensus.FinalDecisions {
		if strings.HasSuffix(consensus.FinalDecisions[i].Type, "_compromise") {
			synthesized = &consensus.FinalDecisions[i]
		}
	}
	require.NotNil(t, synthesized)
	assert.Equal(t, "inventory_allocation_compromise", synthesized.Type)
	assert.Equal(t, types.RoleStrategy, synthesized.Role)
	assert.Equal(t, 5, synthesized.Priority, "a compromise never lands below priority 5")
	assert.InDelta(t, 0.6, synthesized.Confidence, 1e-9)
}

func TestCoordinator_RaisedThresholdSkipsDebate(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{DebateEnabled: true}, Dependencies{})
	c.SetDebateThreshold(10)
	c.SetDebateThreshold(15) // out of range, ignored
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "pricing_expansion", Confidence: 0.8, Priority: 8,
			Reasoning: "aggressive expansion",
		})))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_conservation", Confidence: 0.7, Priority: 7,
			Reasoning: "conservative hold",
		})))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())
	assert.False(t, consensus.DebateOccurred, "urgency 8 stays under the raised bar")
}

func TestCoordinator_BudgetAfterDebateStillGates(t *testing.T) {
	t.Parallel()

	ledger := budget.NewLedger(budget.DefaultConfig(), nil)
	c := newTestCoordinator(t, Config{BudgetFirst: false}, Dependencies{Ledger: ledger})
	c.SetBudgetFirst(false)
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_reorder", Confidence: 0.8, Priority: 5,
			Params: types.DecisionParams{TotalCost: 200, Orders: map[string]int{"chips": 150}},
		})))

	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())

	assert.Empty(t, consensus.FinalDecisions)
	assert.Contains(t, consensus.CoordinationNotes, "exceeds budget")
}

func TestCoordinator_EmergencyDebatesOnly(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t,
		Config{DebateEnabled: true, EmergencyDebatesOnly: true}, Dependencies{})
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
			Type: "pricing_expansion", Confidence: 0.8, Priority: 8,
			Reasoning: "aggressive expansion",
		})))
	require.NoError(t, c.Register(
		mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
			Type: "inventory_conservation", Confidence: 0.7, Priority: 7,
			Reasoning: "conservative hold",
		})))

	// healthy store resolves as daily operations, so debates stay off
	consensus := c.RunRound(context.Background(), fixtures.HealthyStore())
	assert.False(t, consensus.DebateOccurred)
}

func TestCoordinator_DeterministicWithoutDebate(t *testing.T) {
	t.Parallel()

	run := func() types.Consensus {
		c := newTestCoordinator(t, Config{}, Dependencies{})
		require.NoError(t, c.Register(
			mocks.NewMockSpecialist(types.RoleInventory).WithDecision(types.Decision{
				Type: "inventory_reorder", Confidence: 0.8, Priority: 6,
				Params: types.DecisionParams{Orders: map[string]int{"soda": 10}},
			})))
		require.NoError(t, c.Register(
			mocks.NewMockSpecialist(types.RolePricing).WithDecision(types.Decision{
				Type: "set_prices", Confidence: 0.9, Priority: 5,
				Params: types.DecisionParams{PriceChanges: map[string]float64{"chips": 2.10}},
			})))
		return c.RunRound(context.Background(), fixtures.HealthyStore())
	}

	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestCoordinator_SummaryAggregatesHistory(t *testing.T) {
	t.Parallel()

	c := newTestCoordinator(t, Config{ModeGating: true}, Dependencies{})
	registerAll(t, c)

	c.RunRound(context.Background(), fixtures.HealthyStore())
	c.RunRound(context.Background(), fixtures.BrokeStore())

	s := c.Summary()
	assert.Equal(t, 2, s.Rounds)
	assert.Equal(t, 1, s.ByMode[ModeDailyOperations])
	assert.Equal(t, 1, s.ByMode[ModeCrisisManagement])
	assert.Zero(t, s.Debates)
	assert.Zero(t, s.DebateRate)
}

func TestOrderForExecution_StockBeforePrice(t *testing.T) {
	t.Parallel()

	status := fixtures.StockoutStore()
	decisions := []types.Decision{
		{Role: types.RolePricing, Type: "set_prices", Priority: 6, Confidence: 0.9},
		{Role: types.RoleInventory, Type: "inventory_reorder", Priority: 6, Confidence: 0.8,
			Params: types.DecisionParams{Orders: map[string]int{"chips": 10}}},
	}

	ordered := OrderForExecution(decisions, status)
	require.Len(t, ordered, 2)
	assert.Equal(t, types.RoleInventory, ordered[0].Role, "restock runs before repricing at equal priority")
}

func TestPredictImpact(t *testing.T) {
	t.Parallel()

	status := fixtures.StockoutStore() // chips and soda out
	d := types.Decision{
		Role: types.RoleInventory, Type: "inventory_reorder", Priority: 8, Confidence: 0.75,
		Params: types.DecisionParams{
			Orders:    map[string]int{"chips": 10, "candy": 5},
			TotalCost: 14,
		},
	}

	imp := PredictImpact(d, status)
	assert.InDelta(t, -14.0, imp.CashDelta, 1e-9)
	assert.Equal(t, 1, imp.StockoutRelief, "only chips is stocked out")
	assert.InDelta(t, 8*0.75+2, imp.Score, 1e-9)
}

func TestModePlanner_Plan(t *testing.T) {
	t.Parallel()

	p := NewModePlanner(nil)

	mode, _ := p.Plan(fixtures.HealthyStore(), nil)
	assert.Equal(t, ModeDailyOperations, mode)

	review := fixtures.HealthyStore()
	review.Day = 6
	mode, _ = p.Plan(review, nil)
	assert.Equal(t, ModeStrategicReview, mode)

	mode, m := p.Plan(fixtures.BrokeStore(), nil)
	assert.Equal(t, ModeCrisisManagement, mode)
	assert.True(t, m.CrisisTriggered())
}

func TestComputeMetrics_Trends(t *testing.T) {
	t.Parallel()

	p := NewModePlanner(nil)
	recent := []DayPerformance{
		{Day: 2, Profit: 50, Revenue: 200, Stockouts: 0},
		{Day: 3, Profit: 40, Revenue: 180, Stockouts: 1},
		{Day: 4, Profit: 30, Revenue: 150, Stockouts: 2},
	}

	m := p.ComputeMetrics(fixtures.HealthyStore(), recent)
	assert.True(t, m.HasHistory)
	assert.InDelta(t, 30.0, m.DailyProfit, 1e-9)
	assert.InDelta(t, -25.0, m.ProfitTrend, 1e-9)
	assert.InDelta(t, (150.0-180.0)/180.0*100, m.RevenueTrend, 1e-9)
	assert.Equal(t, 2, m.StockoutTrend)
	assert.True(t, m.CrisisTriggered(), "profit trend below -20%%")
}

func TestActiveRoles(t *testing.T) {
	t.Parallel()

	assert.Len(t, ActiveRoles(ModeDailyOperations), 2)
	assert.Contains(t, ActiveRoles(ModeStrategicReview), types.RoleStrategy)
	assert.Contains(t, ActiveRoles(ModeCrisisManagement), types.RoleCrisis)
	assert.NotContains(t, ActiveRoles(ModeCrisisManagement), types.RoleCustomer)
}
