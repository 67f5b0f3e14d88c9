package debate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/retailflow/oracle"
	"github.com/BaSui01/retailflow/testutil/fixtures"
	"github.com/BaSui01/retailflow/testutil/mocks"
	"github.com/BaSui01/retailflow/types"
)

func TestSelectParticipants(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)

	t.Run("stakeholders plus triggering authors", func(t *testing.T) {
		t.Parallel()
		participants := e.SelectParticipants(TopicPricingStrategy, []types.Decision{
			{Role: types.RoleCustomer, Type: "customer_retention_focus"},
		})
		assert.Equal(t, []types.Role{
			types.RolePricing, types.RoleInventory, types.RoleStrategy, types.RoleCustomer,
		}, participants)
	})

	t.Run("capped at five", func(t *testing.T) {
		t.Parallel()
		participants := e.SelectParticipants(TopicPricingStrategy, []types.Decision{
			{Role: types.RoleCustomer}, {Role: types.RoleCrisis},
		})
		assert.Len(t, participants, 5)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		t.Parallel()
		participants := e.SelectParticipants(TopicPricingStrategy, []types.Decision{
			{Role: types.RolePricing}, {Role: types.RolePricing},
		})
		assert.Equal(t, []types.Role{
			types.RolePricing, types.RoleInventory, types.RoleStrategy,
		}, participants)
	})
}

func TestRun_EveryParticipantVotesExactlyOnce(t *testing.T) {
	t.Parallel()

	orc := mocks.NewMockOracle().
		WithStance(types.RolePricing, oracle.StanceNeutral, "adjust prices to $3.00", 0.3).
		WithStance(types.RoleInventory, oracle.StanceNeutral, "hold orders at $2.00", 0.3).
		WithStance(types.RoleStrategy, oracle.StanceStronglyAgree, "reposition at $2.75", 0.95)
	e := NewEngine(Config{}, orc, nil)

	res := e.Run(context.Background(), Request{
		Topic:  TopicPricingStrategy,
		Status: fixtures.HealthyStore(),
	})

	require.Len(t, res.Participants, 3)
	require.Len(t, res.Ballots, 3, "one ballot per participant, no more, no fewer")

	voters := make(map[types.Role]int)
	for _, b := range res.Ballots {
		voters[b.Voter]++
	}
	for _, p := range res.Participants {
		assert.Equal(t, 1, voters[p])
	}
}

func TestRun_MajorityWins(t *testing.T) {
	t.Parallel()

	// strategy's confident extreme position outscores the timid others for
	// every voter, including itself
	orc := mocks.NewMockOracle().
		WithStance(types.RolePricing, oracle.StanceNeutral, "nudge prices up", 0.3).
		WithStance(types.RoleInventory, oracle.StanceNeutral, "keep stock flat", 0.3).
		WithStance(types.RoleStrategy, oracle.StanceStronglyAgree, "reposition the store upmarket", 0.95)
	e := NewEngine(Config{}, orc, nil)

	res := e.Run(context.Background(), Request{
		Topic:  TopicPricingStrategy,
		Status: fixtures.HealthyStore(),
	})

	assert.True(t, res.ConsensusAchieved)
	require.NotNil(t, res.Winner)
	assert.Equal(t, types.RoleStrategy, res.Winner.Role)
	assert.Nil(t, res.Compromise)
	assert.Equal(t, StateResolved, res.State)
}

func TestResolve_SplitVoteYieldsCompromiseMean(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	res := Resolution{
		Topic: TopicPricingStrategy,
		Positions: []oracle.Position{
			{Role: types.RolePricing, Statement: "raise chips to $3.00", Confidence: 0.8},
			{Role: types.RoleInventory, Statement: "hold chips at $2.00", Confidence: 0.8},
			{Role: types.RoleStrategy, Statement: "focus on positioning, not price", Confidence: 0.8},
		},
		Ballots: []Ballot{
			{Voter: types.RolePricing, Candidate: types.RolePricing},
			{Voter: types.RoleInventory, Candidate: types.RoleInventory},
			{Voter: types.RoleStrategy, Candidate: types.RoleStrategy},
		},
	}

	e.resolve(context.Background(), Request{Topic: TopicPricingStrategy}, &res)

	assert.False(t, res.ConsensusAchieved)
	assert.Nil(t, res.Winner)
	require.NotNil(t, res.Compromise)
	assert.True(t, res.Compromise.HasValue)
	assert.InDelta(t, 2.50, res.Compromise.Value, 1e-9)
	assert.InDelta(t, 0.6, res.Compromise.Confidence, 1e-9)
}

func TestResolve_QualitativeCompromiseWithoutNumbers(t *testing.T) {
	t.Parallel()

	orc := mocks.NewMockOracle().WithCompromise("rotate promotions weekly")
	e := NewEngine(Config{}, orc, nil)
	res := Resolution{
		Topic: TopicCustomerService,
		Positions: []oracle.Position{
			{Role: types.RoleCustomer, Statement: "lead with service", Confidence: 0.8},
			{Role: types.RolePricing, Statement: "lead with margin", Confidence: 0.8},
		},
		Ballots: []Ballot{
			{Voter: types.RoleCustomer, Candidate: types.RoleCustomer},
			{Voter: types.RolePricing, Candidate: types.RolePricing},
		},
	}

	e.resolve(context.Background(), Request{Topic: TopicCustomerService}, &res)

	require.NotNil(t, res.Compromise)
	assert.False(t, res.Compromise.HasValue)
	assert.Equal(t, "rotate promotions weekly", res.Compromise.Statement)
	assert.Equal(t, 1, orc.CompromiseCalls())
}

func TestRun_OracleFailureDegradesToNeutral(t *testing.T) {
	t.Parallel()

	orc := mocks.NewMockOracle().
		WithPositionError(types.RolePricing, errors.New("model offline")).
		WithStance(types.RoleInventory, oracle.StanceAgree, "order more chips", 0.8).
		WithStance(types.RoleStrategy, oracle.StanceAgree, "back the reorder", 0.7)
	e := NewEngine(Config{}, orc, nil)

	res := e.Run(context.Background(), Request{
		Topic:  TopicPricingStrategy,
		Status: fixtures.HealthyStore(),
	})

	require.Len(t, res.Positions, 3)
	var pricingPos *oracle.Position
	for i := range res.Positions {
		if res.Positions[i].Role == types.RolePricing {
			pricingPos = &res.Positions[i]
		}
	}
	require.NotNil(t, pricingPos)
	assert.Equal(t, oracle.StanceNeutral, pricingPos.Stance)
	assert.InDelta(t, 0.5, pricingPos.Confidence, 1e-9)
	assert.Len(t, res.Ballots, 3, "a degraded participant still votes")
}

func TestRun_NilOracleStillResolves(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	res := e.Run(context.Background(), Request{
		Topic:  TopicInventoryAllocation,
		Status: fixtures.StockoutStore(),
	})

	assert.Equal(t, StateResolved, res.State)
	assert.Len(t, res.Ballots, len(res.Participants))
	assert.Empty(t, res.Rebuttals)
}

func TestRebuttalTargets(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	positions := []oracle.Position{
		{Role: types.RolePricing, Stance: oracle.StanceStronglyAgree},
		{Role: types.RoleInventory, Stance: oracle.StanceStronglyDisagree},
		{Role: types.RoleStrategy, Stance: oracle.StanceNeutral},
	}

	// pricing vs inventory: full stance distance plus mutual dislike
	targets := e.rebuttalTargets(positions[0], positions)
	require.Len(t, targets, 1)
	assert.Equal(t, types.RoleInventory, targets[0].Role)

	// neutral strategy is below the rebuttal threshold for everyone
	targets = e.rebuttalTargets(positions[2], positions)
	for _, target := range targets {
		assert.NotEqual(t, types.RoleStrategy, target.Role)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	t.Parallel()

	e := NewEngine(Config{}, nil, nil)
	e.Run(context.Background(), Request{Topic: TopicPricingStrategy, Status: fixtures.HealthyStore()})
	e.Run(context.Background(), Request{Topic: TopicCrisisResponse, Status: fixtures.BrokeStore()})

	history := e.History()
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
	assert.Equal(t, TopicPricingStrategy, history[0].Topic)
	assert.Equal(t, TopicCrisisResponse, history[1].Topic)
}
