// Package coordination runs the daily round: it consults the registered
// specialists, enforces budgets, detects conflicts, escalates to debate when
// the round calls for one, and translates the surviving decisions into a
// single executable business action.
package coordination

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/budget"
	"github.com/BaSui01/retailflow/conflict"
	"github.com/BaSui01/retailflow/debate"
	"github.com/BaSui01/retailflow/internal/metrics"
	"github.com/BaSui01/retailflow/translate"
	"github.com/BaSui01/retailflow/types"
)

// Specialist is one domain expert the coordinator consults each round.
// Analyze receives the store snapshot and the role's remaining daily
// allocation so plans can be sized to what the ledger will actually admit;
// a non-positive budget means the allocation is unknown.
type Specialist interface {
	Role() types.Role
	Analyze(ctx context.Context, status types.StoreStatus, budget float64) (types.Decision, error)
}

// Config configures the coordinator.
type Config struct {
	// DebateEnabled turns the debate escalation path on or off at runtime.
	DebateEnabled bool `json:"debate_enabled" yaml:"debate_enabled" env:"DEBATE_ENABLED"`
	// EmergencyDebatesOnly restricts debates to crisis-management rounds.
	EmergencyDebatesOnly bool `json:"emergency_debates_only" yaml:"emergency_debates_only" env:"EMERGENCY_DEBATES_ONLY"`
	// DebateThreshold is the minimum round urgency (highest decision
	// priority) that justifies a debate when a topic exists.
	DebateThreshold int `json:"debate_threshold" yaml:"debate_threshold" env:"DEBATE_THRESHOLD"`
	// ModeGating skips specialists outside the day's operation mode.
	ModeGating bool `json:"mode_gating" yaml:"mode_gating" env:"MODE_GATING"`
	// BudgetFirst gates decisions against the ledger before any debate.
	// When false, debates see the full ungated decision set and the ledger
	// is applied afterwards, synthesized compromises included.
	BudgetFirst bool `json:"budget_first" yaml:"budget_first" env:"BUDGET_FIRST"`
	// EmergencyApprovalPriority is the minimum priority for an over-budget
	// decision to draw on the emergency reserve. Crisis rounds lower it by
	// one so the emergency path clears more easily.
	EmergencyApprovalPriority int `json:"emergency_approval_priority" yaml:"emergency_approval_priority" env:"EMERGENCY_APPROVAL_PRIORITY"`
	// HistoryWindow caps the retained per-day performance records.
	HistoryWindow int `json:"history_window" yaml:"history_window" env:"HISTORY_WINDOW"`
}

// DefaultConfig returns the standard coordination parameters: debates on,
// escalating at urgency 7, reserve approvals at priority 8.
func DefaultConfig() Config {
	return Config{
		DebateEnabled:             true,
		DebateThreshold:           7,
		ModeGating:                true,
		BudgetFirst:               true,
		EmergencyApprovalPriority: 8,
		HistoryWindow:             14,
	}
}

// Dependencies are the collaborators the coordinator drives. Nil fields fall
// back to defaults; Metrics may stay nil to disable instrumentation.
type Dependencies struct {
	Ledger     *budget.Ledger
	Detector   *conflict.Detector
	Debate     *debate.Engine
	Translator *translate.Translator
	Metrics    *metrics.Collector
}

// RoundRecord is one completed round in the coordinator's history.
type RoundRecord struct {
	ID             string        `json:"id"`
	Day            int           `json:"day"`
	Mode           OperationMode `json:"mode"`
	Decisions      int           `json:"decisions"`
	Dropped        int           `json:"dropped"`
	DebateOccurred bool          `json:"debate_occurred"`
	Confidence     float64       `json:"confidence"`
	Duration       time.Duration `json:"duration"`
}

// RoundSummary aggregates the coordinator's history.
type RoundSummary struct {
	Rounds     int                   `json:"rounds"`
	Debates    int                   `json:"debates"`
	DebateRate float64               `json:"debate_rate"`
	ByMode     map[OperationMode]int `json:"by_mode"`
}

// Coordinator owns the round pipeline. Register specialists once at startup;
// RunRound is then called once per simulated day. A round never fails: every
// specialist error degrades to a note and the round still yields a consensus.
type Coordinator struct {
	config     Config
	ledger     *budget.Ledger
	detector   *conflict.Detector
	debate     *debate.Engine
	translator *translate.Translator
	metrics    *metrics.Collector
	planner    *ModePlanner
	logger     *zap.Logger

	mu          sync.Mutex
	specialists []Specialist
	registered  map[types.Role]bool
	performance []DayPerformance
	rounds      []RoundRecord
}

// NewCoordinator creates a coordinator. Nil dependencies fall back to
// defaults built from the default configs; a nil Metrics disables
// instrumentation rather than substituting one.
func NewCoordinator(config Config, deps Dependencies, logger *zap.Logger) *Coordinator {
	def := DefaultConfig()
	if config.DebateThreshold <= 0 {
		config.DebateThreshold = def.DebateThreshold
	}
	if config.EmergencyApprovalPriority <= 0 {
		config.EmergencyApprovalPriority = def.EmergencyApprovalPriority
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = def.HistoryWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Ledger == nil {
		deps.Ledger = budget.NewLedger(budget.DefaultConfig(), logger)
	}
	if deps.Detector == nil {
		deps.Detector = conflict.NewDetector(nil, logger)
	}
	if deps.Debate == nil {
		deps.Debate = debate.NewEngine(debate.DefaultConfig(), nil, logger)
	}
	if deps.Translator == nil {
		deps.Translator = translate.NewTranslator(translate.DefaultConfig(), nil, logger)
	}
	return &Coordinator{
		config:     config,
		ledger:     deps.Ledger,
		detector:   deps.Detector,
		debate:     deps.Debate,
		translator: deps.Translator,
		metrics:    deps.Metrics,
		planner:    NewModePlanner(logger),
		logger:     logger.With(zap.String("component", "coordinator")),
		registered: make(map[types.Role]bool),
	}
}

// Register adds a specialist. Each role registers at most once; registration
// order fixes the consultation order for the life of the coordinator.
func (c *Coordinator) Register(s Specialist) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	role := s.Role()
	if !role.Valid() {
		return types.NewError(types.ErrRoleUnknown, fmt.Sprintf("cannot register unknown role %q", role))
	}
	if c.registered[role] {
		return types.NewError(types.ErrRoleUnknown, fmt.Sprintf("role %q already registered", role)).WithRole(role)
	}
	c.specialists = append(c.specialists, s)
	c.registered[role] = true
	c.logger.Info("specialist registered", zap.String("role", string(role)))
	return nil
}

// SetDebateEnabled toggles the debate path at runtime.
func (c *Coordinator) SetDebateEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.DebateEnabled = enabled
}

// SetEmergencyDebatesOnly restricts debates to crisis rounds at runtime.
func (c *Coordinator) SetEmergencyDebatesOnly(only bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.EmergencyDebatesOnly = only
}

// SetDebateThreshold adjusts the urgency required to escalate. Values outside
// [0,10] are ignored.
func (c *Coordinator) SetDebateThreshold(threshold int) {
	if threshold < 0 || threshold > 10 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.DebateThreshold = threshold
}

// SetBudgetFirst switches the order of the budget gate and the debate stage.
func (c *Coordinator) SetBudgetFirst(first bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.BudgetFirst = first
}

// ReportPerformance feeds one day's business result back so mode planning can
// track trends. Call it after the simulation applies the round's action.
func (c *Coordinator) ReportPerformance(p DayPerformance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.performance = append(c.performance, p)
	if len(c.performance) > c.config.HistoryWindow {
		c.performance = c.performance[len(c.performance)-c.config.HistoryWindow:]
	}
}

// RunRound executes one full coordination round against the store snapshot.
// It always returns a consensus; specialist failures, invalid decisions and
// budget rejections degrade to notes instead of aborting.
func (c *Coordinator) RunRound(ctx context.Context, status types.StoreStatus) types.Consensus {
	start := time.Now()

	c.mu.Lock()
	cfg := c.config
	specialists := make([]Specialist, len(c.specialists))
	copy(specialists, c.specialists)
	recent := make([]DayPerformance, len(c.performance))
	copy(recent, c.performance)
	c.mu.Unlock()

	c.ledger.UpdateDaily(status.Day, status.Cash)
	mode, biz := c.planner.Plan(status, recent)

	var notes []string
	decisions, dropped := c.collect(ctx, cfg, mode, specialists, status, &notes)
	if cfg.BudgetFirst {
		decisions = c.gateBudget(cfg, mode, decisions, &dropped, &notes)
	}

	report := c.detector.Detect(decisions, status)
	var resolved []string
	if report.CrossDomain != nil {
		resolved = append(resolved, report.CrossDomain.Description)
	}
	for _, r := range report.Resources {
		resolved = append(resolved, fmt.Sprintf("%s contention: demand %.2f vs %.2f available",
			r.ResourceType, r.TotalDemand, r.AvailableSupply))
	}

	debated := c.maybeDebate(ctx, cfg, mode, status, report, &decisions, &notes)
	if !cfg.BudgetFirst {
		decisions = c.gateBudget(cfg, mode, decisions, &dropped, &notes)
	}

	decisions = OrderForExecution(decisions, status)
	action := c.translator.Translate(decisions, status)

	consensus := types.Consensus{
		FinalDecisions:    decisions,
		ConflictsResolved: resolved,
		CoordinationNotes: strings.Join(notes, "; "),
		OverallConfidence: overallConfidence(decisions),
		DebateOccurred:    debated,
		Action:            &action,
	}

	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordRound(string(mode), duration, consensus.OverallConfidence)
		c.metrics.SetEmergencyReserve(c.ledger.Reserve())
	}

	c.mu.Lock()
	c.rounds = append(c.rounds, RoundRecord{
		ID:             uuid.NewString(),
		Day:            status.Day,
		Mode:           mode,
		Decisions:      len(decisions),
		Dropped:        dropped,
		DebateOccurred: debated,
		Confidence:     consensus.OverallConfidence,
		Duration:       duration,
	})
	c.mu.Unlock()

	c.logger.Info("round complete",
		zap.Int("day", status.Day),
		zap.String("mode", string(mode)),
		zap.Int("decisions", len(decisions)),
		zap.Int("dropped", dropped),
		zap.Bool("debate", debated),
		zap.Float64("confidence", consensus.OverallConfidence),
		zap.Float64("cash", biz.Cash))
	return consensus
}

// collect consults every registered specialist in registration order, passing
// each one its remaining ledger allocation alongside the snapshot. Each
// failure or invalid decision is isolated: the round proceeds without it.
func (c *Coordinator) collect(ctx context.Context, cfg Config, mode OperationMode,
	specialists []Specialist, status types.StoreStatus, notes *[]string) ([]types.Decision, int) {

	active := make(map[types.Role]bool)
	for _, r := range ActiveRoles(mode) {
		active[r] = true
	}

	var decisions []types.Decision
	dropped := 0
	for _, s := range specialists {
		role := s.Role()
		if cfg.ModeGating && !active[role] {
			continue
		}

		d, err := s.Analyze(ctx, status, c.ledger.Remaining(role))
		if err != nil {
			dropped++
			*notes = append(*notes, fmt.Sprintf("%s unavailable this round", role))
			if c.metrics != nil {
				c.metrics.RecordDroppedDecision(string(role), "specialist_failed")
			}
			c.logger.Warn("specialist failed, continuing without it",
				zap.String("role", string(role)), zap.Error(err))
			continue
		}
		if err := d.Validate(); err != nil {
			dropped++
			*notes = append(*notes, fmt.Sprintf("%s produced an invalid decision", role))
			if c.metrics != nil {
				c.metrics.RecordDroppedDecision(string(role), "invalid")
			}
			c.logger.Warn("invalid decision dropped",
				zap.String("role", string(role)), zap.Error(err))
			continue
		}

		decisions = append(decisions, d)
		if c.metrics != nil {
			c.metrics.RecordDecision(string(role))
		}
	}
	return decisions, dropped
}

// gateBudget approves decisions against the ledger in priority order. An
// over-budget decision at or above the emergency approval priority may draw
// on the reserve; anything else over budget is rejected with a note.
func (c *Coordinator) gateBudget(cfg Config, mode OperationMode,
	decisions []types.Decision, dropped *int, notes *[]string) []types.Decision {

	ordered := make([]types.Decision, len(decisions))
	copy(ordered, decisions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].Role.TieBreakRank() < ordered[j].Role.TieBreakRank()
	})

	emergencyPriority := cfg.EmergencyApprovalPriority
	if mode == ModeCrisisManagement && emergencyPriority > 1 {
		emergencyPriority--
	}

	approved := ordered[:0]
	for i := range ordered {
		d := ordered[i]
		cost := d.Params.CostEstimate()
		if cost <= 0 {
			approved = append(approved, d)
			continue
		}

		if err := c.ledger.Spend(d.Role, cost, d.Type); err == nil {
			if c.metrics != nil {
				c.metrics.RecordBudgetSpend(string(d.Role), "daily", cost)
			}
			approved = append(approved, d)
			continue
		}

		if d.Priority >= emergencyPriority {
			if err := c.ledger.SpendFromReserve(d.Role, cost, d.Type); err == nil {
				d.Annotate("approved from emergency reserve")
				*notes = append(*notes, fmt.Sprintf("%s drew $%.2f from emergency reserve", d.Role, cost))
				if c.metrics != nil {
					c.metrics.RecordBudgetSpend(string(d.Role), "reserve", cost)
				}
				approved = append(approved, d)
				continue
			}
		}

		*dropped++
		*notes = append(*notes, fmt.Sprintf("%s rejected: $%.2f exceeds budget", d.Role, cost))
		if c.metrics != nil {
			c.metrics.RecordBudgetRejection(string(d.Role))
			c.metrics.RecordDroppedDecision(string(d.Role), "budget")
		}
		c.logger.Warn("decision rejected over budget",
			zap.String("role", string(d.Role)),
			zap.String("type", d.Type),
			zap.Float64("cost", cost))
	}
	return approved
}

// maybeDebate escalates the round to a debate when one is warranted and
// folds the outcome back into the decision list. A consensus boosts the
// winner's decisions; a compromise becomes a synthesized strategy decision.
func (c *Coordinator) maybeDebate(ctx context.Context, cfg Config, mode OperationMode,
	status types.StoreStatus, report conflict.Report,
	decisions *[]types.Decision, notes *[]string) bool {

	if !cfg.DebateEnabled {
		return false
	}
	if cfg.EmergencyDebatesOnly && mode != ModeCrisisManagement {
		return false
	}

	topic := debate.ChooseTopic(*decisions, status, report)
	if topic == nil {
		return false
	}

	urgency := 0
	for _, d := range *decisions {
		if d.Priority > urgency {
			urgency = d.Priority
		}
	}
	if urgency < cfg.DebateThreshold && status.StockoutCount() < 2 {
		return false
	}

	res := c.debate.Run(ctx, debate.Request{
		Topic:      *topic,
		Status:     status,
		Triggering: *decisions,
	})
	*notes = append(*notes, res.Summary)
	if c.metrics != nil {
		c.metrics.RecordDebate(string(res.Topic), res.ConsensusAchieved)
	}

	if res.ConsensusAchieved && res.Winner != nil {
		for i := range *decisions {
			if (*decisions)[i].Role == res.Winner.Role {
				(*decisions)[i].BoostPriority(2)
				(*decisions)[i].BoostConfidence(0.2)
				(*decisions)[i].Annotate(fmt.Sprintf("debate winner on %s", res.Topic))
			}
		}
		return true
	}

	if res.Compromise != nil {
		synthesized := types.Decision{
			Role:       types.RoleStrategy,
			Type:       string(res.Topic) + "_compromise",
			Confidence: res.Compromise.Confidence,
			Reasoning:  res.Compromise.Statement,
			Priority:   urgency,
		}
		if synthesized.Priority < 5 {
			synthesized.Priority = 5
		}
		*decisions = append(*decisions, synthesized)
	}
	return true
}

// overallConfidence is the mean confidence of the surviving decisions.
func overallConfidence(decisions []types.Decision) float64 {
	if len(decisions) == 0 {
		return 0
	}
	var sum float64
	for _, d := range decisions {
		sum += d.Confidence
	}
	return sum / float64(len(decisions))
}

// History returns a copy of the round records, oldest first.
func (c *Coordinator) History() []RoundRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RoundRecord, len(c.rounds))
	copy(out, c.rounds)
	return out
}

// Summary aggregates the round history.
func (c *Coordinator) Summary() RoundSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := RoundSummary{ByMode: make(map[OperationMode]int)}
	for _, r := range c.rounds {
		s.Rounds++
		s.ByMode[r.Mode]++
		if r.DebateOccurred {
			s.Debates++
		}
	}
	if s.Rounds > 0 {
		s.DebateRate = float64(s.Debates) / float64(s.Rounds)
	}
	return s
}
