// Package budget provides per-role daily budget allocation and spend control.
package budget

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// Config configures the budget ledger.
type Config struct {
	// AllocatableShare is the fraction of store cash split between roles
	// each day; the rest feeds the emergency reserve.
	AllocatableShare float64 `json:"allocatable_share"`
	// ReserveShare is the fraction of store cash held back as the
	// emergency reserve.
	ReserveShare float64 `json:"reserve_share"`
	// MaxDailyBudget caps the allocatable pool regardless of cash on hand.
	// Zero means uncapped.
	MaxDailyBudget float64 `json:"max_daily_budget"`
	// Shares maps each role to its fraction of the allocatable pool.
	Shares map[types.Role]float64 `json:"shares"`
	// AlertThreshold fires an alert when a role's utilization crosses it.
	AlertThreshold float64 `json:"alert_threshold"` // 0.0-1.0
}

// DefaultConfig returns the standard allocation: 80% of cash split
// 40/20/15/15/10 across the five roles, 20% emergency reserve.
func DefaultConfig() Config {
	return Config{
		AllocatableShare: 0.8,
		ReserveShare:     0.2,
		Shares: map[types.Role]float64{
			types.RoleInventory: 0.40,
			types.RolePricing:   0.20,
			types.RoleCustomer:  0.15,
			types.RoleStrategy:  0.15,
			types.RoleCrisis:    0.10,
		},
		AlertThreshold: 0.8,
	}
}

// budgetCategories labels each role's spend lane for reporting.
var budgetCategories = map[types.Role]string{
	types.RoleInventory: "inventory",
	types.RolePricing:   "pricing",
	types.RoleCustomer:  "marketing",
	types.RoleStrategy:  "operations",
	types.RoleCrisis:    "emergency",
}

// AgentBudget is one role's allocation for the current day.
type AgentBudget struct {
	Role            types.Role `json:"role"`
	Category        string     `json:"category"`
	DailyAllocation float64    `json:"daily_allocation"`
	Remaining       float64    `json:"remaining"`
}

// Utilization returns the spent fraction of the daily allocation.
func (b AgentBudget) Utilization() float64 {
	if b.DailyAllocation <= 0 {
		return 0
	}
	return (b.DailyAllocation - b.Remaining) / b.DailyAllocation
}

// SpendRecord is one debit against the ledger.
type SpendRecord struct {
	Day         int        `json:"day"`
	Role        types.Role `json:"role"`
	Amount      float64    `json:"amount"`
	Memo        string     `json:"memo"`
	FromReserve bool       `json:"from_reserve"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Alert is raised when a role's spending crosses the alert threshold.
type Alert struct {
	Role        types.Role `json:"role"`
	Utilization float64    `json:"utilization"`
	Threshold   float64    `json:"threshold"`
	Day         int        `json:"day"`
}

// AlertHandler handles budget alerts.
type AlertHandler func(alert Alert)

// Summary is a point-in-time view of all budgets.
type Summary struct {
	Day              int                        `json:"day"`
	TotalAllocated   float64                    `json:"total_allocated"`
	TotalRemaining   float64                    `json:"total_remaining"`
	EmergencyReserve float64                    `json:"emergency_reserve"`
	Budgets          map[types.Role]AgentBudget `json:"budgets"`
}

// Ledger owns per-role daily allocations and the emergency reserve. All
// mutation goes through the ledger under one mutex; the coordinator is the
// single writer during a round.
type Ledger struct {
	config        Config
	logger        *zap.Logger
	alertHandlers []AlertHandler

	mu       sync.Mutex
	day      int
	budgets  map[types.Role]*AgentBudget
	reserve  float64
	spendLog []SpendRecord
	alerted  map[types.Role]bool
}

// NewLedger creates a ledger with the given config. A nil logger falls back
// to a no-op logger.
func NewLedger(config Config, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(config.Shares) == 0 {
		config.Shares = DefaultConfig().Shares
	}
	return &Ledger{
		config:  config,
		logger:  logger.With(zap.String("component", "budget_ledger")),
		budgets: make(map[types.Role]*AgentBudget),
		alerted: make(map[types.Role]bool),
	}
}

// OnAlert registers an alert handler.
func (l *Ledger) OnAlert(handler AlertHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alertHandlers = append(l.alertHandlers, handler)
}

// Initialize allocates budgets from the given cash position for day zero.
func (l *Ledger) Initialize(totalCash float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allocateLocked(0, totalCash)
}

// UpdateDaily re-allocates budgets for a new day. Calling it again for the
// same or an earlier day is a no-op; allocations never carry forward.
func (l *Ledger) UpdateDaily(day int, totalCash float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if day <= l.day && len(l.budgets) > 0 {
		return
	}
	l.allocateLocked(day, totalCash)
}

func (l *Ledger) allocateLocked(day int, totalCash float64) {
	if totalCash < 0 {
		totalCash = 0
	}
	pool := totalCash * l.config.AllocatableShare
	if l.config.MaxDailyBudget > 0 && pool > l.config.MaxDailyBudget {
		pool = l.config.MaxDailyBudget
	}

	for role, share := range l.config.Shares {
		amount := pool * share
		l.budgets[role] = &AgentBudget{
			Role:            role,
			Category:        budgetCategories[role],
			DailyAllocation: amount,
			Remaining:       amount,
		}
	}
	l.reserve = totalCash * l.config.ReserveShare
	l.day = day
	l.alerted = make(map[types.Role]bool)

	l.logger.Info("daily budgets allocated",
		zap.Int("day", day),
		zap.Float64("pool", pool),
		zap.Float64("reserve", l.reserve))
}

// CanSpend reports whether the role's remaining budget covers the amount.
func (l *Ledger) CanSpend(role types.Role, amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.budgets[role]
	return ok && b.Remaining >= amount
}

// Spend debits the role's daily budget. It never overdraws: a debit beyond
// the remaining budget fails whole, leaving the ledger untouched.
func (l *Ledger) Spend(role types.Role, amount float64, memo string) error {
	if amount < 0 {
		return types.NewError(types.ErrInvalidDecision, fmt.Sprintf("negative spend %.2f", amount))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.budgets[role]
	if !ok {
		return types.NewError(types.ErrRoleUnknown, fmt.Sprintf("no budget for role %q", role)).WithRole(role)
	}
	if b.Remaining < amount {
		return types.NewError(types.ErrBudgetExceeded,
			fmt.Sprintf("spend %.2f exceeds remaining %.2f", amount, b.Remaining)).WithRole(role)
	}

	b.Remaining -= amount
	l.spendLog = append(l.spendLog, SpendRecord{
		Day: l.day, Role: role, Amount: amount, Memo: memo, Timestamp: time.Now(),
	})
	l.checkAlertLocked(role, *b)

	l.logger.Debug("budget spend",
		zap.String("role", string(role)),
		zap.Float64("amount", amount),
		zap.Float64("remaining", b.Remaining),
		zap.String("memo", memo))
	return nil
}

// SpendFromReserve debits the emergency reserve on behalf of a role. Used
// only for approved emergency escalations; it too never overdraws.
func (l *Ledger) SpendFromReserve(role types.Role, amount float64, memo string) error {
	if amount < 0 {
		return types.NewError(types.ErrInvalidDecision, fmt.Sprintf("negative spend %.2f", amount))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reserve < amount {
		return types.NewError(types.ErrBudgetExceeded,
			fmt.Sprintf("reserve spend %.2f exceeds reserve %.2f", amount, l.reserve)).WithRole(role)
	}

	l.reserve -= amount
	l.spendLog = append(l.spendLog, SpendRecord{
		Day: l.day, Role: role, Amount: amount, Memo: memo, FromReserve: true, Timestamp: time.Now(),
	})

	l.logger.Warn("emergency reserve spend",
		zap.String("role", string(role)),
		zap.Float64("amount", amount),
		zap.Float64("reserve_remaining", l.reserve),
		zap.String("memo", memo))
	return nil
}

// Remaining returns the role's remaining daily budget.
func (l *Ledger) Remaining(role types.Role) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.budgets[role]; ok {
		return b.Remaining
	}
	return 0
}

// Reserve returns the current emergency reserve.
func (l *Ledger) Reserve() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserve
}

// SpendLog returns a copy of all recorded debits.
func (l *Ledger) SpendLog() []SpendRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SpendRecord, len(l.spendLog))
	copy(out, l.spendLog)
	return out
}

// GetSummary returns a snapshot of all budgets and the reserve.
func (l *Ledger) GetSummary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{
		Day:              l.day,
		EmergencyReserve: l.reserve,
		Budgets:          make(map[types.Role]AgentBudget, len(l.budgets)),
	}
	for role, b := range l.budgets {
		s.Budgets[role] = *b
		s.TotalAllocated += b.DailyAllocation
		s.TotalRemaining += b.Remaining
	}
	return s
}

func (l *Ledger) checkAlertLocked(role types.Role, b AgentBudget) {
	util := b.Utilization()
	if util < l.config.AlertThreshold || l.alerted[role] {
		return
	}
	l.alerted[role] = true

	alert := Alert{Role: role, Utilization: util, Threshold: l.config.AlertThreshold, Day: l.day}
	l.logger.Warn("budget alert",
		zap.String("role", string(role)),
		zap.Float64("utilization", util),
		zap.Float64("threshold", l.config.AlertThreshold))
	for _, handler := range l.alertHandlers {
		go handler(alert)
	}
}
