// Package conflict detects cross-domain posture conflicts and resource
// contention between specialist decisions before they reach the debate stage.
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// Posture is a decision's strategic stance as read from its wording.
type Posture string

const (
	PostureAggressive   Posture = "aggressive"
	PostureConservative Posture = "conservative"
	PostureNeutral      Posture = "neutral"
)

// Classifier assigns a strategic posture to a decision. The keyword
// implementation below is the default; callers may plug in their own.
type Classifier interface {
	Classify(d types.Decision) Posture
}

// KeywordClassifier reads posture from the decision type, declared strategy
// and reasoning text.
type KeywordClassifier struct{}

var aggressiveKeywords = []string{"aggressive", "maximize", "expand", "undercut", "warfare"}
var conservativeKeywords = []string{"conservative", "minimize", "careful", "cautious", "conservation", "retention", "safe"}

// Classify returns the posture signalled by the decision's wording. Mixed or
// absent signals read as neutral.
func (KeywordClassifier) Classify(d types.Decision) Posture {
	text := strings.ToLower(d.Type + " " + d.Params.Strategy + " " + d.Reasoning)
	aggressive := containsAny(text, aggressiveKeywords)
	conservative := containsAny(text, conservativeKeywords)
	switch {
	case aggressive && !conservative:
		return PostureAggressive
	case conservative && !aggressive:
		return PostureConservative
	}
	return PostureNeutral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CrossDomainConflict is a pair of decisions from different roles pulling the
// store in opposite strategic directions.
type CrossDomainConflict struct {
	Roles       [2]types.Role `json:"roles"`
	Postures    [2]Posture    `json:"postures"`
	Severity    float64       `json:"severity"` // 0.0-1.0
	Description string        `json:"description"`
}

// ResourceConflict is contention over a shared resource, typically cash.
type ResourceConflict struct {
	Roles           []types.Role `json:"roles"`
	ResourceType    string       `json:"resource_type"`
	TotalDemand     float64      `json:"total_demand"`
	AvailableSupply float64      `json:"available_supply"`
	Severity        float64      `json:"severity"` // 0.0-1.0
}

// Report is the outcome of one detection pass.
type Report struct {
	CrossDomain *CrossDomainConflict `json:"cross_domain,omitempty"`
	Resources   []ResourceConflict   `json:"resources,omitempty"`
}

// HasConflict reports whether anything was detected.
func (r Report) HasConflict() bool {
	return r.CrossDomain != nil || len(r.Resources) > 0
}

// Detector runs posture and resource conflict detection over a round's
// decisions.
type Detector struct {
	classifier Classifier
	logger     *zap.Logger
}

// NewDetector creates a detector. Nil classifier falls back to the keyword
// classifier, nil logger to a no-op logger.
func NewDetector(classifier Classifier, logger *zap.Logger) *Detector {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		classifier: classifier,
		logger:     logger.With(zap.String("component", "conflict_detector")),
	}
}

// Detect runs both detection passes against the store snapshot.
func (det *Detector) Detect(decisions []types.Decision, status types.StoreStatus) Report {
	report := Report{
		CrossDomain: det.DetectCrossDomain(decisions),
		Resources:   det.DetectResource(decisions, status),
	}
	if report.HasConflict() {
		det.logger.Info("conflicts detected",
			zap.Bool("cross_domain", report.CrossDomain != nil),
			zap.Int("resource_conflicts", len(report.Resources)))
	}
	return report
}

// DetectCrossDomain finds pairs of decisions from different roles with
// opposite strategic postures. Only the most severe pair is surfaced; lesser
// tensions resolve through normal voting.
func (det *Detector) DetectCrossDomain(decisions []types.Decision) *CrossDomainConflict {
	var worst *CrossDomainConflict
	for i := 0; i < len(decisions); i++ {
		for j := i + 1; j < len(decisions); j++ {
			a, b := decisions[i], decisions[j]
			if a.Role == b.Role {
				continue
			}
			pa, pb := det.classifier.Classify(a), det.classifier.Classify(b)
			if !opposed(pa, pb) {
				continue
			}
			c := &CrossDomainConflict{
				Roles:    [2]types.Role{a.Role, b.Role},
				Postures: [2]Posture{pa, pb},
				Severity: pairSeverity(a, b),
				Description: fmt.Sprintf("%s (%s) vs %s (%s)",
					a.Role, pa, b.Role, pb),
			}
			if worst == nil || c.Severity > worst.Severity {
				worst = c
			}
		}
	}
	return worst
}

func opposed(a, b Posture) bool {
	return (a == PostureAggressive && b == PostureConservative) ||
		(a == PostureConservative && b == PostureAggressive)
}

// pairSeverity scores a posture clash by the combined urgency of the two
// decisions.
func pairSeverity(a, b types.Decision) float64 {
	s := 0.3 + float64(a.Priority+b.Priority)/40
	if s > 1 {
		s = 1
	}
	return s
}

// DetectResource finds resource contention: total cash demand beyond cash on
// hand across multiple roles, and too many critical-priority demands at once.
func (det *Detector) DetectResource(decisions []types.Decision, status types.StoreStatus) []ResourceConflict {
	var conflicts []ResourceConflict
	if c := det.detectCashConflict(decisions, status); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := det.detectPriorityConflict(decisions); c != nil {
		conflicts = append(conflicts, *c)
	}
	return conflicts
}

func (det *Detector) detectCashConflict(decisions []types.Decision, status types.StoreStatus) *ResourceConflict {
	var total float64
	var roles []types.Role
	for _, d := range decisions {
		if cost := d.Params.CostEstimate(); cost > 0 {
			total += cost
			roles = append(roles, d.Role)
		}
	}
	if len(roles) < 2 || total <= status.Cash || status.Cash <= 0 {
		return nil
	}
	// Excess relative to supply plus a crowding penalty per extra claimant:
	// the more roles fight over the same shortfall, the harder it resolves.
	severity := (total-status.Cash)/status.Cash + 0.1*float64(len(roles)-1)
	if severity > 1 {
		severity = 1
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return &ResourceConflict{
		Roles:           roles,
		ResourceType:    "cash",
		TotalDemand:     total,
		AvailableSupply: status.Cash,
		Severity:        severity,
	}
}

// detectPriorityConflict flags rounds with more critical demands than the
// coordinator can execute at once.
func (det *Detector) detectPriorityConflict(decisions []types.Decision) *ResourceConflict {
	var critical []types.Role
	for _, d := range decisions {
		if d.Priority >= 8 {
			critical = append(critical, d.Role)
		}
	}
	if len(critical) <= 2 {
		return nil
	}
	sort.Slice(critical, func(i, j int) bool { return critical[i] < critical[j] })
	return &ResourceConflict{
		Roles:           critical,
		ResourceType:    "executive_attention",
		TotalDemand:     float64(len(critical)),
		AvailableSupply: 2,
		Severity:        0.8,
	}
}
