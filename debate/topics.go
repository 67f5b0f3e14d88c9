package debate

import (
	"strings"

	"github.com/BaSui01/retailflow/authority"
	"github.com/BaSui01/retailflow/conflict"
	"github.com/BaSui01/retailflow/types"
)

// Topic identifies a structured debate subject with a fixed stakeholder set.
type Topic string

const (
	TopicPricingStrategy     Topic = "pricing_strategy"
	TopicInventoryAllocation Topic = "inventory_allocation"
	TopicCrisisResponse      Topic = "crisis_response"
	TopicStrategicPlanning   Topic = "strategic_planning"
	TopicCustomerService     Topic = "customer_service"
	TopicCompetitiveWarfare  Topic = "competitive_warfare"
)

type topicConfig struct {
	description      string
	stakeholders     []types.Role
	urgencyThreshold int
	domain           string
}

var topicConfigs = map[Topic]topicConfig{
	TopicPricingStrategy: {
		description:      "How aggressively should we respond to competitor pricing?",
		stakeholders:     []types.Role{types.RolePricing, types.RoleInventory, types.RoleStrategy},
		urgencyThreshold: 7,
		domain:           "pricing",
	},
	TopicInventoryAllocation: {
		description:      "Which products should get priority during supply constraints?",
		stakeholders:     []types.Role{types.RoleInventory, types.RoleCustomer, types.RoleStrategy},
		urgencyThreshold: 8,
		domain:           "inventory",
	},
	TopicCrisisResponse: {
		description:      "How should we respond to this business emergency?",
		stakeholders:     []types.Role{types.RoleCrisis, types.RoleStrategy, types.RoleInventory},
		urgencyThreshold: 9,
		domain:           "crisis",
	},
	TopicStrategicPlanning: {
		description:      "What direction should the store take over the coming days?",
		stakeholders:     []types.Role{types.RoleStrategy, types.RolePricing, types.RoleCustomer},
		urgencyThreshold: 6,
		domain:           "strategy",
	},
	TopicCustomerService: {
		description:      "How far should we go to protect customer satisfaction?",
		stakeholders:     []types.Role{types.RoleCustomer, types.RolePricing, types.RoleStrategy},
		urgencyThreshold: 6,
		domain:           "customer",
	},
	TopicCompetitiveWarfare: {
		description:      "Do we escalate against the competitor or hold the line?",
		stakeholders:     []types.Role{types.RolePricing, types.RoleStrategy, types.RoleCrisis},
		urgencyThreshold: 8,
		domain:           "pricing",
	},
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	_, ok := topicConfigs[t]
	return ok
}

// Description returns the topic's framing question.
func (t Topic) Description() string {
	return topicConfigs[t].description
}

// Domain returns the decision domain the topic belongs to, used for
// expertise bonuses during voting.
func (t Topic) Domain() string {
	return topicConfigs[t].domain
}

// Stakeholders returns the roles always seated for this topic.
func (t Topic) Stakeholders() []types.Role {
	cfg := topicConfigs[t]
	out := make([]types.Role, len(cfg.stakeholders))
	copy(out, cfg.stakeholders)
	return out
}

// ChooseTopic decides whether the round needs a debate and on what. Returns
// nil when coordination can proceed without one.
//
// Decisions that stay inside their author's own domain never trigger a
// debate, and a crisis decision at or above the crisis override threshold
// bypasses debate entirely so the emergency path stays fast. Otherwise a
// detected cross-domain or resource conflict picks a topic from the decision
// types involved, and two or more stockouts force an inventory allocation
// debate even without explicit conflict.
func ChooseTopic(decisions []types.Decision, status types.StoreStatus, report conflict.Report) *Topic {
	for _, d := range decisions {
		if d.Role == types.RoleCrisis && d.Priority >= authority.OverrideThreshold(types.RoleCrisis) {
			return nil
		}
	}

	allInDomain := true
	for _, d := range decisions {
		if !authority.InDomain(d) {
			allInDomain = false
			break
		}
	}
	if allInDomain && !report.HasConflict() {
		if status.StockoutCount() >= 2 {
			t := TopicInventoryAllocation
			return &t
		}
		return nil
	}

	if report.HasConflict() {
		t := topicFromDecisions(decisions)
		return &t
	}
	if status.StockoutCount() >= 2 {
		t := TopicInventoryAllocation
		return &t
	}
	return nil
}

// topicFromDecisions maps the round's decision types to the closest topic.
func topicFromDecisions(decisions []types.Decision) Topic {
	for _, d := range decisions {
		if strings.Contains(strings.ToLower(d.Type), "pricing") {
			return TopicPricingStrategy
		}
	}
	for _, d := range decisions {
		if strings.Contains(strings.ToLower(d.Type), "inventory") {
			return TopicInventoryAllocation
		}
	}
	for _, d := range decisions {
		lower := strings.ToLower(d.Type)
		if strings.Contains(lower, "crisis") || strings.Contains(lower, "emergency") {
			return TopicCrisisResponse
		}
	}
	for _, d := range decisions {
		if strings.Contains(strings.ToLower(d.Type), "customer") {
			return TopicCustomerService
		}
	}
	return TopicStrategicPlanning
}
