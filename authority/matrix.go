// Package authority defines the static domain authority matrix: which
// decision domains each specialist role owns, how much its vote weighs, and
// the priority at which it may override coordination within its own domain.
package authority

import (
	"strings"

	"github.com/BaSui01/retailflow/types"
)

// Authority describes one role's standing in the coordination hierarchy.
type Authority struct {
	Role              types.Role `json:"role"`
	PrimaryDomains    []string   `json:"primary_domains"`
	VoteWeight        float64    `json:"vote_weight"`
	OverrideThreshold int        `json:"override_threshold"`
}

// expertiseBonusFactor scales a role's vote weight into the small additive
// bonus it earns when voting on a topic inside its own domain.
const expertiseBonusFactor = 0.05

var matrix = map[types.Role]Authority{
	types.RoleInventory: {
		Role:              types.RoleInventory,
		PrimaryDomains:    []string{"inventory", "ordering", "stock"},
		VoteWeight:        2.0,
		OverrideThreshold: 8,
	},
	types.RolePricing: {
		Role:              types.RolePricing,
		PrimaryDomains:    []string{"pricing", "price", "profit"},
		VoteWeight:        2.0,
		OverrideThreshold: 8,
	},
	types.RoleCustomer: {
		Role:              types.RoleCustomer,
		PrimaryDomains:    []string{"customer", "service", "satisfaction"},
		VoteWeight:        1.5,
		OverrideThreshold: 7,
	},
	types.RoleStrategy: {
		Role:              types.RoleStrategy,
		PrimaryDomains:    []string{"strategy", "strategic", "planning", "coordination"},
		VoteWeight:        1.5,
		OverrideThreshold: 8,
	},
	types.RoleCrisis: {
		Role:              types.RoleCrisis,
		PrimaryDomains:    []string{"crisis", "emergency", "risk"},
		VoteWeight:        3.0,
		OverrideThreshold: 9,
	},
}

// Lookup returns the authority entry for a role.
func Lookup(role types.Role) (Authority, bool) {
	a, ok := matrix[role]
	return a, ok
}

// VoteWeight returns the role's vote weight, 1.0 for unknown roles.
func VoteWeight(role types.Role) float64 {
	if a, ok := matrix[role]; ok {
		return a.VoteWeight
	}
	return 1.0
}

// OverrideThreshold returns the priority at which a role's decision escapes
// normal coordination. Unknown roles never override.
func OverrideThreshold(role types.Role) int {
	if a, ok := matrix[role]; ok {
		return a.OverrideThreshold
	}
	return 11
}

// CoversDomain reports whether the given domain label falls inside the role's
// primary domains. Matching is keyword containment in either direction, so
// "inventory_reorder" matches the "inventory" domain and vice versa.
func CoversDomain(role types.Role, domain string) bool {
	a, ok := matrix[role]
	if !ok {
		return false
	}
	domain = strings.ToLower(domain)
	for _, d := range a.PrimaryDomains {
		if strings.Contains(domain, d) || strings.Contains(d, domain) {
			return true
		}
	}
	return false
}

// InDomain reports whether a decision stays inside its author's own
// territory: its type matches a primary domain and its priority sits below
// the role's override threshold. In-domain decisions never escalate.
func InDomain(d types.Decision) bool {
	return CoversDomain(d.Role, d.Type) && d.Priority < OverrideThreshold(d.Role)
}

// ExpertiseBonus returns the additive vote-score bonus a voter earns when the
// debate topic's domain is one it owns. Zero outside the voter's domains.
func ExpertiseBonus(voter types.Role, topicDomain string) float64 {
	if !CoversDomain(voter, topicDomain) {
		return 0
	}
	return expertiseBonusFactor * VoteWeight(voter)
}
