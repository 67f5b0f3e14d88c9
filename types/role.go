package types

// Role identifies one of the five fixed specialist decision domains.
type Role string

const (
	RoleInventory Role = "inventory_manager"
	RolePricing   Role = "pricing_analyst"
	RoleCustomer  Role = "customer_service"
	RoleStrategy  Role = "strategic_planner"
	RoleCrisis    Role = "crisis_manager"
)

// AllRoles returns every role in the fixed deterministic order used when
// padding debate participant sets.
func AllRoles() []Role {
	return []Role{RoleInventory, RolePricing, RoleCustomer, RoleStrategy, RoleCrisis}
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleInventory, RolePricing, RoleCustomer, RoleStrategy, RoleCrisis:
		return true
	}
	return false
}

// tieBreakRank orders roles for deterministic vote tie-breaking:
// crisis > strategy > pricing > inventory > customer. Lower rank wins.
var tieBreakRank = map[Role]int{
	RoleCrisis:    0,
	RoleStrategy:  1,
	RolePricing:   2,
	RoleInventory: 3,
	RoleCustomer:  4,
}

// TieBreakRank returns the role's position in the fixed arbitration order.
// Unknown roles sort last.
func (r Role) TieBreakRank() int {
	if rank, ok := tieBreakRank[r]; ok {
		return rank
	}
	return len(tieBreakRank)
}

// personas are cosmetic display labels. The debate algorithm never branches
// on them; identity is keyed on Role alone.
var personas = map[Role]string{
	RoleInventory: "hermione",
	RolePricing:   "gekko",
	RoleCustomer:  "elle",
	RoleStrategy:  "tyrion",
	RoleCrisis:    "jack",
}

// Persona returns the display label for a role, or the role string itself
// when no label is registered.
func (r Role) Persona() string {
	if p, ok := personas[r]; ok {
		return p
	}
	return string(r)
}
