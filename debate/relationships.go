package debate

import "github.com/BaSui01/retailflow/types"

// relationships captures the standing dynamics between the specialist
// personas on a -1.0 to 1.0 scale. Negative pairs rebut each other more
// readily; positive pairs lend vote support.
var relationships = map[types.Role]map[types.Role]float64{
	types.RoleInventory: {
		types.RolePricing:  -0.3,
		types.RoleCustomer: 0.4,
		types.RoleStrategy: 0.6,
		types.RoleCrisis:   0.1,
	},
	types.RolePricing: {
		types.RoleInventory: -0.3,
		types.RoleCustomer:  -0.2,
		types.RoleStrategy:  0.2,
		types.RoleCrisis:    0.5,
	},
	types.RoleCustomer: {
		types.RoleInventory: 0.4,
		types.RolePricing:   -0.2,
		types.RoleStrategy:  0.3,
		types.RoleCrisis:    -0.1,
	},
	types.RoleStrategy: {
		types.RoleInventory: 0.6,
		types.RolePricing:   0.2,
		types.RoleCustomer:  0.3,
		types.RoleCrisis:    0.1,
	},
	types.RoleCrisis: {
		types.RoleInventory: 0.1,
		types.RolePricing:   0.5,
		types.RoleCustomer:  -0.1,
		types.RoleStrategy:  0.1,
	},
}

// Relationship returns how a views b, 0.0 for unknown pairs.
func Relationship(a, b types.Role) float64 {
	return relationships[a][b]
}
