package specialists

import (
	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/coordination"
)

// All returns the five built-in specialists in the standard consultation
// order.
func All(logger *zap.Logger) []coordination.Specialist {
	return []coordination.Specialist{
		NewInventory(logger),
		NewPricing(logger),
		NewCustomer(logger),
		NewStrategy(logger),
		NewCrisis(logger),
	}
}
