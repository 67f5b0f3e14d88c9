// Package fixtures provides prebuilt store snapshots for tests.
package fixtures

import "github.com/BaSui01/retailflow/types"

// HealthyStore returns a calm snapshot: stocked shelves, comfortable cash.
func HealthyStore() types.StoreStatus {
	return types.StoreStatus{
		Day:  5,
		Cash: 500,
		Inventory: map[string]int{
			"chips": 20,
			"soda":  15,
			"candy": 25,
		},
		Prices: map[string]types.ProductPrice{
			"chips": {Price: 2.00, Cost: 1.20},
			"soda":  {Price: 1.50, Cost: 0.80},
			"candy": {Price: 1.00, Cost: 0.40},
		},
		CompetitorPrices: map[string]float64{
			"chips": 2.10,
			"soda":  1.45,
		},
	}
}

// StockoutStore returns a snapshot with two products out of stock.
func StockoutStore() types.StoreStatus {
	s := HealthyStore()
	s.Day = 12
	s.Cash = 150
	s.Inventory = map[string]int{
		"chips": 0,
		"soda":  0,
		"candy": 3,
	}
	return s
}

// BrokeStore returns a near-insolvent snapshot with everything stocked out.
func BrokeStore() types.StoreStatus {
	s := HealthyStore()
	s.Day = 20
	s.Cash = 25
	s.Inventory = map[string]int{
		"chips": 0,
		"soda":  0,
		"candy": 0,
	}
	return s
}
