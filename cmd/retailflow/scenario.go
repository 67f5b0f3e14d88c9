package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/retailflow/types"
)

// Scenario is the simulation's starting point.
type Scenario struct {
	Days  int           `yaml:"days"`
	Store ScenarioStore `yaml:"store"`
}

// ScenarioStore is the initial store state.
type ScenarioStore struct {
	Cash             float64                   `yaml:"cash"`
	Inventory        map[string]int            `yaml:"inventory"`
	Prices           map[string]ScenarioPrice  `yaml:"prices"`
	CompetitorPrices map[string]float64        `yaml:"competitor_prices"`
	DailyDemand      map[string]int            `yaml:"daily_demand"`
}

// ScenarioPrice is one product's price and unit cost.
type ScenarioPrice struct {
	Price float64 `yaml:"price"`
	Cost  float64 `yaml:"cost"`
}

// DefaultScenario returns a small corner store: three products, a price war
// on two of them, a week of trading.
func DefaultScenario() *Scenario {
	return &Scenario{
		Days: 7,
		Store: ScenarioStore{
			Cash: 500,
			Inventory: map[string]int{
				"chips": 12,
				"soda":  10,
				"candy": 15,
			},
			Prices: map[string]ScenarioPrice{
				"chips": {Price: 2.00, Cost: 1.20},
				"soda":  {Price: 1.50, Cost: 0.80},
				"candy": {Price: 1.00, Cost: 0.40},
			},
			CompetitorPrices: map[string]float64{
				"chips": 2.10,
				"soda":  1.45,
			},
			DailyDemand: map[string]int{
				"chips": 5,
				"soda":  4,
				"candy": 6,
			},
		},
	}
}

// LoadScenario reads a scenario file, or returns the default when the path
// is empty.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return DefaultScenario(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	scenario := DefaultScenario()
	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if scenario.Days <= 0 {
		return nil, fmt.Errorf("scenario days must be positive")
	}
	return scenario, nil
}

// Status converts the scenario store into a day-stamped snapshot.
func (s ScenarioStore) Status(day int) types.StoreStatus {
	status := types.StoreStatus{
		Day:              day,
		Cash:             s.Cash,
		Inventory:        make(map[string]int, len(s.Inventory)),
		Prices:           make(map[string]types.ProductPrice, len(s.Prices)),
		CompetitorPrices: make(map[string]float64, len(s.CompetitorPrices)),
	}
	for product, qty := range s.Inventory {
		status.Inventory[product] = qty
	}
	for product, p := range s.Prices {
		status.Prices[product] = types.ProductPrice{Price: p.Price, Cost: p.Cost}
	}
	for product, price := range s.CompetitorPrices {
		status.CompetitorPrices[product] = price
	}
	return status
}
