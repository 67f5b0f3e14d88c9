package types

// ProductPrice is the current sell price and unit cost of a product.
type ProductPrice struct {
	Price float64 `json:"price"`
	Cost  float64 `json:"cost"`
}

// PendingDelivery is an inbound supplier order that has not arrived yet.
type PendingDelivery struct {
	Product     string  `json:"product"`
	Quantity    int     `json:"quantity"`
	DeliveryDay int     `json:"delivery_day"`
	TotalCost   float64 `json:"total_cost"`
}

// StoreStatus is the read-only snapshot of the simulated store consumed at
// the start of each coordination round. The core never mutates it; the
// simulation that produces it is an external collaborator.
type StoreStatus struct {
	Day               int                     `json:"day"`
	Cash              float64                 `json:"cash"`
	Inventory         map[string]int          `json:"inventory"`
	Prices            map[string]ProductPrice `json:"prices"`
	CompetitorPrices  map[string]float64      `json:"competitor_prices,omitempty"`
	PendingDeliveries []PendingDelivery       `json:"pending_deliveries,omitempty"`
	Stockouts         []string                `json:"stockouts,omitempty"`
}

// StockoutProducts returns products with zero on-hand quantity. The explicit
// Stockouts list wins when the producer filled it in; otherwise it is derived
// from the inventory map.
func (s StoreStatus) StockoutProducts() []string {
	if len(s.Stockouts) > 0 {
		return s.Stockouts
	}
	var out []string
	for _, product := range sortedKeys(s.Inventory) {
		if s.Inventory[product] == 0 {
			out = append(out, product)
		}
	}
	return out
}

// LowStockProducts returns products at or below the given threshold but not
// stocked out.
func (s StoreStatus) LowStockProducts(threshold int) []string {
	var out []string
	for _, product := range sortedKeys(s.Inventory) {
		if qty := s.Inventory[product]; qty > 0 && qty <= threshold {
			out = append(out, product)
		}
	}
	return out
}

// StockoutCount returns the number of stocked-out products.
func (s StoreStatus) StockoutCount() int {
	return len(s.StockoutProducts())
}
