package types

import (
	"reflect"
	"testing"
)

func TestStoreStatus_StockoutProducts(t *testing.T) {
	t.Parallel()

	derived := StoreStatus{Inventory: map[string]int{"coffee": 0, "tea": 3, "milk": 0}}
	if got := derived.StockoutProducts(); !reflect.DeepEqual(got, []string{"coffee", "milk"}) {
		t.Fatalf("unexpected derived stockouts %v", got)
	}

	explicit := StoreStatus{
		Inventory: map[string]int{"coffee": 0},
		Stockouts: []string{"tea"},
	}
	if got := explicit.StockoutProducts(); !reflect.DeepEqual(got, []string{"tea"}) {
		t.Fatalf("explicit list must win, got %v", got)
	}
	if explicit.StockoutCount() != 1 {
		t.Fatalf("unexpected stockout count %d", explicit.StockoutCount())
	}
}

func TestStoreStatus_LowStockProducts(t *testing.T) {
	t.Parallel()

	s := StoreStatus{Inventory: map[string]int{"coffee": 0, "tea": 2, "milk": 9, "sugar": 5}}
	if got := s.LowStockProducts(5); !reflect.DeepEqual(got, []string{"sugar", "tea"}) {
		t.Fatalf("unexpected low stock %v", got)
	}
}
