package model

import (
	"math"
	"testing"
)

func TestQuantities(t *testing.T) {
	k := PartKey{PartNum: "3001", ColorID: 0}

	t.Run("duplicates summed", func(t *testing.T) {
		inv := UserInventory{{PartNum: "3001", Quantity: 2}, {PartNum: "3001", Quantity: 3}, {PartNum: "3001", Quantity: 0}}
		if got := inv.Quantities()[k]; got != 6 {
			t.Errorf("got %d, want 6", got)
		}
	})

	t.Run("sum saturates", func(t *testing.T) {
		inv := UserInventory{{PartNum: "3001", Quantity: math.MaxInt}, {PartNum: "3001", Quantity: math.MaxInt}}
		if got := inv.Quantities()[k]; got != MaxQuantity {
			t.Errorf("got %d, want %d", got, MaxQuantity)
		}
	})
}
