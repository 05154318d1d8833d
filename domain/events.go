package domain

import (
	"github.com/allocd/allocd/bus"
)

// Allocated is raised when an order line is allocated to a batch
type Allocated struct {
	bus.EventType

	OrderID  string `json:"orderid"`
	SKU      string `json:"sku"`
	Qty      int    `json:"qty"`
	BatchRef string `json:"batchref"`
}

func (Allocated) Event() string {
	return "allocation.allocated"
}

// Deallocated is raised when an order line loses its allocation,
// usually because a batch shrank
type Deallocated struct {
	bus.EventType

	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

func (Deallocated) Event() string {
	return "allocation.deallocated"
}

// OutOfStock is raised when no batch can satisfy an order line
type OutOfStock struct {
	bus.EventType

	SKU string `json:"sku"`
}

func (OutOfStock) Event() string {
	return "allocation.out-of-stock"
}

// AllocationRequired is raised for each deallocated line that needs a
// new home. Its handler re-runs allocation in a fresh scope.
type AllocationRequired struct {
	bus.EventType

	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

func (AllocationRequired) Event() string {
	return "allocation.allocation-required"
}
