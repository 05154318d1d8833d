package domain

import (
	"time"
)

// OrderLine is a value object: a quantity of one SKU demanded by a
// customer order. Identity is its field values.
type OrderLine struct {
	OrderID string
	SKU     string
	Qty     int
}

// NewBatch returns an empty batch of purchased stock. A nil eta means
// the stock is already in the warehouse.
func NewBatch(ref, sku string, qty int, eta *time.Time) *Batch {
	return &Batch{
		Ref:          ref,
		SKU:          sku,
		ETA:          eta,
		purchasedQty: qty,
	}
}

// RestoreBatch rebuilds a batch from persisted state, including its
// existing allocations
func RestoreBatch(ref, sku string, qty int, eta *time.Time, allocations []OrderLine) *Batch {
	b := NewBatch(ref, sku, qty, eta)
	b.allocations = append(b.allocations, allocations...)
	return b
}

// Batch is a batch of stock on order or in the warehouse, identified
// by its reference. Order lines are allocated against it.
type Batch struct {
	Ref string
	SKU string
	ETA *time.Time

	purchasedQty int
	allocations  []OrderLine
}

// Allocate records a line against the batch. Fit checks are the
// product aggregate's job; Allocate is idempotent for a line already
// held.
func (b *Batch) Allocate(line OrderLine) {
	for _, l := range b.allocations {
		if l == line {
			return
		}
	}
	b.allocations = append(b.allocations, line)
}

// Deallocate removes a line, if the batch holds it
func (b *Batch) Deallocate(line OrderLine) {
	for i, l := range b.allocations {
		if l == line {
			b.allocations = append(b.allocations[:i], b.allocations[i+1:]...)
			return
		}
	}
}

// DeallocateOne removes and returns the most recently allocated line
func (b *Batch) DeallocateOne() (OrderLine, bool) {
	if len(b.allocations) == 0 {
		return OrderLine{}, false
	}
	line := b.allocations[len(b.allocations)-1]
	b.allocations = b.allocations[:len(b.allocations)-1]
	return line, true
}

// CanAllocate reports whether the line fits this batch
func (b *Batch) CanAllocate(line OrderLine) bool {
	return b.SKU == line.SKU && b.AvailableQuantity() >= line.Qty
}

// InStock reports whether the batch is warehouse stock rather than a shipment
func (b *Batch) InStock() bool {
	return b.ETA == nil
}

func (b *Batch) PurchasedQuantity() int {
	return b.purchasedQty
}

// ChangePurchasedQuantity resets the batch's purchased quantity,
// which may leave it over-allocated until the product rebalances
func (b *Batch) ChangePurchasedQuantity(qty int) {
	b.purchasedQty = qty
}

func (b *Batch) AllocatedQuantity() int {
	total := 0
	for _, l := range b.allocations {
		total += l.Qty
	}
	return total
}

func (b *Batch) AvailableQuantity() int {
	return b.purchasedQty - b.AllocatedQuantity()
}

// Allocations returns the allocated lines, oldest first
func (b *Batch) Allocations() []OrderLine {
	out := make([]OrderLine, len(b.allocations))
	copy(out, b.allocations)
	return out
}
