package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eta(daysOut int) *time.Time {
	t := time.Now().AddDate(0, 0, daysOut)
	return &t
}

func TestAllocatingReducesAvailableQuantity(t *testing.T) {
	batch := NewBatch("batch-001", "SMALL-TABLE", 20, nil)

	batch.Allocate(OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2})

	assert.Equal(t, 18, batch.AvailableQuantity())
	assert.Equal(t, 2, batch.AllocatedQuantity())
}

func TestAllocationIsIdempotent(t *testing.T) {
	batch := NewBatch("batch-001", "SMALL-TABLE", 20, nil)
	line := OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2}

	batch.Allocate(line)
	batch.Allocate(line)

	assert.Equal(t, 18, batch.AvailableQuantity())
}

func TestCanAllocate(t *testing.T) {
	batch := NewBatch("batch-001", "ELEGANT-LAMP", 2, nil)

	assert.True(t, batch.CanAllocate(OrderLine{OrderID: "o1", SKU: "ELEGANT-LAMP", Qty: 2}))
	assert.False(t, batch.CanAllocate(OrderLine{OrderID: "o1", SKU: "ELEGANT-LAMP", Qty: 3}))
	assert.False(t, batch.CanAllocate(OrderLine{OrderID: "o1", SKU: "EXPENSIVE-CHAIR", Qty: 1}))
}

func TestDeallocateUnallocatedLineIsANoOp(t *testing.T) {
	batch := NewBatch("batch-001", "SMALL-TABLE", 20, nil)

	batch.Deallocate(OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2})

	assert.Equal(t, 20, batch.AvailableQuantity())
}

func TestDeallocateOnePopsNewestFirst(t *testing.T) {
	batch := NewBatch("batch-001", "SMALL-TABLE", 20, nil)
	batch.Allocate(OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2})
	batch.Allocate(OrderLine{OrderID: "order-002", SKU: "SMALL-TABLE", Qty: 3})

	line, ok := batch.DeallocateOne()
	assert.True(t, ok)
	assert.Equal(t, "order-002", line.OrderID)

	line, ok = batch.DeallocateOne()
	assert.True(t, ok)
	assert.Equal(t, "order-001", line.OrderID)

	_, ok = batch.DeallocateOne()
	assert.False(t, ok)
}

func TestChangePurchasedQuantityCanOverAllocate(t *testing.T) {
	batch := NewBatch("batch-001", "SMALL-TABLE", 20, nil)
	batch.Allocate(OrderLine{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 10})

	batch.ChangePurchasedQuantity(5)

	assert.Equal(t, -5, batch.AvailableQuantity())
}

func TestRestoreBatchKeepsAllocations(t *testing.T) {
	batch := RestoreBatch("batch-001", "SMALL-TABLE", 20, eta(1), []OrderLine{
		{OrderID: "order-001", SKU: "SMALL-TABLE", Qty: 2},
	})

	assert.Equal(t, 18, batch.AvailableQuantity())
	assert.False(t, batch.InStock())
}
