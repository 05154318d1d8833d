package domain

import (
	"sort"

	"github.com/allocd/allocd/bus"
)

// NewProduct returns a product aggregate for a SKU
func NewProduct(sku string, batches ...*Batch) *Product {
	return &Product{
		SKU:         sku,
		Batches:     batches,
		EventBuffer: bus.NewEventBuffer(),
	}
}

// Product is the consistency boundary for all stock of one SKU. Every
// state change happens through it, atomically, within one unit of
// work; the events it raises are how other boundaries find out.
//
// Version supports optimistic concurrency in the storage layer: it is
// bumped on every change and checked on commit.
type Product struct {
	SKU     string
	Batches []*Batch
	Version int64

	bus.EventBuffer
}

// AddBatch adds a new batch of purchased stock to the product
func (p *Product) AddBatch(b *Batch) {
	p.Batches = append(p.Batches, b)
	p.Version++
}

// BatchByRef returns the batch with the given reference, or nil
func (p *Product) BatchByRef(ref string) *Batch {
	for _, b := range p.Batches {
		if b.Ref == ref {
			return b
		}
	}
	return nil
}

// Allocate places the line onto the preferred batch: warehouse stock
// first, then shipments by earliest ETA. On success it raises an
// Allocated event and returns the chosen batch reference. When no
// batch fits it raises OutOfStock, for whoever commits the scope to
// broadcast, and reports OutOfStockError.
func (p *Product) Allocate(line OrderLine) (string, error) {
	for _, b := range p.preferred() {
		if !b.CanAllocate(line) {
			continue
		}
		b.Allocate(line)
		p.Version++
		p.Raise(Allocated{
			OrderID:  line.OrderID,
			SKU:      line.SKU,
			Qty:      line.Qty,
			BatchRef: b.Ref,
		})
		return b.Ref, nil
	}

	p.Raise(OutOfStock{SKU: line.SKU})
	return "", OutOfStockError{SKU: line.SKU}
}

// ChangeBatchQuantity resets a batch's purchased quantity. Lines that
// no longer fit are deallocated newest-first, each raising a
// Deallocated fact and an AllocationRequired event for the dispatcher
// to reallocate in its own scope.
func (p *Product) ChangeBatchQuantity(ref string, qty int) error {
	batch := p.BatchByRef(ref)
	if batch == nil {
		return UnknownBatchError{Ref: ref}
	}

	batch.ChangePurchasedQuantity(qty)
	for batch.AvailableQuantity() < 0 {
		line, ok := batch.DeallocateOne()
		if !ok {
			break
		}
		p.Raise(
			Deallocated{OrderID: line.OrderID, SKU: line.SKU, Qty: line.Qty},
			AllocationRequired{OrderID: line.OrderID, SKU: line.SKU, Qty: line.Qty},
		)
	}
	p.Version++
	return nil
}

// preferred returns batches in allocation preference order, leaving
// p.Batches untouched
func (p *Product) preferred() []*Batch {
	sorted := make([]*Batch, len(p.Batches))
	copy(sorted, p.Batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.InStock():
			return !b.InStock()
		case b.InStock():
			return false
		default:
			return a.ETA.Before(*b.ETA)
		}
	})
	return sorted
}
