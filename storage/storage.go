// Package storage defines the persistence boundary for the allocation
// context: a product repository and the unit of work handlers do
// their writes through.
package storage

import (
	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
)

// ProductRepository gives access to product aggregates within one
// unit of work's scope. Implementations track every aggregate they
// hand out, so the scope can collect the events those aggregates
// raise.
type ProductRepository interface {
	// Add stages a new product
	Add(*domain.Product) error

	// Get returns the product for a SKU, or UnknownSKUError
	Get(sku string) (*domain.Product, error)

	// GetByBatchRef returns the product owning a batch reference, or
	// UnknownBatchError
	GetByBatchRef(ref string) (*domain.Product, error)

	// Seen returns every aggregate touched in this scope, in first-touch order
	Seen() []*domain.Product
}

// UnitOfWork is the transactional scope handlers receive. Handlers
// narrow the bus.UnitOfWork they're given down to this with a type
// assertion.
type UnitOfWork interface {
	bus.UnitOfWork

	Products() ProductRepository
}
