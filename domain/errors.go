package domain

import "fmt"

// OutOfStockError reports that no batch could satisfy an order line
type OutOfStockError struct {
	SKU string
}

func (e OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: %s", e.SKU)
}

// UnknownSKUError reports a SKU with no product aggregate
type UnknownSKUError struct {
	SKU string
}

func (e UnknownSKUError) Error() string {
	return fmt.Sprintf("unknown sku: %s", e.SKU)
}

// UnknownBatchError reports a batch reference no product owns
type UnknownBatchError struct {
	Ref string
}

func (e UnknownBatchError) Error() string {
	return fmt.Sprintf("unknown batch: %s", e.Ref)
}
