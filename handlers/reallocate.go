package handlers

import (
	"context"
	"errors"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
)

func NewReallocateHandler() *ReallocateHandler {
	return &ReallocateHandler{}
}

var _ bus.EventHandler = (*ReallocateHandler)(nil)

// ReallocateHandler finds a new batch for a line that lost its
// allocation. It runs in its own scope, after the deallocating
// command has already committed.
type ReallocateHandler struct {
}

func (h *ReallocateHandler) Handle(ctx context.Context, e bus.Event, u bus.UnitOfWork) error {
	evt := e.(domain.AllocationRequired)
	uow := u.(storage.UnitOfWork)

	product, err := uow.Products().Get(evt.SKU)
	if err != nil {
		return err
	}

	_, err = product.Allocate(domain.OrderLine{OrderID: evt.OrderID, SKU: evt.SKU, Qty: evt.Qty})
	var oos domain.OutOfStockError
	if errors.As(err, &oos) {
		// Retrying won't conjure stock. Commit the scope so the
		// OutOfStock event reaches the notification handlers.
		return nil
	}
	return err
}
