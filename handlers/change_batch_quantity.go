package handlers

import (
	"context"
	"errors"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/storage"
)

// ChangeBatchQuantity corrects a batch's purchased quantity, e.g.
// after a short shipment. Lines that no longer fit are reallocated
// asynchronously via AllocationRequired events.
type ChangeBatchQuantity struct {
	bus.CommandType

	Ref string `json:"ref"`
	Qty int    `json:"qty"`
}

func (ChangeBatchQuantity) Command() string {
	return "allocation.change-batch-quantity"
}

func (c ChangeBatchQuantity) Valid() error {
	switch true {
	case c.Ref == "":
		return errors.New("batch ref must be provided")
	case c.Qty < 0:
		return errors.New("qty cannot be negative")
	}
	return nil
}

func NewChangeBatchQuantityHandler() *ChangeBatchQuantityHandler {
	return &ChangeBatchQuantityHandler{}
}

var _ bus.CommandHandler = (*ChangeBatchQuantityHandler)(nil)

type ChangeBatchQuantityHandler struct {
}

func (h *ChangeBatchQuantityHandler) Execute(ctx context.Context, c bus.Command, u bus.UnitOfWork) (bus.CommandResponse, error) {
	cmd := c.(ChangeBatchQuantity)
	uow := u.(storage.UnitOfWork)

	product, err := uow.Products().GetByBatchRef(cmd.Ref)
	if err != nil {
		return bus.CommandResponse{Error: err}, err
	}

	if err := product.ChangeBatchQuantity(cmd.Ref, cmd.Qty); err != nil {
		return bus.CommandResponse{Error: err}, err
	}
	return bus.CommandResponse{ID: cmd.Ref}, nil
}
