package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
)

// CreateBatch records a newly purchased batch of stock
type CreateBatch struct {
	bus.CommandType

	Ref string     `json:"ref"`
	SKU string     `json:"sku"`
	Qty int        `json:"qty"`
	ETA *time.Time `json:"eta"`
}

func (CreateBatch) Command() string {
	return "allocation.create-batch"
}

func (c CreateBatch) Valid() error {
	switch true {
	case c.Ref == "":
		return errors.New("batch ref must be provided")
	case c.SKU == "":
		return errors.New("sku must be provided")
	case c.Qty <= 0:
		return errors.New("qty must be positive")
	}
	return nil
}

func NewAddBatchHandler() *AddBatchHandler {
	return &AddBatchHandler{}
}

var _ bus.CommandHandler = (*AddBatchHandler)(nil)

type AddBatchHandler struct {
}

func (h *AddBatchHandler) Execute(ctx context.Context, c bus.Command, u bus.UnitOfWork) (bus.CommandResponse, error) {
	cmd := c.(CreateBatch)
	uow := u.(storage.UnitOfWork)

	product, err := uow.Products().Get(cmd.SKU)
	var unknown domain.UnknownSKUError
	switch {
	case errors.As(err, &unknown):
		product = domain.NewProduct(cmd.SKU)
		if err := uow.Products().Add(product); err != nil {
			return bus.CommandResponse{Error: err}, err
		}
	case err != nil:
		return bus.CommandResponse{Error: err}, err
	}

	product.AddBatch(domain.NewBatch(cmd.Ref, cmd.SKU, cmd.Qty, cmd.ETA))
	return bus.CommandResponse{ID: cmd.Ref}, nil
}
