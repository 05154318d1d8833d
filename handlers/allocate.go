package handlers

import (
	"context"
	"errors"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/storage"
)

// Allocate asks for an order line to be allocated against a batch
type Allocate struct {
	bus.CommandType

	OrderID string `json:"orderid"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

func (Allocate) Command() string {
	return "allocation.allocate"
}

func (c Allocate) Valid() error {
	switch true {
	case c.OrderID == "":
		return errors.New("orderid must be provided")
	case c.SKU == "":
		return errors.New("sku must be provided")
	case c.Qty <= 0:
		return errors.New("qty must be positive")
	}
	return nil
}

func NewAllocateHandler() *AllocateHandler {
	return &AllocateHandler{}
}

var _ bus.CommandHandler = (*AllocateHandler)(nil)

type AllocateHandler struct {
}

func (h *AllocateHandler) Execute(ctx context.Context, c bus.Command, u bus.UnitOfWork) (bus.CommandResponse, error) {
	cmd := c.(Allocate)
	uow := u.(storage.UnitOfWork)

	product, err := uow.Products().Get(cmd.SKU)
	if err != nil {
		return bus.CommandResponse{Error: err}, err
	}

	ref, err := product.Allocate(domain.OrderLine{OrderID: cmd.OrderID, SKU: cmd.SKU, Qty: cmd.Qty})
	if err != nil {
		return bus.CommandResponse{Error: err}, err
	}
	return bus.CommandResponse{ID: ref}, nil
}
