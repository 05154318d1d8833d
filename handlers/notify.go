package handlers

import (
	"context"
	"fmt"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/notifications"
)

func NewNotifyOutOfStockHandler(mailer notifications.Mailer, to string) *NotifyOutOfStockHandler {
	return &NotifyOutOfStockHandler{mailer: mailer, to: to}
}

var _ bus.EventHandler = (*NotifyOutOfStockHandler)(nil)

// NotifyOutOfStockHandler emails the stock team when a SKU runs dry
type NotifyOutOfStockHandler struct {
	mailer notifications.Mailer
	to     string
}

func (h *NotifyOutOfStockHandler) Handle(ctx context.Context, e bus.Event, u bus.UnitOfWork) error {
	evt := e.(domain.OutOfStock)
	return h.mailer.Send(ctx,
		h.to,
		fmt.Sprintf("Out of stock: %s", evt.SKU),
		fmt.Sprintf("We are out of stock for sku %s. Orders are waiting on a reallocation.", evt.SKU),
	)
}
