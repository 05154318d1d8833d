// Package handlers is the allocation context's service layer: the
// commands and events it understands, and the handlers that execute
// them against the domain model.
package handlers

import (
	"github.com/sarulabs/di/v2"

	"github.com/allocd/allocd/broadcast"
	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
	"github.com/allocd/allocd/notifications"
)

// Allocation is the bus module for the allocation context. The
// mailer and publisher are injected so tests can record instead of
// sending.
type Allocation struct {
	Mailer    notifications.Mailer
	Publisher broadcast.Publisher
	MailTo    string
}

func (a Allocation) Commands() bus.CommandRules {
	return bus.CommandRules{
		CreateBatch{}:         "add-batch-handler",
		Allocate{}:            "allocate-handler",
		ChangeBatchQuantity{}: "change-batch-quantity-handler",
	}
}

func (a Allocation) Events() bus.EventRules {
	return bus.EventRules{
		domain.AllocationRequired{}: {"reallocate-handler"},
		domain.OutOfStock{}:         {"notify-out-of-stock-handler"},
		domain.Allocated{}:          {"publish-external-handler"},
		domain.Deallocated{}:        {"publish-external-handler"},
	}
}

func (a Allocation) Services() []bus.Def {
	return []bus.Def{
		{
			Name: "add-batch-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewAddBatchHandler(), nil
			},
		},
		{
			Name: "allocate-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewAllocateHandler(), nil
			},
		},
		{
			Name: "change-batch-quantity-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewChangeBatchQuantityHandler(), nil
			},
		},
		{
			Name: "reallocate-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewReallocateHandler(), nil
			},
		},
		{
			Name: "notify-out-of-stock-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewNotifyOutOfStockHandler(a.Mailer, a.MailTo), nil
			},
		},
		{
			Name: "publish-external-handler",
			Build: func(ctn di.Container) (interface{}, error) {
				return NewPublishExternalHandler(a.Publisher), nil
			},
		},
	}
}
