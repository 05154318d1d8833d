package handlers

import (
	"context"

	"github.com/allocd/allocd/broadcast"
	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/domain"
)

// Channels external consumers subscribe to
const (
	ChannelAllocated   = "line_allocated"
	ChannelDeallocated = "line_deallocated"
)

func NewPublishExternalHandler(publisher broadcast.Publisher) *PublishExternalHandler {
	return &PublishExternalHandler{publisher: publisher}
}

var _ bus.EventHandler = (*PublishExternalHandler)(nil)

// PublishExternalHandler pushes allocation facts out to redis for
// systems beyond this service's consistency boundaries
type PublishExternalHandler struct {
	publisher broadcast.Publisher
}

func (h *PublishExternalHandler) Handle(ctx context.Context, e bus.Event, u bus.UnitOfWork) error {
	switch e.(type) {
	case domain.Allocated:
		return h.publisher.Publish(ctx, ChannelAllocated, e)
	case domain.Deallocated:
		return h.publisher.Publish(ctx, ChannelDeallocated, e)
	}
	return nil
}
