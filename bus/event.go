package bus

import (
	"context"

	"github.com/allocd/allocd/bus/message"
)

// Event is a routable message indicating something has happened.
// Events are fanned out to every registered handler independently:
// one handler failing, even terminally, never stops the others.
type Event interface {
	message.Message

	// Event returns the event's name. Must be implemented by all events
	Event() string
}

// EventType is a struct designed to be embedded within an event,
// satisfying the message.Message interface for it
type EventType struct {
}

// MessageType satisfies the message.Message interface, used for routing
func (EventType) MessageType() message.Type {
	return message.Event
}

// EventHandler is a handler for one specific event.
// Each event may have multiple, or 0, EventHandlers.
//
// Handle receives a unit of work private to this attempt. The bus
// commits it when Handle returns nil and rolls it back otherwise.
// Failed attempts are retried per the bus's retry policy; exhaustion
// is logged and swallowed, never propagated.
type EventHandler interface {
	Handle(context.Context, Event, UnitOfWork) error
}

// NewEventBuffer returns an empty event buffer
func NewEventBuffer() EventBuffer {
	return EventBuffer{}
}

// EventBuffer is embedded in aggregates to stage messages raised
// during a transaction, before the unit of work releases them to
// the dispatcher on commit
type EventBuffer struct {
	events []message.Message
}

// Raise stages messages on the buffer
func (e *EventBuffer) Raise(msgs ...message.Message) {
	e.events = append(e.events, msgs...)
}

// Release empties the buffer, returning the staged messages in the
// order they were raised
func (e *EventBuffer) Release() []message.Message {
	output := e.events
	e.events = nil
	return output
}
