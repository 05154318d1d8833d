package bus

import (
	"fmt"
	"reflect"

	"github.com/allocd/allocd/bus/message"
)

// NoCommandHandler is returned when a command's handler cannot be
// found. It is a configuration error: it is raised before any unit of
// work is opened, and never retried.
type NoCommandHandler struct {
	Cmd Command
}

func (e NoCommandHandler) Error() string {
	return fmt.Sprintf("no command handler for command: %s", e.Cmd.Command())
}

// AlreadyRegistered is returned when a second handler is registered
// for a command type
type AlreadyRegistered struct {
	Cmd Command
}

func (e AlreadyRegistered) Error() string {
	return fmt.Sprintf("command already has a handler: %s", e.Cmd.Command())
}

// NotRoutable is returned when a dispatched message is neither a
// command nor an event. It fails the whole dispatch call.
type NotRoutable struct {
	Msg message.Message
}

func (e NotRoutable) Error() string {
	return fmt.Sprintf("message is neither a command nor an event: %s", reflect.TypeOf(e.Msg))
}

// CascadeOverflow is returned when one dispatch call processes more
// messages than its budget allows, indicating a handler cycle
type CascadeOverflow struct {
	Budget int
}

func (e CascadeOverflow) Error() string {
	return fmt.Sprintf("dispatch exceeded its message budget of %d, likely a handler cycle", e.Budget)
}
