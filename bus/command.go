package bus

import (
	"context"

	"github.com/allocd/allocd/bus/message"
)

// Command is a value object instructing the system to change the state
// of exactly one consistency boundary.
type Command interface {
	message.Message

	// Command returns the command's (unique) name, and must be implemented by every command
	Command() string

	// Valid returns an error if the command is not valid. Must be implemented by every command
	Valid() error
}

// CommandType can be embedded in commands to provide sane defaults
// for the Command interface
type CommandType struct {
}

// MessageType implements the message.Message interface
func (CommandType) MessageType() message.Type {
	return message.Command
}

// CommandResponse originates from a command when it is executed.
// ID carries a caller-useful identifier, such as the reference of a
// newly created entity.
type CommandResponse struct {
	Error error
	ID    string
}

// CommandHandler is a handler for a specific command.
// Command <-> CommandHandler has a 1:1 relationship.
//
// Execute receives a unit of work that is private to this invocation.
// The bus commits the unit of work when Execute returns nil, and rolls
// it back otherwise. A returned error fails the whole dispatch and is
// surfaced to the caller unmodified.
type CommandHandler interface {
	Execute(context.Context, Command, UnitOfWork) (CommandResponse, error)
}
