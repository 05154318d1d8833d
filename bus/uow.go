package bus

import (
	"context"

	"github.com/allocd/allocd/bus/message"
)

// UnitOfWork is an atomic transactional scope around one handler
// invocation. The bus opens a fresh scope per invocation; scopes are
// never shared between handlers.
type UnitOfWork interface {
	// Commit atomically persists all changes made within the scope
	Commit() error

	// Rollback discards the scope's changes. It is a no-op after a
	// successful Commit, so it is safe to defer unconditionally
	Rollback() error

	// CollectNewEvents drains the messages raised by aggregates
	// touched during the scope. The bus calls it after Commit and
	// appends the result to the back of its work queue
	CollectNewEvents() []message.Message
}

// UnitOfWorkFactory opens a fresh unit of work. The storage layer
// provides one to the bus via UseUnitOfWork.
type UnitOfWorkFactory func(context.Context) (UnitOfWork, error)
