package bus

import (
	"context"

	"github.com/allocd/allocd/log"
)

/*
 * Guards
**/

type CommandGuard = func(context.Context, Command) (context.Context, Command, error)

// CommandValidationGuard rejects invalid commands before they are routed
func CommandValidationGuard(ctx context.Context, c Command) (context.Context, Command, error) {
	if err := c.Valid(); err != nil {
		return ctx, c, err
	}
	return ctx, c, nil
}

/*
 * Command middleware
 */

type BaseCommandMiddleware struct {
	ExecuteMethod func(context.Context, Command, UnitOfWork) (CommandResponse, error)
}

func (m BaseCommandMiddleware) Execute(ctx context.Context, c Command, uow UnitOfWork) (CommandResponse, error) {
	return m.ExecuteMethod(ctx, c, uow)
}

// CmdFunc adapts a function into a CommandHandler
func CmdFunc(fn func(context.Context, Command, UnitOfWork) (CommandResponse, error)) CommandHandler {
	handler := struct{ BaseCommandMiddleware }{}
	handler.ExecuteMethod = fn
	return handler
}

type CommandMiddleware = func(CommandHandler) CommandHandler

func CommandLoggingMiddleware(next CommandHandler) CommandHandler {
	return CmdFunc(func(ctx context.Context, c Command, uow UnitOfWork) (res CommandResponse, err error) {
		log.Info(ctx, "executing command", log.F{"command": c.Command()})

		res, err = next.Execute(ctx, c, uow)

		log.Info(ctx, "finished executing command", log.F{"command": c.Command()})
		return
	})
}

/*
 * Event middleware
 */

type BaseEventMiddleware struct {
	HandleMethod func(context.Context, Event, UnitOfWork) error
}

func (m BaseEventMiddleware) Handle(ctx context.Context, e Event, uow UnitOfWork) error {
	return m.HandleMethod(ctx, e, uow)
}

// EventFunc adapts a function into an EventHandler
func EventFunc(fn func(context.Context, Event, UnitOfWork) error) EventHandler {
	handler := struct{ BaseEventMiddleware }{}
	handler.HandleMethod = fn
	return handler
}

type EventMiddleware = func(EventHandler) EventHandler

func EventLoggingMiddleware(next EventHandler) EventHandler {
	return EventFunc(func(ctx context.Context, e Event, uow UnitOfWork) error {
		log.Debug(ctx, "handling event", log.F{"event": e.Event()})
		return next.Handle(ctx, e, uow)
	})
}
