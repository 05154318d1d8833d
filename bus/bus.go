package bus

import (
	"context"
	"fmt"
	"reflect"

	"github.com/allocd/allocd/bus/message"
	"github.com/allocd/allocd/log"

	"github.com/sarulabs/di/v2"
)

// DefaultBudget is the per-dispatch message budget. The work queue has
// no cycle detection, so a handler that re-raises the event it reacts
// to would otherwise never terminate.
const DefaultBudget = 1000

// Default returns a bus with recommended middlewares
func Default(mods []Module, configs ...Config) *Bus {
	b := New(mods, configs...)
	b.Use(
		CommandValidationGuard,
		CommandLoggingMiddleware,
		EventLoggingMiddleware,
	)
	return b
}

// New returns a new configured bus.
//
// Module wiring mistakes (duplicate command handlers, bad configs) are
// deployment defects and panic at startup rather than surfacing at
// dispatch time.
func New(mods []Module, configs ...Config) *Bus {
	builder, _ := di.NewBuilder()
	registry := NewRegistry()

	for _, mod := range mods {
		for _, def := range mod.Services() {
			builder.Add(def.diDef())
		}
		if err := registry.ExtendCommands(mod.Commands()); err != nil {
			panic(err)
		}
		registry.ExtendEvents(mod.Events())

		for cmd := range mod.Commands() {
			RegisterMessage(cmd)
		}
		for event := range mod.Events() {
			RegisterMessage(event)
		}
	}

	b := &Bus{
		routes:    registry,
		container: builder.Build(),
		retry:     DefaultRetry(),
		budget:    DefaultBudget,
	}

	for _, conf := range configs {
		if err := conf(b); err != nil {
			panic(err)
		}
	}
	return b
}

// Bus is the message dispatcher. It accepts a command or event,
// resolves its handler(s), executes each within its own unit of work,
// and drives the resulting message cascade breadth-first until the
// work queue is empty.
//
// A Bus holds no mutable state beyond its startup wiring, so
// concurrent Dispatch calls do not interfere with each other.
type Bus struct {
	routes    Registry
	container di.Container
	uow       UnitOfWorkFactory
	retry     RetryPolicy
	budget    int

	commandGuards     []CommandGuard
	commandMiddleware []CommandMiddleware
	eventMiddleware   []EventMiddleware
}

// Close deletes the container's resources
func (b *Bus) Close() {
	b.container.Delete()
}

// Use registers guards and middleware. Accepts a union of command
// guards and command/event middleware.
func (b *Bus) Use(ms ...interface{}) {
	for _, m := range ms {
		switch v := m.(type) {
		case CommandGuard:
			b.commandGuards = append(b.commandGuards, v)
		case CommandMiddleware:
			b.commandMiddleware = append(b.commandMiddleware, v)
		case EventMiddleware:
			b.eventMiddleware = append(b.eventMiddleware, v)
		default:
			panic(fmt.Sprint("not a valid guard or middleware, is ", reflect.TypeOf(v)))
		}
	}
}

// Dispatch submits one message and drives the cascade it generates to
// completion, in FIFO order. It returns one CommandResponse per
// command processed, in processing order; events contribute none.
//
// A command failure aborts the call and is returned unmodified, along
// with the responses accumulated so far. Event handler failures are
// retried, then logged and swallowed: they never fail the call.
func (b *Bus) Dispatch(ctx context.Context, initial message.Message) ([]CommandResponse, error) {
	ctx = log.WithID(ctx)
	results := make([]CommandResponse, 0, 1)
	queue := []message.Message{initial}

	for processed := 0; len(queue) > 0; processed++ {
		if processed == b.budget {
			return results, CascadeOverflow{b.budget}
		}

		msg := queue[0]
		queue = queue[1:]

		switch v := msg.(type) {
		case Command:
			res, raised, err := b.handleCommand(ctx, v)
			if err != nil {
				return results, err
			}
			results = append(results, res)
			queue = append(queue, raised...)
		case Event:
			queue = append(queue, b.handleEvent(ctx, v)...)
		default:
			return results, NotRoutable{msg}
		}
	}

	return results, nil
}

// handleCommand executes a command's one handler within a fresh unit
// of work. Any failure is logged with the full payload and propagated.
func (b *Bus) handleCommand(ctx context.Context, cmd Command) (CommandResponse, []message.Message, error) {
	ctx, cmd, err := b.runCmdGuards(ctx, cmd)
	if err != nil {
		return CommandResponse{Error: err}, nil, err
	}

	name, ok := b.routes.RouteCommand(cmd)
	if !ok {
		return CommandResponse{}, nil, NoCommandHandler{cmd}
	}

	handler := b.container.Get(name).(CommandHandler)
	for _, mw := range b.commandMiddleware {
		handler = mw(handler)
	}

	uow, err := b.uow(ctx)
	if err != nil {
		return CommandResponse{Error: err}, nil, err
	}
	defer uow.Rollback()

	res, err := handler.Execute(ctx, cmd, uow)
	if err != nil {
		log.Error(ctx, err, log.F{
			"command": cmd.Command(),
			"handler": name,
			"payload": fmt.Sprintf("%+v", cmd),
		})
		return CommandResponse{Error: err}, nil, err
	}

	if err := uow.Commit(); err != nil {
		log.Error(ctx, err, log.F{
			"command": cmd.Command(),
			"handler": name,
			"payload": fmt.Sprintf("%+v", cmd),
		})
		return CommandResponse{Error: err}, nil, err
	}

	return res, uow.CollectNewEvents(), nil
}

// handleEvent fans an event out to its registered handlers, in
// registration order. Each handler is attempted independently under
// the retry policy; exhaustion is logged with enough payload detail
// for manual replay, then skipped.
func (b *Bus) handleEvent(ctx context.Context, evt Event) []message.Message {
	var raised []message.Message

	for _, name := range b.routes.RouteEvent(evt) {
		handler, err := b.eventHandler(name)
		if err != nil {
			log.Error(ctx, err, log.F{"event": evt.Event(), "handler": name})
			continue
		}

		attempts := 0
		err = b.retry.Do(ctx, func(attempt int) error {
			attempts = attempt
			msgs, err := b.attemptEvent(ctx, evt, handler)
			if err != nil {
				log.Debug(ctx, "event handler attempt failed", log.F{
					"event":   evt.Event(),
					"handler": name,
					"attempt": fmt.Sprint(attempt),
					"err":     err.Error(),
				})
				return err
			}
			raised = append(raised, msgs...)
			return nil
		})
		if err != nil {
			log.Error(ctx, err, log.F{
				"event":    evt.Event(),
				"handler":  name,
				"attempts": fmt.Sprint(attempts),
				"payload":  fmt.Sprintf("%+v", evt),
			})
		}
	}

	return raised
}

// attemptEvent is one full handler attempt: a fresh unit of work,
// never reusing state from a prior failed attempt
func (b *Bus) attemptEvent(ctx context.Context, evt Event, handler EventHandler) ([]message.Message, error) {
	for _, mw := range b.eventMiddleware {
		handler = mw(handler)
	}

	uow, err := b.uow(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := handler.Handle(ctx, evt, uow); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return uow.CollectNewEvents(), nil
}

func (b *Bus) eventHandler(name string) (EventHandler, error) {
	svc, err := b.container.SafeGet(name)
	if err != nil {
		return nil, err
	}
	handler, ok := svc.(EventHandler)
	if !ok {
		return nil, fmt.Errorf("service %s is not an event handler, is %s", name, reflect.TypeOf(svc))
	}
	return handler, nil
}

func (b *Bus) runCmdGuards(ctx context.Context, cmd Command) (context.Context, Command, error) {
	var err error
	for _, guard := range b.commandGuards {
		ctx, cmd, err = guard(ctx, cmd)
		if err != nil {
			return ctx, cmd, err
		}
	}
	return ctx, cmd, err
}
