// Package app builds and wires the running application
package app

import (
	"context"
	"os"
	"os/signal"

	"github.com/jmoiron/sqlx"

	"github.com/allocd/allocd/broadcast"
	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/bus/message"
	"github.com/allocd/allocd/config"
	"github.com/allocd/allocd/handlers"
	"github.com/allocd/allocd/notifications"
	"github.com/allocd/allocd/ports"
	"github.com/allocd/allocd/ports/rest"
	"github.com/allocd/allocd/queue"
	"github.com/allocd/allocd/storage/postgres"
)

// Make builds and returns the app
func Make(ctx context.Context) *App {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, os.Kill)

	conf := config.New()
	db := postgres.Connect(conf.DBDsn())
	store := postgres.New(db)

	mailer := notifications.NewSMTPMailer(conf.SMTPHost, conf.SMTPPort, conf.MailFrom)
	publisher := broadcast.NewRedis(conf.RedisAddr)

	b := bus.Default(
		[]bus.Module{
			handlers.Allocation{Mailer: mailer, Publisher: publisher, MailTo: conf.MailTo},
		},
		bus.UseUnitOfWork(store.Begin),
		bus.WithRetry(bus.DefaultRetry()),
	)

	return &App{
		Bus:       b,
		DB:        db,
		queue:     queue.NewSQL(conf.DBDsn()),
		publisher: publisher,
		ctx:       ctx,
		cancel:    cancel,
	}
}

type App struct {
	Bus *bus.Bus
	DB  *sqlx.DB

	queue     *queue.SQL
	publisher *broadcast.Redis
	ctx       context.Context
	cancel    context.CancelFunc
}

// Handle serves the HTTP API, blocking
func (a *App) Handle() error {
	p := ports.Ports{rest.NewServer(a.Bus, a.DB)}
	return p.Run(a.ctx)
}

// Work drains the durable queue into the dispatcher, blocking
func (a *App) Work() error {
	p := ports.Ports{ports.PortFunc(func(ctx context.Context) error {
		a.queue.Subscribe(ctx, func(ctx context.Context, msg message.Message) error {
			_, err := a.Bus.Dispatch(ctx, msg)
			return err
		})
		return nil
	})}
	return p.Run(a.ctx)
}

// Close releases the app's resources
func (a *App) Close() {
	defer a.cancel()
	a.queue.Close()
	a.publisher.Close()
	a.DB.Close()
	a.Bus.Close()
}
