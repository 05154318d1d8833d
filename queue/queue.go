// Package queue is the durable inbound message queue: external
// systems (warehouse scanners, the purchasing system) enqueue
// commands here, and a worker drains them into the dispatcher. The
// queue is Postgres-backed so enqueued messages survive restarts.
package queue

import (
	"context"
	stdSQL "database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/pkg/sql"
	wmMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/allocd/allocd/bus"
	"github.com/allocd/allocd/bus/message"
	"github.com/allocd/allocd/log"
)

const topic = "allocation_messages"

func makeDB(dsn string) *stdSQL.DB {
	db, err := stdSQL.Open("postgres", dsn)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// NewSQL returns a Postgres-backed queue
func NewSQL(dsn string) *SQL {
	db := makeDB(dsn)
	logger := watermill.NewStdLogger(false, false)
	publisher, err := sql.NewPublisher(
		db,
		sql.PublisherConfig{
			SchemaAdapter:        PostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		logger,
	)
	if err != nil {
		panic(err)
	}
	return &SQL{db: db, logger: logger, publisher: publisher}
}

type SQL struct {
	db        *stdSQL.DB
	logger    watermill.LoggerAdapter
	publisher wmMessage.Publisher
}

func (q *SQL) Close() {
	q.publisher.Close()
	q.db.Close()
}

// Publish enqueues messages, blocking until they are durably stored
func (q *SQL) Publish(ctx context.Context, msgs ...message.Message) error {
	for _, msg := range msgs {
		deliver, err := q.fromMessage(msg)
		if err != nil {
			return err
		}

		log.Info(ctx, "enqueueing message", log.F{"id": deliver.UUID})
		if err := q.publisher.Publish(topic, deliver); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers a callback for inbound messages and runs the
// queue, blocking until ctx cancels. Messages that keep failing are
// parked on a poison topic rather than blocking the queue.
func (q *SQL) Subscribe(ctx context.Context, fn func(context.Context, message.Message) error) {
	router, err := wmMessage.NewRouter(wmMessage.RouterConfig{}, q.logger)
	if err != nil {
		panic(err)
	}

	poison, err := middleware.PoisonQueue(q.publisher, "failures")
	if err != nil {
		panic(err)
	}
	router.AddMiddleware(
		poison,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second * 2,
			Multiplier:      2,
			Logger:          q.logger,
		}.Middleware,
	)

	subscriber, err := sql.NewSubscriber(
		q.db,
		sql.SubscriberConfig{
			SchemaAdapter:    PostgreSQLSchema{},
			OffsetsAdapter:   sql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
		},
		q.logger,
	)
	if err != nil {
		panic(err)
	}

	router.AddNoPublisherHandler(
		"dispatch",
		topic,
		subscriber,
		func(msg *wmMessage.Message) error {
			return q.process(fn, msg)
		},
	)

	if err := router.Run(ctx); err != nil {
		panic(err)
	}
}

func (q *SQL) process(fn func(context.Context, message.Message) error, msg *wmMessage.Message) (err error) {
	ctx := log.WithID(context.Background())

	defer func() {
		if r := recover(); r != nil {
			msg.Nack()
			err = log.Error(ctx, fmt.Errorf("panicked running message: %v", r), log.F{"id": msg.UUID})
		}
	}()

	input, err := q.toMessage(msg)
	if err != nil {
		msg.Nack()
		return log.Error(ctx, fmt.Errorf("failed decoding message: %w", err), log.F{"id": msg.UUID})
	}

	log.Info(ctx, "received message", log.F{"id": msg.UUID})
	if err := fn(ctx, input); err != nil {
		msg.Nack()
		return log.Error(ctx, fmt.Errorf("failed running message: %w", err), log.F{"id": msg.UUID})
	}

	msg.Ack()
	return nil
}

func (q *SQL) fromMessage(msg message.Message) (*wmMessage.Message, error) {
	payload, err := bus.SerializeMessage(msg, bus.Json)
	if err != nil {
		return nil, err
	}
	return wmMessage.NewMessage(watermill.NewUUID(), payload), nil
}

func (q *SQL) toMessage(msg *wmMessage.Message) (message.Message, error) {
	return bus.DeserializeMessage(msg.Payload)
}
