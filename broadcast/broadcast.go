// Package broadcast pushes committed allocation facts to external
// consumers over redis pub/sub. Downstream systems (reporting, the
// order service) subscribe to the channels rather than polling us.
package broadcast

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/allocd/allocd/bus"
)

// Publisher broadcasts an event on a named channel
type Publisher interface {
	Publish(ctx context.Context, channel string, e bus.Event) error
}

// NewRedis returns a redis-backed publisher
func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

type Redis struct {
	client *redis.Client
}

func (r *Redis) Publish(ctx context.Context, channel string, e bus.Event) error {
	payload, err := bus.SerializeMessage(e, bus.Json)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, payload).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Recording captures published events for assertions in tests
type Recording struct {
	mx        sync.Mutex
	published map[string][]bus.Event
}

func (r *Recording) Publish(ctx context.Context, channel string, e bus.Event) error {
	r.mx.Lock()
	defer r.mx.Unlock()
	if r.published == nil {
		r.published = make(map[string][]bus.Event)
	}
	r.published[channel] = append(r.published[channel], e)
	return nil
}

func (r *Recording) Published(channel string) []bus.Event {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.published[channel]
}
