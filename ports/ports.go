package ports

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allocd/allocd/log"
	"golang.org/x/sync/errgroup"
)

// Port is an external input to the system that listens, blocking.
//
// The port interface allows an app to concurrently run multiple blocking
// ports while handling cancellation and graceful shutdown.
// The port interface also requires that:
// - The port will only return an error if it cannot continue. An error will force the whole system to shut down
// - The port must block
// - The port will gracefully stop upon the context cancelling
type Port interface {
	Run(context.Context) error
}

// PortFunc adapts a function into a Port
type PortFunc func(context.Context) error

func (f PortFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Ports is a collection of entry ports into the system
type Ports []Port

// Run runs all the ports with graceful shutdown.
//
// Run blocks, running all the ports concurrently, until receiving a ctx
// cancellation, an OS signal, or a port returning an error (see Port).
// Then, it cancels all other ports. A port panicking is treated as that
// port erroring. If a port fails to exit within 10 seconds it is
// abandoned and Run returns anyway.
func (p Ports) Run(ctx context.Context) error {
	ctx, _ = signal.NotifyContext(ctx, os.Interrupt, os.Kill, syscall.SIGINT, syscall.SIGTERM)
	g, ctx := errgroup.WithContext(ctx)

	for _, port := range p {
		port := port
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return port.Run(ctx)
		})
	}

	<-ctx.Done()
	log.Info(ctx, "quitting - waiting for all ports to exit", log.F{})

	var err error
	ended := make(chan struct{}, 1)
	go func() {
		err = g.Wait()
		ended <- struct{}{}
	}()

	select {
	case <-ended:
		return err
	case <-time.After(time.Second * 10):
		return fmt.Errorf("failed to quit after 10 seconds, forced: %w", err)
	}
}
