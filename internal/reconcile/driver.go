// Package reconcile replays offline state whenever authentication changes:
// stale user-scoped state is dropped, authoritative state reloaded and the
// pending write queue flushed under the new identity.
package reconcile

import (
	"context"

	"backend-taqvo/internal/stream"
)

type Model interface {
	HandleAuthChange(ctx context.Context)
}

// Driver subscribes to the auth topic at construction and unsubscribes at
// Close. One goroutine handles events sequentially, so reconciliation
// passes never overlap.
type Driver struct {
	hub    *stream.Hub
	client *stream.Client
	model  Model
	done   chan struct{}
}

func NewDriver(hub *stream.Hub, model Model) *Driver {
	d := &Driver{
		hub:    hub,
		client: hub.Register(stream.TopicAuth),
		model:  model,
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Driver) loop() {
	for range d.client.Recv {
		d.model.HandleAuthChange(context.Background())
	}
	close(d.done)
}

func (d *Driver) Close() {
	d.hub.Unregister(d.client)
	<-d.done
}
