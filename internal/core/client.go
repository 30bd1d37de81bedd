package core

import "sync"

// DefaultEventBuffer is the per-client outbound queue length.
const DefaultEventBuffer = 256

// Client is one connected participant as seen by the core layer.
// Commands carries inbound requests in arrival order; Events carries
// everything the coordinator wants delivered to this connection.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Deliver queues an event without blocking. It returns false when the client
// is closed or its queue is full; the event is dropped in that case.
func (c *Client) Deliver(ev *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

// Close marks the client as gone. Events is left open so concurrent
// deliveries never panic; they are dropped instead.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
