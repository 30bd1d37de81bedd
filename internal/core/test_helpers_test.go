package core

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger := zerolog.Nop()
	return NewHub(nil, &logger)
}

func newPeer(h *Hub, id string) (*Client, *Session) {
	c := NewClient(id, 0)
	return c, h.NewSession(c)
}

// drain returns every event queued for c without waiting.
func drain(c *Client) []*Event {
	var evs []*Event
	for {
		select {
		case ev := <-c.Events:
			evs = append(evs, ev)
		default:
			return evs
		}
	}
}

func kinds(evs []*Event) []EventKind {
	out := make([]EventKind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func ofKind(evs []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}
