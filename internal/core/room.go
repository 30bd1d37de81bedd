package core

import (
	"maps"
	"sync"
	"time"
)

// Room is the authoritative state of one collaborative surface.
// All fields below mu are guarded by it; every coordinator operation holds
// mu for its whole mutation and fan-out, so effects on one room never
// interleave.
type Room struct {
	ID       string
	openedAt time.Time

	mu       sync.Mutex
	members  map[string]*Client
	presence map[string]Presence
	// strokes is replaced wholesale and never mutated in place, so snapshots
	// can share the backing array.
	strokes []Stroke
	peak    int
	closed  bool
}

// RoomInfo is a point-in-time summary of a room.
type RoomInfo struct {
	ID          string
	Members     int
	Strokes     int
	PeakMembers int
	OpenedAt    time.Time
}

func newRoom(id string) *Room {
	return &Room{
		ID:       id,
		openedAt: time.Now(),
		members:  make(map[string]*Client),
		presence: make(map[string]Presence),
	}
}

// Info returns a summary of the room's current state. It reports false once
// the room has been evicted.
func (r *Room) Info() (RoomInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:          r.ID,
		Members:     len(r.members),
		Strokes:     len(r.strokes),
		PeakMembers: r.peak,
		OpenedAt:    r.openedAt,
	}, !r.closed
}

// Members returns the connection ids currently joined.
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// Presence returns the presence info recorded for a member.
func (r *Room) Presence(connID string) (Presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.presence[connID]
	return p, ok
}

// Strokes returns the current stroke log.
func (r *Room) Strokes() []Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strokes
}

// The helpers below expect r.mu to be held.

func (r *Room) add(c *Client, p Presence) {
	r.members[c.ID] = c
	r.presence[c.ID] = p
	if len(r.members) > r.peak {
		r.peak = len(r.members)
	}
}

func (r *Room) remove(connID string) bool {
	if _, ok := r.members[connID]; !ok {
		return false
	}
	delete(r.members, connID)
	delete(r.presence, connID)
	return true
}

func (r *Room) presenceOf(connID string) Presence {
	if p, ok := r.presence[connID]; ok {
		return p
	}
	return NewPresence("", "")
}

func (r *Room) othersPresence(connID string) map[string]Presence {
	others := maps.Clone(r.presence)
	delete(others, connID)
	return others
}
