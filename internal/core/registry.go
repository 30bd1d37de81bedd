package core

import (
	"sync"

	"github.com/vovakirdan/drawboard-server/internal/utils"
)

// Registry is the process-wide directory of live rooms. It only guards the
// map; each Room serializes its own state.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room registered under id, creating an empty one if
// none exists. The second result reports whether the room was created.
func (r *Registry) GetOrCreate(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		return room, false
	}
	room := newRoom(id)
	r.rooms[id] = room
	return room, true
}

// Lookup returns the room registered under id, if any.
func (r *Registry) Lookup(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

// GenerateRoomID returns a fresh random room id. It does not register a room.
func (r *Registry) GenerateRoomID() string {
	return utils.NewRoomID()
}

// Release removes the room registered under id. Releasing an unknown id is a
// no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

// releaseRoom removes room only if it is still the registered instance, so a
// late release never evicts a newer room with the same id.
func (r *Registry) releaseRoom(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[room.ID] == room {
		delete(r.rooms, room.ID)
	}
}

// Stats returns the number of live rooms and joined members.
func (r *Registry) Stats() (rooms, members int) {
	// Rooms lock themselves before touching the registry, so the snapshot is
	// taken first and room locks are acquired without holding r.mu.
	r.mu.Lock()
	snapshot := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		snapshot = append(snapshot, room)
	}
	r.mu.Unlock()

	for _, room := range snapshot {
		room.mu.Lock()
		if !room.closed {
			rooms++
			members += len(room.members)
		}
		room.mu.Unlock()
	}
	return rooms, members
}
