package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/drawboard-server/internal/store"
)

const (
	journalQueue   = 128
	journalTimeout = 5 * time.Second
)

// Hub wires connections to the room registry and records room lifecycle to
// an optional journal.
type Hub struct {
	rooms   *Registry
	journal store.Journal
	records chan lifecycleRecord
	log     *zerolog.Logger
}

// Stats is a registry-wide snapshot.
type Stats struct {
	Rooms   int
	Members int
}

type lifecycleRecord struct {
	roomID string
	at     time.Time
	closed bool
	peak   int
}

// NewHub creates a hub. journal may be nil, in which case room lifecycle is
// not recorded.
func NewHub(journal store.Journal, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		rooms:   NewRegistry(),
		journal: journal,
		records: make(chan lifecycleRecord, journalQueue),
		log:     logger,
	}
}

// Rooms exposes the registry.
func (h *Hub) Rooms() *Registry {
	return h.rooms
}

// Run writes queued lifecycle records to the journal until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-h.records:
			h.persist(ctx, rec)
		}
	}
}

// Serve runs the session loop for client: commands are applied in arrival
// order until ctx is cancelled, the client closes or Commands is closed.
// The session is disconnected exactly once on return.
func (h *Hub) Serve(ctx context.Context, client *Client) {
	session := h.NewSession(client)
	defer session.Disconnect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case cmd, ok := <-client.Commands:
			if !ok {
				return
			}
			if cmd != nil {
				_ = session.Handle(cmd)
			}
		}
	}
}

// CreateRoomID returns a fresh room id without registering a room.
func (h *Hub) CreateRoomID() string {
	return h.rooms.GenerateRoomID()
}

// RoomInfo summarizes a live room.
func (h *Hub) RoomInfo(id string) (RoomInfo, bool) {
	room, ok := h.rooms.Lookup(id)
	if !ok {
		return RoomInfo{}, false
	}
	return room.Info()
}

// Stats reports the number of live rooms and joined members.
func (h *Hub) Stats() Stats {
	rooms, members := h.rooms.Stats()
	return Stats{Rooms: rooms, Members: members}
}

// RecentSessions lists journaled room sessions, newest first.
func (h *Hub) RecentSessions(ctx context.Context, limit int) ([]store.RoomSession, error) {
	if h.journal == nil {
		return nil, nil
	}
	return h.journal.RecentSessions(ctx, limit)
}

func (h *Hub) record(rec lifecycleRecord) {
	if h.journal == nil {
		return
	}
	select {
	case h.records <- rec:
	default:
		h.log.Warn().Str("room_id", rec.roomID).Msg("journal queue full, record dropped")
	}
}

func (h *Hub) persist(ctx context.Context, rec lifecycleRecord) {
	ctx, cancel := context.WithTimeout(ctx, journalTimeout)
	defer cancel()

	var err error
	if rec.closed {
		err = h.journal.RecordClosed(ctx, rec.roomID, rec.at, rec.peak)
	} else {
		err = h.journal.RecordOpened(ctx, rec.roomID, rec.at)
	}
	if err != nil {
		h.log.Warn().Err(err).Str("room_id", rec.roomID).Bool("closed", rec.closed).Msg("journal write failed")
	}
}
