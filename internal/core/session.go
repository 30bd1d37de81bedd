package core

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session is the coordinator for one connection. It owns the connection's
// room membership: Unjoined until Join succeeds, Joined until Leave or
// Disconnect. Operations on one session run one at a time.
type Session struct {
	hub    *Hub
	client *Client
	log    zerolog.Logger

	mu     sync.Mutex
	room   *Room
	cursor Cursor
	ended  bool
}

// NewSession binds a client to the hub. The session starts Unjoined.
func (h *Hub) NewSession(client *Client) *Session {
	return &Session{
		hub:    h,
		client: client,
		log:    h.log.With().Str("conn_id", client.ID).Logger(),
	}
}

// RoomID returns the id of the joined room, or "" when Unjoined.
func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return ""
	}
	return s.room.ID
}

// LastCursor returns the last cursor position the session announced.
func (s *Session) LastCursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Handle applies one inbound command. Rejected commands are logged and
// dropped; the returned error is informational only.
func (s *Session) Handle(cmd *Command) error {
	var err error
	switch cmd.Kind {
	case CommandCreateRoom:
		s.CreateRoom()
	case CommandJoinRoom:
		err = s.Join(cmd.Room, cmd.Presence)
	case CommandDraw:
		err = s.AppendStroke(cmd.Stroke)
	case CommandSaveCanvas:
		err = s.ReplaceLog(cmd.Strokes)
	case CommandClearCanvas:
		err = s.Clear()
	case CommandCursorMove:
		err = s.MoveCursor(cmd.Cursor)
	case CommandUserInfo:
		err = s.AnnouncePresence(cmd.Presence)
	default:
		err = &CoreError{Code: ErrCodeBadRequest, Message: "unknown command"}
	}
	if err != nil {
		s.log.Debug().
			Err(err).
			Str("code", ErrorCode(err)).
			Stringer("command", cmd.Kind).
			Msg("command dropped")
	}
	return err
}

// CreateRoom allocates a fresh room id and sends it to this connection only.
// The room itself is registered on first join.
func (s *Session) CreateRoom() string {
	id := s.hub.rooms.GenerateRoomID()
	if !s.client.Deliver(&Event{Kind: EventRoomCreated, Room: id}) {
		s.log.Debug().Str("room_id", id).Msg("room-created dropped")
	}
	return id
}

// Join makes the connection a member of roomID, leaving any other room
// first. The joiner receives the stroke log and the other members' presence;
// everyone else learns about the joiner, and all members get the new count.
// Joining the room the connection is already in refreshes its presence and
// snapshots without evicting anything.
func (s *Session) Join(roomID string, p Presence) error {
	if roomID == "" {
		return ErrRoomRequired
	}
	p = NewPresence(p.DisplayName, p.ColorTag)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}

	room := s.room
	if room != nil && room.ID != roomID {
		s.leaveLocked()
		room = nil
	}
	for {
		if room == nil {
			room, _ = s.hub.rooms.GetOrCreate(roomID)
		}
		room.mu.Lock()
		if room.closed {
			// Evicted between lookup and lock; the registry no longer holds it.
			room.mu.Unlock()
			room = nil
			continue
		}
		s.joinLocked(room, p)
		room.mu.Unlock()
		break
	}
	s.room = room
	return nil
}

func (s *Session) joinLocked(room *Room, p Presence) {
	id := s.client.ID
	opened := len(room.members) == 0
	room.add(s.client, p)

	dropped := 0
	if len(room.strokes) > 0 {
		dropped += room.fanout(s.client, SenderOnly, &Event{
			Kind:    EventCanvasData,
			Room:    room.ID,
			Strokes: room.strokes,
		})
	}
	if others := room.othersPresence(id); len(others) > 0 {
		dropped += room.fanout(s.client, SenderOnly, &Event{
			Kind:      EventUserInfos,
			Room:      room.ID,
			Presences: others,
		})
	}
	dropped += room.fanout(s.client, AllOtherMembers, &Event{
		Kind:     EventUserJoined,
		Room:     room.ID,
		User:     id,
		Presence: p,
	})
	dropped += room.fanout(s.client, AllMembers, &Event{
		Kind:  EventUserCount,
		Room:  room.ID,
		Count: len(room.members),
	})

	if opened {
		s.hub.record(lifecycleRecord{roomID: room.ID, at: time.Now()})
	}
	s.log.Info().
		Str("room_id", room.ID).
		Str("name", p.DisplayName).
		Int("members", len(room.members)).
		Int("strokes", len(room.strokes)).
		Int("dropped", dropped).
		Msg("joined room")
}

// Leave detaches the connection from its room.
func (s *Session) Leave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return ErrNotJoined
	}
	s.leaveLocked()
	return nil
}

// leaveLocked removes the connection from its room, evicting the room when it
// becomes empty. s.mu must be held and s.room must be set.
func (s *Session) leaveLocked() {
	room := s.room
	s.room = nil

	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.remove(s.client.ID) {
		return
	}
	if len(room.members) == 0 {
		room.closed = true
		room.strokes = nil
		s.hub.rooms.releaseRoom(room)
		s.hub.record(lifecycleRecord{roomID: room.ID, at: time.Now(), closed: true, peak: room.peak})
		s.log.Info().Str("room_id", room.ID).Int("peak_members", room.peak).Msg("room evicted")
		return
	}
	dropped := room.fanout(s.client, AllMembers, &Event{
		Kind:  EventUserCount,
		Room:  room.ID,
		Count: len(room.members),
	})
	s.log.Info().
		Str("room_id", room.ID).
		Int("members", len(room.members)).
		Int("dropped", dropped).
		Msg("left room")
}

// Disconnect ends the session. It is safe to call any number of times; only
// the first call has an effect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	if s.room != nil {
		s.leaveLocked()
	}
	s.client.Close()
}

// AppendStroke relays a live stroke to the other members. The stroke log is
// left untouched; it is only refreshed through ReplaceLog.
func (s *Session) AppendStroke(st Stroke) error {
	if !st.Valid() {
		return ErrBadStroke
	}
	return s.inRoom(func(room *Room) int {
		return room.fanout(s.client, AllOtherMembers, &Event{
			Kind:   EventDraw,
			Room:   room.ID,
			Stroke: st,
		})
	})
}

// ReplaceLog overwrites the room's stroke log. Nobody is notified; the log
// only matters to members that join later.
func (s *Session) ReplaceLog(strokes []Stroke) error {
	if !validStrokes(strokes) {
		return ErrBadStroke
	}
	return s.inRoom(func(room *Room) int {
		if len(strokes) == 0 {
			room.strokes = nil
		} else {
			room.strokes = slices.Clone(strokes)
		}
		s.log.Debug().Str("room_id", room.ID).Int("strokes", len(strokes)).Msg("canvas saved")
		return 0
	})
}

// Clear empties the stroke log and tells the other members.
func (s *Session) Clear() error {
	return s.inRoom(func(room *Room) int {
		room.strokes = nil
		return room.fanout(s.client, AllOtherMembers, &Event{Kind: EventClearCanvas, Room: room.ID})
	})
}

// MoveCursor relays the sender's cursor, labelled with its presence info.
func (s *Session) MoveCursor(c Cursor) error {
	if !c.valid() {
		return ErrBadCursor
	}
	return s.inRoom(func(room *Room) int {
		s.cursor = c
		return room.fanout(s.client, AllOtherMembers, &Event{
			Kind:     EventCursorUpdate,
			Room:     room.ID,
			User:     s.client.ID,
			Presence: room.presenceOf(s.client.ID),
			Cursor:   c,
		})
	})
}

// AnnouncePresence records the sender's display name and color and tells the
// other members. Repeating an announcement is harmless.
func (s *Session) AnnouncePresence(p Presence) error {
	p = NewPresence(p.DisplayName, p.ColorTag)
	return s.inRoom(func(room *Room) int {
		room.presence[s.client.ID] = p
		return room.fanout(s.client, AllOtherMembers, &Event{
			Kind:     EventUserInfoUpdate,
			Room:     room.ID,
			User:     s.client.ID,
			Presence: p,
		})
	})
}

// inRoom runs fn with the session's room locked. fn returns the number of
// dropped deliveries.
func (s *Session) inRoom(fn func(room *Room) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room == nil {
		return ErrNotJoined
	}

	room := s.room
	room.mu.Lock()
	dropped := fn(room)
	room.mu.Unlock()

	if dropped > 0 {
		s.log.Debug().Str("room_id", room.ID).Int("dropped", dropped).Msg("deliveries dropped")
	}
	return nil
}
