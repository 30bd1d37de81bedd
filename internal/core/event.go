package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomCreated answers a create request with a fresh room id.
	EventRoomCreated EventKind = iota
	// EventCanvasData delivers the stroke log to a joining client.
	EventCanvasData
	// EventUserInfos delivers presence of the other members to a joining client.
	EventUserInfos
	// EventUserJoined notifies members that someone joined.
	EventUserJoined
	// EventUserInfoUpdate notifies members that someone changed presence info.
	EventUserInfoUpdate
	// EventUserCount reports the current room size.
	EventUserCount
	// EventDraw relays a live stroke.
	EventDraw
	// EventCursorUpdate relays a member's cursor.
	EventCursorUpdate
	// EventClearCanvas notifies members that the canvas was cleared.
	EventClearCanvas
)

var eventNames = [...]string{
	EventRoomCreated:    "room-created",
	EventCanvasData:     "canvas-data",
	EventUserInfos:      "user-infos",
	EventUserJoined:     "user-joined",
	EventUserInfoUpdate: "user-info-update",
	EventUserCount:      "user-count",
	EventDraw:           "draw",
	EventCursorUpdate:   "cursor-update",
	EventClearCanvas:    "clear-canvas",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is sent to clients to describe what happened in a room.
// A single Event value may be shared by several recipients and must be
// treated as read-only.
type Event struct {
	Kind      EventKind
	Room      string
	User      string              // connection id of the member the event is about
	Presence  Presence            // EventUserJoined, EventUserInfoUpdate, EventCursorUpdate
	Presences map[string]Presence // EventUserInfos
	Strokes   []Stroke            // EventCanvasData
	Stroke    Stroke              // EventDraw
	Cursor    Cursor              // EventCursorUpdate
	Count     int                 // EventUserCount
}
