package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeCreateRoom  = "create-room"
	InboundTypeJoinRoom    = "join-room"
	InboundTypeDraw        = "draw"
	InboundTypeSaveCanvas  = "save-canvas"
	InboundTypeClearCanvas = "clear-canvas"
	InboundTypeCursorMove  = "cursor-move"
	InboundTypeUserInfo    = "user-info"

	OutboundTypeEvent = "event"

	EventRoomCreated  = "room-created"
	EventCanvasData   = "canvas-data"
	EventUserInfos    = "user-infos"
	EventUserJoined   = "user-joined"
	EventUserCount    = "user-count"
	EventDraw         = "draw"
	EventCursorUpdate = "cursor-update"
	EventClearCanvas  = "clear-canvas"
)

// JoinRoomData asks to join (and lazily create) a room.
type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Stroke is one line segment; it is used verbatim for draw, save-canvas and
// canvas-data payloads.
type Stroke struct {
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// CursorMoveData is the sender's cursor in room-local coordinates. Both
// coordinates are required.
type CursorMoveData struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// UserInfoData announces the sender's display name and color.
type UserInfoData struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// UserInfo is one entry of the user-infos map.
type UserInfo struct {
	Username string `json:"username"`
	Color    string `json:"color"`
}

// EventUser announces a member joining or changing its presence.
type EventUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// EventCursor is a member's live cursor.
type EventCursor struct {
	UserID   string  `json:"userId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Username string  `json:"username"`
	Color    string  `json:"color"`
}
