package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom asks for a fresh room identifier.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom binds the connection to a room, leaving any previous one.
	CommandJoinRoom
	// CommandDraw relays a live stroke to the other members.
	CommandDraw
	// CommandSaveCanvas replaces the room's stroke log.
	CommandSaveCanvas
	// CommandClearCanvas empties the room's stroke log.
	CommandClearCanvas
	// CommandCursorMove relays the sender's cursor position.
	CommandCursorMove
	// CommandUserInfo updates the sender's presence info.
	CommandUserInfo
)

var commandNames = [...]string{
	CommandCreateRoom:  "create-room",
	CommandJoinRoom:    "join-room",
	CommandDraw:        "draw",
	CommandSaveCanvas:  "save-canvas",
	CommandClearCanvas: "clear-canvas",
	CommandCursorMove:  "cursor-move",
	CommandUserInfo:    "user-info",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[k]
}

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Room     string
	Presence Presence
	Stroke   Stroke
	Strokes  []Stroke
	Cursor   Cursor
}
