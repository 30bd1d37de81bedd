package core

import "math"

const (
	// DefaultDisplayName labels members that never announced a name.
	DefaultDisplayName = "Anonymous"
	// DefaultColorTag is the cursor color of members that never announced one.
	DefaultColorTag = "#ff6b6b"
)

// Presence is the self-announced identity of a room member.
type Presence struct {
	DisplayName string
	ColorTag    string
}

// NewPresence builds presence info, substituting defaults for empty fields.
func NewPresence(displayName, colorTag string) Presence {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	if colorTag == "" {
		colorTag = DefaultColorTag
	}
	return Presence{DisplayName: displayName, ColorTag: colorTag}
}

// Cursor is a pointer position in room-local coordinates.
type Cursor struct {
	X float64
	Y float64
}

func (c Cursor) valid() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}
