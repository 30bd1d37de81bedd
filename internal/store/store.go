package store

import (
	"context"
	"time"
)

// RoomSession is one lifetime of a room: from its first join until the last
// member left. Only lifecycle metadata is kept, never canvas contents.
type RoomSession struct {
	ID          int64
	RoomID      string
	OpenedAt    time.Time
	ClosedAt    *time.Time // nil while the room is still live
	PeakMembers int
}

// Journal records room lifecycle for operators.
type Journal interface {
	// RecordOpened starts a new session for roomID.
	RecordOpened(ctx context.Context, roomID string, at time.Time) error

	// RecordClosed closes the latest open session for roomID.
	RecordClosed(ctx context.Context, roomID string, at time.Time, peakMembers int) error

	// RecentSessions returns up to limit sessions, newest first.
	RecentSessions(ctx context.Context, limit int) ([]RoomSession, error)

	// Close releases underlying resources.
	Close() error
}
