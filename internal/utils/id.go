package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewRoomID returns a random (version 4) UUID string.
func NewRoomID() string {
	return uuid.NewString()
}

// NewConnectionID returns a compact random identifier for a live connection.
func NewConnectionID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
