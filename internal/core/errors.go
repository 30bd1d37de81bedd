package core

import "errors"

// Error codes for protocol violations. They only appear in logs; offending
// events are dropped without notifying anyone.
const (
	ErrCodeNotJoined    = "not_joined"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeBadStroke    = "bad_stroke"
	ErrCodeSessionEnded = "session_ended"
)

var (
	ErrNotJoined    = &CoreError{Code: ErrCodeNotJoined, Message: "connection has not joined a room"}
	ErrRoomRequired = &CoreError{Code: ErrCodeBadRequest, Message: "room id is required"}
	ErrBadCursor    = &CoreError{Code: ErrCodeBadRequest, Message: "cursor position is not finite"}
	ErrBadStroke    = &CoreError{Code: ErrCodeBadStroke, Message: "stroke is malformed"}
	ErrSessionEnded = &CoreError{Code: ErrCodeSessionEnded, Message: "session already disconnected"}
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// ErrorCode extracts the code of a CoreError, or "" for other errors.
func ErrorCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
