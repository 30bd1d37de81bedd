package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/drawboard-server/internal/core"
)

const maxSessionsLimit = 500

// RoomHandlers provides HTTP handlers for room inspection endpoints.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateRoomResponse carries a freshly generated room id.
type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	RoomID      string `json:"room_id"`
	Members     int    `json:"members"`
	Strokes     int    `json:"strokes"`
	PeakMembers int    `json:"peak_members"`
	OpenedAt    string `json:"opened_at"`
}

// StatsResponse represents registry-wide counters.
type StatsResponse struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}

// SessionResponse represents one journaled room session.
type SessionResponse struct {
	RoomID      string  `json:"room_id"`
	OpenedAt    string  `json:"opened_at"`
	ClosedAt    *string `json:"closed_at,omitempty"`
	PeakMembers int     `json:"peak_members"`
}

// CreateRoom hands out a new room id. The room exists once someone joins it.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	id := h.hub.CreateRoomID()
	h.log.Debug().Str("room_id", id).Msg("room id generated")
	c.JSON(http.StatusCreated, CreateRoomResponse{RoomID: id})
}

// GetRoom describes a live room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	info, ok := h.hub.RoomInfo(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{
		RoomID:      info.ID,
		Members:     info.Members,
		Strokes:     info.Strokes,
		PeakMembers: info.PeakMembers,
		OpenedAt:    info.OpenedAt.Format(time.RFC3339),
	})
}

// Stats reports registry-wide counters.
// GET /api/stats
func (h *RoomHandlers) Stats(c *gin.Context) {
	stats := h.hub.Stats()
	c.JSON(http.StatusOK, StatsResponse{Rooms: stats.Rooms, Members: stats.Members})
}

// ListSessions returns recent room sessions from the journal.
// GET /api/sessions?limit=N
func (h *RoomHandlers) ListSessions(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSessionsLimit)
	}

	sessions, err := h.hub.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list room sessions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, rs := range sessions {
		item := SessionResponse{
			RoomID:      rs.RoomID,
			OpenedAt:    rs.OpenedAt.Format(time.RFC3339),
			PeakMembers: rs.PeakMembers,
		}
		if rs.ClosedAt != nil {
			closed := rs.ClosedAt.Format(time.RFC3339)
			item.ClosedAt = &closed
		}
		response = append(response, item)
	}
	c.JSON(http.StatusOK, response)
}
