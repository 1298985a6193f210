package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/core"
	"github.com/vovakirdan/wirechat-irc/internal/session"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const (
	snapshotTimeout = 2 * time.Second
	maxAuditLimit   = 1000
)

// Hub is what the HTTP surface needs from the core: the session operations
// for the gateway and the read-only snapshots for the API.
type Hub interface {
	session.Hub
	Channels(ctx context.Context) ([]core.ChannelInfo, error)
	Clients(ctx context.Context) ([]core.ClientInfo, error)
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIHandlers provides the read-only admin endpoints.
type APIHandlers struct {
	hub   Hub
	store store.EventStore
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. st may be nil.
func NewAPIHandlers(hub Hub, st store.EventStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// Health reports liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Channels lists the fixed channels with their members.
// GET /api/channels
func (h *APIHandlers) Channels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), snapshotTimeout)
	defer cancel()

	channels, err := h.hub.Channels(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("channel snapshot failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "channel registry unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// Clients lists registered clients.
// GET /api/clients
func (h *APIHandlers) Clients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), snapshotTimeout)
	defer cancel()

	clients, err := h.hub.Clients(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("client snapshot failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "session registry unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// Audit returns recent audit events, or every event of one client.
// GET /api/audit?limit=50
// GET /api/audit?client_id=<id>
func (h *APIHandlers) Audit(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "audit log disabled"})
		return
	}

	var (
		events []*store.Event
		err    error
	)
	if clientID := c.Query("client_id"); clientID != "" {
		events, err = h.store.EventsForClient(c.Request.Context(), clientID)
	} else {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit <= 0 || limit > maxAuditLimit {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 1000"})
				return
			}
		}
		events, err = h.store.RecentEvents(c.Request.Context(), limit)
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query audit events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": eventsToResponse(events)})
}
