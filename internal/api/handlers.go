// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gws "github.com/gorilla/websocket"

	"github.com/reliva-app/reliva-feed/internal/config"
	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/models"
	"github.com/reliva-app/reliva-feed/internal/websocket"
)

// Handler serves the REST surface and the websocket upgrade.
type Handler struct {
	hub      *websocket.Hub
	cfg      *config.Config
	upgrader gws.Upgrader
}

// NewHandler wires the handler to the hub and its authoritative store.
func NewHandler(hub *websocket.Hub, cfg *config.Config) *Handler {
	h := &Handler{hub: hub, cfg: cfg}
	h.upgrader = gws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Posts returns the feed snapshot decorated for the requesting viewer.
// userId is optional; without it no isLiked flags are set.
func (h *Handler) Posts(w http.ResponseWriter, r *http.Request) {
	viewerID := r.URL.Query().Get("userId")
	page := parseIntParam(r, "page", 0)
	limit := parseIntParam(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}

	posts := h.hub.Feed().Snapshot(viewerID, page, limit)
	respondJSON(w, http.StatusOK, models.PostsResponse{Success: true, Posts: posts})
}

// Comment returns one comment by id, from anywhere in any post's tree.
// Thread pages use this as the fallback when a deep-linked parent is
// missing from their local snapshot.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentId")
	if commentID == "" {
		respondError(w, http.StatusBadRequest, "missing_comment_id", "commentId is required")
		return
	}

	comment, err := h.hub.Feed().CommentByID(commentID)
	if err != nil {
		if errors.Is(err, feed.ErrCommentNotFound) {
			respondJSON(w, http.StatusNotFound, models.CommentResponse{
				Success: false,
				Error:   "comment not found",
			})
			return
		}
		logging.Error().Err(err).Str("comment_id", commentID).Msg("comment lookup failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "comment lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, models.CommentResponse{Success: true, Comment: comment})
}

// WebSocket upgrades the connection and hands it to the hub. Identity
// arrives later, in the auth frame; the upgrade itself is anonymous.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// Health reports liveness plus basic channel stats.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "ok",
		"clients": h.hub.GetClientCount(),
		"posts":   h.hub.Feed().Len(),
	})
}

// checkOrigin applies the configured CORS origins to the upgrade
// request. A lone "*" admits every origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
