package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scolombo/beautydesk/internal/channel"
	"github.com/scolombo/beautydesk/internal/history"
	"github.com/scolombo/beautydesk/internal/notify"
)

// Engine is the slice of the notification engine the API needs.
type Engine interface {
	Notify(ctx context.Context, req notify.Request) (string, error)
	Active() []*notify.Notification
	Remove(id string)
	Preferences() notify.Preferences
	UpdatePreferences(ctx context.Context, patch notify.PreferencesPatch) error
	EnableSound()
	DisableSound()
	SoundEnabled() bool
	Stats() notify.Stats
}

// HistoryReader serves the delivery journal. Nil when no database is
// configured.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// NotifyResponse is returned after posting a notification. The id is
// returned whether the notification was queued or suppressed; the
// engine contract is fire and forget.
type NotifyResponse struct {
	ID string `json:"id"`
}

// ErrorResponse represents an error in problem+json format.
type ErrorResponse struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Handler holds dependencies for API handlers.
type Handler struct {
	logger  *zap.Logger
	engine  Engine
	hub     *channel.ToastHub // nil disables the SSE stream
	journal HistoryReader     // nil disables /v1/history
	breaker *channel.Breaker  // nil omits breaker stats
}

// NewHandler creates a new API handler.
func NewHandler(logger *zap.Logger, engine Engine) *Handler {
	return &Handler{logger: logger, engine: engine}
}

// WithToastHub wires the SSE toast stream.
func (h *Handler) WithToastHub(hub *channel.ToastHub) *Handler {
	h.hub = hub
	return h
}

// WithHistory wires the delivery journal endpoint.
func (h *Handler) WithHistory(journal HistoryReader) *Handler {
	h.journal = journal
	return h
}

// WithBreaker includes push breaker stats in /v1/stats.
func (h *Handler) WithBreaker(b *channel.Breaker) *Handler {
	h.breaker = b
	return h
}

// CreateNotification handles POST /v1/notifications.
func (h *Handler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req notify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	id, err := h.engine.Notify(r.Context(), req)
	if err != nil {
		if errors.Is(err, notify.ErrEmptyContent) {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing required fields", "title and message are required")
			return
		}
		h.logger.Error("notify failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal_error", "Failed to accept notification", "")
		return
	}

	h.writeJSON(w, http.StatusAccepted, NotifyResponse{ID: id})
}

// ListActive handles GET /v1/notifications/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	active := h.engine.Active()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  active,
		"count": len(active),
	})
}

// RemoveNotification handles DELETE /v1/notifications/{id}. Removal is
// idempotent: deleting an unknown or already-removed id succeeds.
func (h *Handler) RemoveNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Missing notification ID", "")
		return
	}

	h.engine.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /v1/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Preferences())
}

// UpdatePreferences handles PATCH /v1/preferences.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch notify.PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if err := h.engine.UpdatePreferences(r.Context(), patch); err != nil {
		// In-memory state is already updated; only persistence failed.
		h.logger.Warn("preference update not persisted", zap.Error(err))
	}

	h.writeJSON(w, http.StatusOK, h.engine.Preferences())
}

// soundRequest is the body for PUT /v1/sound.
type soundRequest struct {
	Enabled bool `json:"enabled"`
}

// SetSound handles PUT /v1/sound, the runtime-only sound toggle.
func (h *Handler) SetSound(w http.ResponseWriter, r *http.Request) {
	var req soundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body", err.Error())
		return
	}

	if req.Enabled {
		h.engine.EnableSound()
	} else {
		h.engine.DisableSound()
	}

	h.writeJSON(w, http.StatusOK, soundRequest{Enabled: h.engine.SoundEnabled()})
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()

	resp := map[string]interface{}{
		"active_count":    stats.ActiveCount,
		"queue_size":      stats.QueueSize,
		"total_processed": stats.TotalProcessed,
	}
	if h.breaker != nil {
		resp["push_breaker"] = h.breaker.Stats()
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles GET /v1/history?limit=50.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeError(w, http.StatusNotFound, "not_found", "Delivery history is not configured", "")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read delivery history", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "database_error", "Failed to read delivery history", "")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  entries,
		"count": len(entries),
	})
}

// StreamToasts handles GET /v1/stream: an SSE stream of toasts for the
// connected dashboard session. Connected sessions also mark the app as
// foregrounded, which suppresses the push channel.
func (h *Handler) StreamToasts(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		h.writeError(w, http.StatusNotFound, "not_found", "Toast stream is not configured", "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming is not supported", "")
		return
	}

	toasts, cancel := h.hub.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case t, open := <-toasts:
			if !open {
				return
			}
			payload, err := json.Marshal(t)
			if err != nil {
				h.logger.Error("failed to marshal toast", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
