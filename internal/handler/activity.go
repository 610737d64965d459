package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/haidang/referral-hub/internal/service"
)

// ActivityHandler exposes the global audit feed the dashboard polls.
type ActivityHandler struct {
	activities *service.ActivityService
	logger     *slog.Logger
}

func NewActivityHandler(activities *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

// HandleList returns a page of the feed, newest first.
//
// HTTP: GET /api/comments/activities?limit=50&offset=0
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	activities, total, err := h.activities.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"activities": activities,
		"total":      total,
	})
}

// HandleRecord appends a client-submitted feed entry (the dashboard logs a
// few UI-side events through the API).
//
// HTTP: POST /api/comments/activities
// REQUEST BODY: {"type": "...", "description": "...", "metadata": {...}}
func (h *ActivityHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        string                 `json:"type"`
		Description string                 `json:"description"`
		Metadata    map[string]interface{} `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	activity, err := h.activities.Record(r.Context(), req.Type, req.Description, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"activity": activity,
	})
}
