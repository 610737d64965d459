package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/service"
)

// MessagingHandler covers the authenticated messaging panel: conversations,
// messages, unread counts, and the notification bell. Every endpoint runs
// behind RequireAuth; the acting user comes from the JWT, never the body.
type MessagingHandler struct {
	messaging *service.MessagingService
	logger    *slog.Logger
}

func NewMessagingHandler(messaging *service.MessagingService, logger *slog.Logger) *MessagingHandler {
	return &MessagingHandler{messaging: messaging, logger: logger}
}

// identity pulls the authenticated identity out of the request context.
// RequireAuth guarantees it is present on these routes.
func identity(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperror.Unauthorized("authentication required")
	}
	return id, nil
}

// HandleConversations lists the caller's threads, newest activity first.
//
// HTTP: GET /api/messaging/conversations
func (h *MessagingHandler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	convs, err := h.messaging.Conversations(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"conversations": convs,
	})
}

// HandleMessages returns a conversation's messages, oldest first.
//
// HTTP: GET /api/messaging/conversations/{conversationId}
func (h *MessagingHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	msgs, err := h.messaging.Messages(r.Context(), chi.URLParam(r, "conversationId"), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": msgs,
	})
}

// HandleSend delivers a message, creating the conversation on first contact.
//
// HTTP: POST /api/messaging/send-message
// REQUEST BODY: {"recipientId": "...", "content": "..."}
func (h *MessagingHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		RecipientID string `json:"recipientId"`
		Content     string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.messaging.Send(r.Context(), id.ID, req.RecipientID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": msg,
	})
}

// HandleMarkRead marks the given message's conversation read for the caller
// and reports how many messages flipped.
//
// HTTP: PUT /api/messaging/messages/read/{messageId}
func (h *MessagingHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.messaging.MarkRead(r.Context(), chi.URLParam(r, "messageId"), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}

// HandleUnreadCount returns how many unread messages await the caller.
//
// HTTP: GET /api/messaging/unread-count
func (h *MessagingHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.messaging.UnreadCount(r.Context(), id.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"unreadCount": count})
}

// HandleNotifications returns the bell feed, derived from recent activity.
//
// HTTP: GET /api/messaging/notifications?limit=20
func (h *MessagingHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if _, err := identity(r); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notes, err := h.messaging.Notifications(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"notifications": notes,
	})
}

// HandleNotificationRead acknowledges a notification. Entries are derived
// from the activity feed rather than stored per-user, so there is nothing to
// persist: the dashboard tracks read state locally and this endpoint just
// confirms receipt.
//
// HTTP: PUT /api/messaging/notifications/{notificationId}/read
func (h *MessagingHandler) HandleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, err := identity(r); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      chi.URLParam(r, "notificationId"),
	})
}

// HandleDeleteConversation removes a thread and its messages.
//
// HTTP: DELETE /api/messaging/conversations/{conversationId}
func (h *MessagingHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.messaging.DeleteConversation(r.Context(), chi.URLParam(r, "conversationId"), id.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "conversation deleted",
	})
}
