package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haidang/referral-hub/internal/authz"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/service"
)

// CommentHandler covers the discussion threads on job postings.
//
// These endpoints trust the actor identity the dashboard sends in the
// request body (userId/userRole), matching the pre-auth wire format the
// frontend already speaks. Ownership and role checks still run server-side
// against those fields.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func actorFrom(userID, role string) authz.Actor {
	return authz.Actor{ID: userID, Role: model.Role(role)}
}

// HandleList returns a job's comments, newest first.
//
// HTTP: GET /api/comments/comments/{jobId}
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"comments": comments,
	})
}

// HandleAdd prepends a comment to the job's thread.
//
// HTTP: POST /api/comments/comments/{jobId}
// REQUEST BODY: {"text": "...", "author": "...", "authorRole": "...", "userId": "..."}
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req service.NewComment
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), chi.URLParam(r, "jobId"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"comment": comment,
	})
}

// HandleEdit replaces a comment's text. Owner or admin only.
//
// HTTP: PUT /api/comments/comments/{jobId}/{commentId}
// REQUEST BODY: {"text": "...", "userId": "...", "userRole": "..."}
func (h *CommentHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		UserID   string `json:"userId"`
		UserRole string `json:"userRole"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Edit(r.Context(),
		chi.URLParam(r, "jobId"), chi.URLParam(r, "commentId"),
		req.Text, actorFrom(req.UserID, req.UserRole))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"comment": comment,
	})
}

// HandleDelete removes a comment and its replies. Owner or admin only.
//
// HTTP: DELETE /api/comments/comments/{jobId}/{commentId}
// REQUEST BODY: {"userId": "...", "userRole": "..."}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		UserRole string `json:"userRole"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := h.comments.Delete(r.Context(),
		chi.URLParam(r, "jobId"), chi.URLParam(r, "commentId"),
		actorFrom(req.UserID, req.UserRole))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "comment deleted",
	})
}

// HandleAddReply appends a reply under a comment. Admin only.
//
// HTTP: POST /api/comments/comments/{jobId}/{commentId}/replies
// REQUEST BODY: {"text": "...", "author": "...", "authorRole": "admin", "userId": "..."}
func (h *CommentHandler) HandleAddReply(w http.ResponseWriter, r *http.Request) {
	var req service.NewComment
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reply, err := h.comments.AddReply(r.Context(),
		chi.URLParam(r, "jobId"), chi.URLParam(r, "commentId"),
		req, actorFrom(req.UserID, req.AuthorRole))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"reply":   reply,
	})
}

// HandleDeleteReply removes a reply. Owner or admin only.
//
// HTTP: DELETE /api/comments/comments/{jobId}/{commentId}/replies/{replyId}
// REQUEST BODY: {"userId": "...", "userRole": "..."}
func (h *CommentHandler) HandleDeleteReply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		UserRole string `json:"userRole"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := h.comments.DeleteReply(r.Context(),
		chi.URLParam(r, "jobId"), chi.URLParam(r, "commentId"), chi.URLParam(r, "replyId"),
		actorFrom(req.UserID, req.UserRole))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "reply deleted",
	})
}
