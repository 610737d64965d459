package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/service"
)

// UserHandler covers account administration (list, provision, approve,
// remove) and profile self-service.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every account, password hashes stripped.
//
// HTTP: GET /local/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	sanitized := make([]*model.User, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitized())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   sanitized,
	})
}

// HandleGet returns one account by id.
//
// HTTP: GET /local/users/{userId}
// HTTP: GET /local/users/profile/{userId}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Sanitized(),
	})
}

// HandleCreate provisions an account directly, bypassing the approval
// workflow.
//
// HTTP: POST /local/users
// REQUEST BODY: {"name": "...", "email": "...", "password": "...", "role": "recruiter"}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(r, &user); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.users.Create(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    created.Sanitized(),
	})
}

// HandleUpdateBasicInfo applies a profile merge patch. Absent fields keep
// their stored values.
//
// HTTP: PUT /local/users/updateBasicInfo/{userId}
func (h *UserHandler) HandleUpdateBasicInfo(w http.ResponseWriter, r *http.Request) {
	var patch service.BasicInfoUpdate
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateBasicInfo(r.Context(), chi.URLParam(r, "userId"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Sanitized(),
	})
}

// HandleUpdateStatus is the admin approval switch.
//
// HTTP: POST /local/users/update-status
// REQUEST BODY: {"userId": "...", "newStatus": "Active"}
func (h *UserHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string           `json:"userId"`
		NewStatus model.UserStatus `json:"newStatus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateStatus(r.Context(), req.UserID, req.NewStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Sanitized(),
	})
}

// HandleRemove deletes an account.
//
// HTTP: DELETE /local/users/{userId}/remove
func (h *UserHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Remove(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "user removed",
	})
}
