package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/service"
)

// AuthHandler covers registration, credential login, the Google OAuth flow,
// password reset, and the approval-status poll.
type AuthHandler struct {
	auths  *service.AuthService
	google *auth.GoogleProvider // nil when Google sign-in is not configured
	logger *slog.Logger
}

func NewAuthHandler(auths *service.AuthService, google *auth.GoogleProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auths: auths, google: google, logger: logger}
}

// HandleRegister creates a Pending recruiter account.
//
// HTTP: POST /local/register
// REQUEST BODY: {"name": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auths.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "registration received, waiting for admin approval",
		"user":    user.Sanitized(),
	})
}

// HandleLogin verifies credentials and returns the account plus a JWT.
//
// HTTP: POST /local/login
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user.Sanitized(),
		"token":   token,
	})
}

// HandleResetPassword replaces the password of the account matching email.
//
// HTTP: POST /local/users/reset
// REQUEST BODY: {"email": "...", "newPassword": "..."}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auths.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleUserStatus returns the approval state of an account, plus a token
// once it is Active. The dashboard polls this after a Google sign-in.
//
// HTTP: GET /local/user-status?email=...
func (h *AuthHandler) HandleUserStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, apperror.ValidationFailed("email", "email query parameter is required"))
		return
	}

	user, token, err := h.auths.Status(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"status": user.Status,
		"user":   user.Sanitized(),
	}
	if token != "" {
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGoogleLogin starts the Google OAuth flow.
//
// HTTP: GET /auth/google/login
//
// A random state value goes into a short-lived HttpOnly cookie; the callback
// verifies it to rule out CSRF-initiated flows.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow: verifies state, exchanges
// the code for a Google profile, and signs the account in (registering it as
// Pending on first contact).
//
// HTTP: GET /auth/google/callback?state=...&code=...
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, apperror.Unauthorized("oauth state mismatch"))
		return
	}
	// One-shot cookie: clear it whether or not the exchange succeeds.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "authorization code is required"))
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google code exchange failed", slog.String("error", err.Error()))
		writeError(w, apperror.Unauthorized("google sign-in failed"))
		return
	}

	user, token, err := h.auths.LoginWithGoogle(r.Context(), gu)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"user":    user.Sanitized(),
		"pending": user.Status != model.UserActive,
	}
	if token != "" {
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}
