package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/service"
)

// ReferralHandler covers the candidate referral workflow.
type ReferralHandler struct {
	referrals *service.ReferralService
	logger    *slog.Logger
}

func NewReferralHandler(referrals *service.ReferralService, logger *slog.Logger) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, logger: logger}
}

// HandleList returns the requester-visible referrals, filtered and
// paginated. Admins see referrals assigned to them; recruiters see referrals
// they submitted, matched by id or email. Both id and isAdmin must be sent:
// a missing isAdmin is a 400, never a silent fall-through to the recruiter
// view.
//
// HTTP: GET /local/referrals?id=...&email=...&isAdmin=true
//	&status=...&jobId=...&q=...&finalized=true&page=1&limit=50
func (h *ReferralHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	requesterID := qs.Get("id")
	if requesterID == "" {
		// Older dashboard builds sent userId.
		requesterID = qs.Get("userId")
	}
	if requesterID == "" || !qs.Has("isAdmin") {
		writeError(w, apperror.ValidationFailed("id", "id & isAdmin are required"))
		return
	}

	query := service.ListQuery{
		RequesterID: requesterID,
		Email:       qs.Get("email"),
		IsAdmin:     qs.Get("isAdmin") == "true",
		Status:      model.ReferralStatus(qs.Get("status")),
		JobID:       qs.Get("jobId"),
		Q:           qs.Get("q"),
	}
	if v := qs.Get("finalized"); v != "" {
		b := v == "true"
		query.Finalized = &b
	}
	if v := qs.Get("page"); v != "" {
		query.Page, _ = strconv.Atoi(v)
	}
	if v := qs.Get("limit"); v != "" {
		query.Limit, _ = strconv.Atoi(v)
	}

	result, err := h.referrals.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCreate submits a new referral. The request field names are the
// dashboard's submission form (jobId/recruiterId/email/phone), not the stored
// record's (job/recruiter/candidateEmail/candidatePhone).
//
// HTTP: POST /local/referrals
// REQUEST BODY: {"jobId": "...", "recruiterId": "...", "candidateName": "...",
//	"email": "...", "phone": "...", "cvUrl": "...", ...}
func (h *ReferralHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID         string  `json:"jobId"`
		RecruiterID   string  `json:"recruiterId"`
		AdminID       string  `json:"adminId"`
		CandidateName string  `json:"candidateName"`
		Email         string  `json:"email"`
		Phone         string  `json:"phone"`
		CVURL         string  `json:"cvUrl"`
		LinkedIn      string  `json:"linkedin"`
		Portfolio     string  `json:"portfolio"`
		Suitability   string  `json:"suitability"`
		Bonus         float64 `json:"bonus"`
		Message       string  `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.referrals.Create(r.Context(), &model.Referral{
		Job:            req.JobID,
		Recruiter:      req.RecruiterID,
		Admin:          req.AdminID,
		CandidateName:  req.CandidateName,
		CandidateEmail: req.Email,
		CandidatePhone: req.Phone,
		CVURL:          req.CVURL,
		LinkedIn:       req.LinkedIn,
		Portfolio:      req.Portfolio,
		Suitability:    req.Suitability,
		Bonus:          req.Bonus,
		Message:        req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"referral": created,
	})
}

// HandleUpdate applies a merge patch. Status changes must follow the
// referral workflow; an out-of-order transition is a validation error.
//
// HTTP: PUT /local/referrals/update/{referralId}
func (h *ReferralHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch service.ReferralPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	ref, err := h.referrals.Update(r.Context(), chi.URLParam(r, "referralId"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"referral": ref,
	})
}

// HandleDelete removes a referral.
//
// HTTP: DELETE /local/referrals/{referralId}/remove
func (h *ReferralHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.referrals.Delete(r.Context(), chi.URLParam(r, "referralId")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "referral removed",
	})
}

// HandleReset truncates every referral (development helper).
//
// HTTP: GET /local/referrals/reset
func (h *ReferralHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.referrals.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "referrals reset",
	})
}
