package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/service"
)

// JobHandler covers posting CRUD, the status filter, and the per-user
// saved-jobs set.
type JobHandler struct {
	jobs   *service.JobService
	logger *slog.Logger
}

func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// HandleList returns all postings, or only those the given user bookmarked.
//
// HTTP: GET /local/jobs
// HTTP: GET /local/jobs?savedBy={userId}
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context(), r.URL.Query().Get("savedBy"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    jobs,
	})
}

// HandleGet returns one posting.
//
// HTTP: GET /local/job/{jobId}
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}

// HandleListByStatus filters postings by status ("Active" or "Inactive").
//
// HTTP: GET /local/jobs/status/{status}
func (h *JobHandler) HandleListByStatus(w http.ResponseWriter, r *http.Request) {
	status := model.JobStatus(chi.URLParam(r, "status"))
	jobs, err := h.jobs.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    jobs,
	})
}

// HandleCreate stores a new posting. adminName feeds the audit feed entry.
//
// HTTP: POST /local/jobs
// REQUEST BODY: a job record plus optional {"adminName": "..."}
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		model.Job
		AdminName string `json:"adminName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), &req.Job, req.AdminName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "job created",
		"job":     job,
	})
}

// HandleUpdate applies a merge patch to a posting.
//
// HTTP: PUT /local/jobs/update/{jobId}
func (h *JobHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.JobPatch
		AdminName string `json:"adminName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Update(r.Context(), chi.URLParam(r, "jobId"), req.JobPatch, req.AdminName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "job updated",
		"job":     job,
	})
}

// HandleDelete removes a posting.
//
// HTTP: DELETE /local/jobs/{jobId}/remove
func (h *JobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	adminName := r.URL.Query().Get("adminName")
	if err := h.jobs.Delete(r.Context(), chi.URLParam(r, "jobId"), adminName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "job removed",
	})
}

// HandleSave bookmarks the posting for a user. Idempotent.
//
// HTTP: PUT /local/jobs/{jobId}/save
// REQUEST BODY: {"userId": "..."}
func (h *JobHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Save(r.Context(), chi.URLParam(r, "jobId"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"savedBy": job.SavedBy,
	})
}

// HandleUnsave removes the bookmark. A no-op when the job was never saved.
//
// HTTP: PUT /local/jobs/{jobId}/unsave
// REQUEST BODY: {"userId": "..."}
func (h *JobHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	job, err := h.jobs.Unsave(r.Context(), chi.URLParam(r, "jobId"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"savedBy": job.SavedBy,
	})
}

// HandleReset truncates every posting (development helper).
//
// HTTP: GET /local/jobs/reset
func (h *JobHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "jobs reset",
	})
}
