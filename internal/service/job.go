package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// JobService manages postings: CRUD, the per-user saved-jobs set, and the
// audit trail for every mutation.
type JobService struct {
	jobs       repository.JobRepository
	activities *ActivityService
	logger     *slog.Logger
}

func NewJobService(jobs repository.JobRepository, activities *ActivityService, logger *slog.Logger) *JobService {
	return &JobService{jobs: jobs, activities: activities, logger: logger}
}

// List returns all postings, optionally narrowed to those a given user has
// bookmarked.
func (s *JobService) List(ctx context.Context, savedBy string) ([]model.Job, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		s.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	if savedBy == "" {
		return jobs, nil
	}

	filtered := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.SavedByContains(savedBy) {
			filtered = append(filtered, j)
		}
	}
	return filtered, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "job id is required")
	}
	return s.jobs.GetJobByID(ctx, id)
}

func (s *JobService) ListByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	return s.jobs.ListJobsByStatus(ctx, status)
}

// Create stores a new posting and logs it. actorName feeds the audit
// description; it defaults to "Admin" when the dashboard does not send one.
func (s *JobService) Create(ctx context.Context, job *model.Job, actorName string) (*model.Job, error) {
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		return nil, apperror.ValidationFailed("title", "job title is required")
	}
	if job.Status == "" {
		job.Status = model.JobActive
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		s.logger.Error("failed to create job",
			slog.String("title", job.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating job: %w", err)
	}

	actorName = defaultActor(actorName)
	s.activities.Log(ctx, model.ActivityJobCreated,
		fmt.Sprintf("%s created job %q", actorName, job.Title),
		map[string]any{
			"jobId":     job.ID,
			"jobTitle":  job.Title,
			"adminName": actorName,
			"adminRole": "admin",
		})

	s.logger.Info("job created", slog.String("id", job.ID), slog.String("title", job.Title))
	return job, nil
}

// JobPatch is a merge patch for postings. Nil fields keep their stored
// values; the id is immutable.
type JobPatch struct {
	Title              *string          `json:"title"`
	Company            *string          `json:"company"`
	Location           *string          `json:"location"`
	Salary             *string          `json:"salary"`
	Bonus              *float64         `json:"bonus"`
	RewardCandidateUSD *float64         `json:"rewardCandidateUSD"`
	RewardInterviewUSD *float64         `json:"rewardInterviewUSD"`
	Vacancies          *int             `json:"vacancies"`
	Applicants         *int             `json:"applicants"`
	Deadline           *time.Time       `json:"deadline"`
	Status             *model.JobStatus `json:"status"`
	Keywords           *[]string        `json:"keywords"`
	Detail             *model.JobDetail `json:"jobsdetail"`
}

// Update applies a merge patch, logging a best-effort diff of the fields the
// dashboard surfaces (title, status, description).
func (s *JobService) Update(ctx context.Context, id string, patch JobPatch, actorName string) (*model.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldTitle, oldStatus, oldDescription := job.Title, job.Status, job.Detail.Description

	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Company != nil {
		job.Company = *patch.Company
	}
	if patch.Location != nil {
		job.Location = *patch.Location
	}
	if patch.Salary != nil {
		job.Salary = *patch.Salary
	}
	if patch.Bonus != nil {
		job.Bonus = *patch.Bonus
	}
	if patch.RewardCandidateUSD != nil {
		job.RewardCandidateUSD = *patch.RewardCandidateUSD
	}
	if patch.RewardInterviewUSD != nil {
		job.RewardInterviewUSD = *patch.RewardInterviewUSD
	}
	if patch.Vacancies != nil {
		job.Vacancies = *patch.Vacancies
	}
	if patch.Applicants != nil {
		job.Applicants = *patch.Applicants
	}
	if patch.Deadline != nil {
		job.Deadline = patch.Deadline
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.Keywords != nil {
		job.Keywords = *patch.Keywords
	}
	if patch.Detail != nil {
		job.Detail = *patch.Detail
	}

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		s.logger.Error("failed to update job",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating job: %w", err)
	}

	changes := []string{}
	if oldTitle != job.Title {
		changes = append(changes, fmt.Sprintf("title: %q → %q", oldTitle, job.Title))
	}
	if oldStatus != job.Status {
		changes = append(changes, fmt.Sprintf("status: %q → %q", oldStatus, job.Status))
	}
	if oldDescription != job.Detail.Description {
		changes = append(changes, "description updated")
	}
	details := "general update"
	if len(changes) > 0 {
		details = strings.Join(changes, ", ")
	}

	actorName = defaultActor(actorName)
	s.activities.Log(ctx, model.ActivityJobUpdated,
		fmt.Sprintf("%s updated job %q", actorName, job.Title),
		map[string]any{
			"jobId":     job.ID,
			"jobTitle":  job.Title,
			"adminName": actorName,
			"adminRole": "admin",
			"details":   details,
		})

	return job, nil
}

func (s *JobService) Delete(ctx context.Context, id, actorName string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return err
	}

	actorName = defaultActor(actorName)
	s.activities.Log(ctx, model.ActivityJobDeleted,
		fmt.Sprintf("%s deleted job %q", actorName, job.Title),
		map[string]any{
			"jobId":     id,
			"jobTitle":  job.Title,
			"adminName": actorName,
			"adminRole": "admin",
		})

	s.logger.Info("job deleted", slog.String("id", id))
	return nil
}

// Save bookmarks the job for userID. Saving twice is a no-op: SavedBy is a
// set.
func (s *JobService) Save(ctx context.Context, jobID, userID string) (*model.Job, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.SavedByContains(userID) {
		return job, nil
	}

	job.SavedBy = append(job.SavedBy, userID)
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job: %w", err)
	}
	return job, nil
}

// Unsave removes the bookmark. Unsaving a job that was never saved leaves
// it unchanged.
func (s *JobService) Unsave(ctx context.Context, jobID, userID string) (*model.Job, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "userId is required")
	}

	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.SavedByContains(userID) {
		return job, nil
	}

	kept := make([]string, 0, len(job.SavedBy))
	for _, id := range job.SavedBy {
		if id != userID {
			kept = append(kept, id)
		}
	}
	job.SavedBy = kept

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("unsaving job: %w", err)
	}
	return job, nil
}

// Reset truncates every posting. Administrative/test operation.
func (s *JobService) Reset(ctx context.Context) error {
	return s.jobs.ResetJobs(ctx)
}

func defaultActor(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Admin"
	}
	return name
}
