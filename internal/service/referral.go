package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// ReferralService manages the candidate referral workflow: creation,
// visibility-scoped listing, status transitions and the audit trail.
type ReferralService struct {
	referrals  repository.ReferralRepository
	jobs       repository.JobRepository
	users      repository.UserRepository
	activities *ActivityService
	logger     *slog.Logger
}

func NewReferralService(
	referrals repository.ReferralRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	activities *ActivityService,
	logger *slog.Logger,
) *ReferralService {
	return &ReferralService{
		referrals:  referrals,
		jobs:       jobs,
		users:      users,
		activities: activities,
		logger:     logger,
	}
}

// Create validates and stores a new referral. The referenced job must exist;
// the reviewing admin is resolved automatically when the caller does not name
// one.
func (s *ReferralService) Create(ctx context.Context, ref *model.Referral) (*model.Referral, error) {
	ref.Job = strings.TrimSpace(ref.Job)
	ref.Recruiter = strings.TrimSpace(ref.Recruiter)
	ref.CandidateName = strings.TrimSpace(ref.CandidateName)

	switch {
	case ref.Job == "":
		return nil, apperror.ValidationFailed("jobId", "jobId is required")
	case ref.Recruiter == "":
		return nil, apperror.ValidationFailed("recruiterId", "recruiterId is required")
	case ref.CandidateName == "":
		return nil, apperror.ValidationFailed("candidateName", "candidateName is required")
	}

	job, err := s.jobs.GetJobByID(ctx, ref.Job)
	if err != nil {
		return nil, err
	}

	if ref.Admin == "" {
		ref.Admin = s.resolveAdmin(ctx)
	}
	if ref.Status == "" {
		ref.Status = model.ReferralSubmitted
	}
	if !model.ValidReferralStatus(ref.Status) {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown referral status %q", ref.Status))
	}

	if err := s.referrals.CreateReferral(ctx, ref); err != nil {
		s.logger.Error("failed to create referral",
			slog.String("jobId", ref.Job),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating referral: %w", err)
	}

	s.activities.Log(ctx, model.ActivityReferralCreated,
		fmt.Sprintf("New referral for %q: %s", job.Title, ref.CandidateName),
		map[string]any{
			"referralId":    ref.ID,
			"jobId":         job.ID,
			"jobTitle":      job.Title,
			"candidateName": ref.CandidateName,
			"recruiterId":   ref.Recruiter,
		})

	s.logger.Info("referral created",
		slog.String("id", ref.ID),
		slog.String("jobId", ref.Job),
	)
	return ref, nil
}

// resolveAdmin picks the first admin user as the default reviewer. When the
// user store has none it falls back to the literal "admin", matching seeded
// environments.
func (s *ReferralService) resolveAdmin(ctx context.Context) string {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Warn("could not resolve default admin", slog.String("error", err.Error()))
		return "admin"
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			return u.ID
		}
	}
	return "admin"
}

// ListQuery scopes and filters a referral listing. Visibility is derived
// from the requester: admins see referrals assigned to them, recruiters see
// referrals they submitted (matched by id or by their email,
// case-insensitively).
type ListQuery struct {
	RequesterID string
	Email       string
	IsAdmin     bool

	Status    model.ReferralStatus
	JobID     string
	Q         string
	Finalized *bool

	Page  int
	Limit int
}

// ListResult is one page of referrals plus the total match count before
// pagination.
type ListResult struct {
	Items []model.Referral `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// List returns the requester-visible referrals, filtered, newest-first,
// paginated.
func (s *ReferralService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 50
	}

	all, err := s.referrals.ListReferrals(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing referrals: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(q.Email))
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	matched := make([]model.Referral, 0, len(all))
	for _, r := range all {
		if !s.visible(r, q, email) {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.JobID != "" && r.Job != q.JobID {
			continue
		}
		if q.Finalized != nil && r.Finalized != *q.Finalized {
			continue
		}
		if needle != "" && !matchesQuery(r, needle) {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return &ListResult{
		Items: matched[start:end],
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	}, nil
}

func (s *ReferralService) visible(r model.Referral, q ListQuery, email string) bool {
	if q.IsAdmin {
		return r.Admin == q.RequesterID
	}
	if r.Recruiter == q.RequesterID {
		return true
	}
	return email != "" && strings.ToLower(r.Recruiter) == email
}

func matchesQuery(r model.Referral, needle string) bool {
	return strings.Contains(strings.ToLower(r.CandidateName), needle) ||
		strings.Contains(strings.ToLower(r.CandidateEmail), needle)
}

func (s *ReferralService) Get(ctx context.Context, id string) (*model.Referral, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "referral id is required")
	}
	return s.referrals.GetReferralByID(ctx, id)
}

// ReferralPatch is a merge patch; nil fields keep their stored values.
type ReferralPatch struct {
	CandidateName  *string               `json:"candidateName"`
	CandidateEmail *string               `json:"candidateEmail"`
	CandidatePhone *string               `json:"candidatePhone"`
	CVURL          *string               `json:"cvUrl"`
	LinkedIn       *string               `json:"linkedin"`
	Portfolio      *string               `json:"portfolio"`
	Suitability    *string               `json:"suitability"`
	Bonus          *float64              `json:"bonus"`
	Message        *string               `json:"message"`
	Status         *model.ReferralStatus `json:"status"`
	Finalized      *bool                 `json:"finalized"`
}

// Update applies a merge patch. Status changes must follow the workflow:
// submitted → under_review → interviewing → offer → hired/rejected, and
// hired → onboard. Writing the current status back is always allowed.
func (s *ReferralService) Update(ctx context.Context, id string, patch ReferralPatch) (*model.Referral, error) {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus, oldSuitability := ref.Status, ref.Suitability

	if patch.Status != nil {
		next := *patch.Status
		if !model.ValidReferralStatus(next) {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown referral status %q", next))
		}
		if !ref.Status.CanTransitionTo(next) {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("cannot move referral from %q to %q", ref.Status, next))
		}
		ref.Status = next
	}
	if patch.CandidateName != nil {
		ref.CandidateName = *patch.CandidateName
	}
	if patch.CandidateEmail != nil {
		ref.CandidateEmail = *patch.CandidateEmail
	}
	if patch.CandidatePhone != nil {
		ref.CandidatePhone = *patch.CandidatePhone
	}
	if patch.CVURL != nil {
		ref.CVURL = *patch.CVURL
	}
	if patch.LinkedIn != nil {
		ref.LinkedIn = *patch.LinkedIn
	}
	if patch.Suitability != nil {
		ref.Suitability = *patch.Suitability
	}
	if patch.Portfolio != nil {
		ref.Portfolio = *patch.Portfolio
	}
	if patch.Bonus != nil {
		ref.Bonus = *patch.Bonus
	}
	if patch.Message != nil {
		ref.Message = *patch.Message
	}
	if patch.Finalized != nil {
		ref.Finalized = *patch.Finalized
	}

	if err := s.referrals.UpdateReferral(ctx, ref); err != nil {
		s.logger.Error("failed to update referral",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating referral: %w", err)
	}

	changes := []string{}
	if oldStatus != ref.Status {
		changes = append(changes, fmt.Sprintf("status: %q → %q", oldStatus, ref.Status))
	}
	if oldSuitability != ref.Suitability {
		changes = append(changes, "suitability updated")
	}
	if len(changes) > 0 {
		s.activities.Log(ctx, model.ActivityReferralUpdated,
			fmt.Sprintf("Referral for %s updated: %s", ref.CandidateName, strings.Join(changes, ", ")),
			map[string]any{
				"referralId":    ref.ID,
				"jobId":         ref.Job,
				"candidateName": ref.CandidateName,
				"status":        string(ref.Status),
			})
	}

	return ref, nil
}

// Delete removes the referral, logging a snapshot of the candidate first so
// the feed keeps a readable record.
func (s *ReferralService) Delete(ctx context.Context, id string) error {
	ref, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.referrals.DeleteReferral(ctx, id); err != nil {
		return err
	}

	s.activities.Log(ctx, model.ActivityReferralDeleted,
		fmt.Sprintf("Referral for %s removed", ref.CandidateName),
		map[string]any{
			"referralId":    id,
			"jobId":         ref.Job,
			"candidateName": ref.CandidateName,
			"status":        string(ref.Status),
		})

	s.logger.Info("referral deleted", slog.String("id", id))
	return nil
}

// Reset truncates all referrals. Administrative/test operation.
func (s *ReferralService) Reset(ctx context.Context) error {
	return s.referrals.ResetReferrals(ctx)
}
