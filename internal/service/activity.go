// Package service contains the business logic layer: validation, permission
// checks, workflow rules, and audit logging. Services accept primitives and
// domain types, never HTTP, and return apperror values the handlers map
// to status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// ActivityService owns the global audit feed. Mutating services call Log as
// a side effect; the dashboard polls List for its notification bell.
type ActivityService struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
}

func NewActivityService(repo repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// Log appends an audit entry. It is best-effort: a feed write must never
// fail the mutation it describes, so errors are logged and swallowed.
func (s *ActivityService) Log(ctx context.Context, activityType, description string, metadata map[string]any) {
	activity := &model.Activity{
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		s.logger.Error("failed to append activity",
			slog.String("type", activityType),
			slog.String("error", err.Error()),
		)
	}
}

// Record appends a client-submitted entry (the dashboard logs a few UI-side
// events through the API). Unlike Log it validates and reports failure.
func (s *ActivityService) Record(ctx context.Context, activityType, description string, metadata map[string]any) (*model.Activity, error) {
	activityType = strings.TrimSpace(activityType)
	description = strings.TrimSpace(description)
	if activityType == "" {
		return nil, apperror.ValidationFailed("type", "activity type is required")
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "activity description is required")
	}

	activity := &model.Activity{
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("recording activity: %w", err)
	}
	return activity, nil
}

// List returns a page of the feed (newest first) and the total entry count.
func (s *ActivityService) List(ctx context.Context, limit, offset int) ([]model.Activity, int, error) {
	activities, total, err := s.repo.ListActivities(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list activities", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing activities: %w", err)
	}
	return activities, total, nil
}
