package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

func newTestJobService(t *testing.T, store repository.Store) *JobService {
	t.Helper()
	return NewJobService(store, newTestActivityService(store), testLogger())
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestJobCreate_RequiresTitle(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)

	_, err := svc.Create(context.Background(), &model.Job{Title: "   "}, "Admin")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create(blank title) error = %v, want ErrValidation", err)
	}
}

func TestJobCreate_DefaultsStatusAndLogs(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()

	job, err := svc.Create(ctx, &model.Job{Title: "Backend Engineer"}, "Hai Dang")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.Status != model.JobActive {
		t.Errorf("Status = %q, want %q", job.Status, model.JobActive)
	}

	activities, _, _ := newTestActivityService(store).List(ctx, 10, 0)
	if len(activities) != 1 || activities[0].Type != model.ActivityJobCreated {
		t.Fatalf("expected one job_created activity, got %+v", activities)
	}
	if !strings.Contains(activities[0].Description, "Hai Dang") {
		t.Errorf("activity should name the actor: %q", activities[0].Description)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestJobUpdate_MergePatchAndDiff(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()

	job, _ := svc.Create(ctx, &model.Job{Title: "Backend Engineer", Company: "Harbor"}, "")

	newTitle := "Senior Backend Engineer"
	inactive := model.JobInactive
	updated, err := svc.Update(ctx, job.ID, JobPatch{Title: &newTitle, Status: &inactive}, "")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != newTitle || updated.Status != model.JobInactive {
		t.Errorf("patched fields wrong: %+v", updated)
	}
	if updated.Company != "Harbor" {
		t.Errorf("Company = %q, want unchanged %q", updated.Company, "Harbor")
	}
	if updated.ID != job.ID {
		t.Errorf("ID changed on update: %q → %q", job.ID, updated.ID)
	}
	if !updated.UpdatedAt.After(job.UpdatedAt) {
		t.Error("Update() must advance updatedAt")
	}

	// The update activity carries a readable diff of title and status.
	activities, _, _ := newTestActivityService(store).List(ctx, 10, 0)
	if activities[0].Type != model.ActivityJobUpdated {
		t.Fatalf("newest activity = %q, want job_updated", activities[0].Type)
	}
	details, _ := activities[0].Metadata["details"].(string)
	if !strings.Contains(details, "title") || !strings.Contains(details, "status") {
		t.Errorf("diff details = %q, want title and status changes", details)
	}
}

func TestJobUpdate_MissingJob(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)

	title := "x"
	_, err := svc.Update(context.Background(), "nope", JobPatch{Title: &title}, "")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// SAVE / UNSAVE TESTS
// =========================================================================

func TestJobSave_IsIdempotent(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()
	job, _ := svc.Create(ctx, &model.Job{Title: "Backend Engineer"}, "")

	for i := 0; i < 3; i++ {
		var err error
		job, err = svc.Save(ctx, job.ID, "user-1")
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	if len(job.SavedBy) != 1 {
		t.Errorf("SavedBy after 3 saves = %v, want exactly one entry", job.SavedBy)
	}
}

func TestJobUnsave_NoOpWhenNeverSaved(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()
	job, _ := svc.Create(ctx, &model.Job{Title: "Backend Engineer"}, "")

	job, err := svc.Unsave(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Unsave() on unsaved job error = %v", err)
	}
	if len(job.SavedBy) != 0 {
		t.Errorf("SavedBy = %v, want empty", job.SavedBy)
	}
}

func TestJobSaveUnsave_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()
	job, _ := svc.Create(ctx, &model.Job{Title: "Backend Engineer"}, "")

	_, _ = svc.Save(ctx, job.ID, "user-1")
	_, _ = svc.Save(ctx, job.ID, "user-2")
	job, err := svc.Unsave(ctx, job.ID, "user-1")
	if err != nil {
		t.Fatalf("Unsave() error = %v", err)
	}
	if len(job.SavedBy) != 1 || job.SavedBy[0] != "user-2" {
		t.Errorf("SavedBy = %v, want [user-2]", job.SavedBy)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestJobList_SavedByFilter(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()

	a, _ := svc.Create(ctx, &model.Job{Title: "A"}, "")
	_, _ = svc.Create(ctx, &model.Job{Title: "B"}, "")
	_, _ = svc.Save(ctx, a.ID, "user-1")

	saved, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(saved) != 1 || saved[0].Title != "A" {
		t.Errorf("List(savedBy=user-1) = %+v, want only A", saved)
	}

	all, _ := svc.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("List() = %d jobs, want 2", len(all))
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestJobDelete_LogsSnapshot(t *testing.T) {
	store := newTestStore(t)
	svc := newTestJobService(t, store)
	ctx := context.Background()
	job, _ := svc.Create(ctx, &model.Job{Title: "Backend Engineer"}, "")

	if err := svc.Delete(ctx, job.ID, "Hai Dang"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, job.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}

	activities, _, _ := newTestActivityService(store).List(ctx, 10, 0)
	if activities[0].Type != model.ActivityJobDeleted {
		t.Errorf("newest activity = %q, want job_deleted", activities[0].Type)
	}
	if activities[0].Metadata["jobTitle"] != "Backend Engineer" {
		t.Errorf("delete activity should snapshot the title, got %+v", activities[0].Metadata)
	}
}
