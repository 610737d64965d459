package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// newTestDB creates a fresh in-memory database per test; fast, isolated,
// destroyed when the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test User", Email: email, Role: model.RoleRecruiter, Status: model.UserActive}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func createTestJob(t *testing.T, db *DB, title string) *model.Job {
	t.Helper()
	job := &model.Job{Title: title, Status: model.JobActive}
	if err := db.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

// =========================================================================
// USER TESTS
// =========================================================================

func TestCreateUser_AssignsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)

	u := createTestUser(t, db, "a@example.com")
	if u.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com")

	// The email column collates NOCASE, so a case-variant is still a dup.
	u := &model.User{Name: "Other", Email: "DUP@example.com", Role: model.RoleRecruiter, Status: model.UserPending}
	err := db.CreateUser(context.Background(), u)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser(duplicate email) error = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "Riley@Example.COM")

	found, err := db.GetUserByEmail(context.Background(), "riley@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != u.ID {
		t.Errorf("GetUserByEmail() returned id %q, want %q", found.ID, u.ID)
	}
}

func TestUpdateUser_RoundTripsBankInfo(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "bank@example.com")

	u.BankInfo = &model.BankInfo{BankName: "VCB", AccountName: "RILEY", AccountNumber: "00123"}
	if err := db.UpdateUser(context.Background(), u); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}

	found, _ := db.GetUserByID(context.Background(), u.ID)
	if found.BankInfo == nil || found.BankInfo.AccountNumber != "00123" {
		t.Errorf("bank info did not round-trip: %+v", found.BankInfo)
	}
}

func TestDeleteUser_MissingIsNotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.DeleteUser(context.Background(), "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser(missing) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// JOB TESTS
// =========================================================================

func TestJobRoundTrip_JSONColumns(t *testing.T) {
	db := newTestDB(t)

	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	job := &model.Job{
		Title:    "Backend Engineer",
		Status:   model.JobActive,
		Keywords: []string{"go", "sql"},
		Deadline: &deadline,
		Detail:   model.JobDetail{Description: "Own the API."},
		SavedBy:  []string{"u1", "u2"},
		Comments: []model.Comment{{ID: "c1", Text: "nice", UserID: "u1", Replies: []model.Reply{{ID: "r1", Text: "thanks", UserID: "admin"}}}},
	}
	if err := db.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	found, err := db.GetJobByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetJobByID() error = %v", err)
	}
	if len(found.Keywords) != 2 || found.Keywords[0] != "go" {
		t.Errorf("keywords did not round-trip: %+v", found.Keywords)
	}
	if found.Deadline == nil || !found.Deadline.Equal(deadline) {
		t.Errorf("deadline did not round-trip: %v", found.Deadline)
	}
	if len(found.Comments) != 1 || len(found.Comments[0].Replies) != 1 {
		t.Errorf("comment thread did not round-trip: %+v", found.Comments)
	}
	if found.Detail.Description != "Own the API." {
		t.Errorf("detail did not round-trip: %+v", found.Detail)
	}
}

func TestListJobsByStatus(t *testing.T) {
	db := newTestDB(t)
	createTestJob(t, db, "Active one")
	inactive := &model.Job{Title: "Inactive one", Status: model.JobInactive}
	if err := db.CreateJob(context.Background(), inactive); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	active, err := db.ListJobsByStatus(context.Background(), model.JobActive)
	if err != nil {
		t.Fatalf("ListJobsByStatus() error = %v", err)
	}
	if len(active) != 1 || active[0].Title != "Active one" {
		t.Errorf("ListJobsByStatus(Active) = %+v, want only the active job", active)
	}
}

func TestResetJobs(t *testing.T) {
	db := newTestDB(t)
	createTestJob(t, db, "One")
	createTestJob(t, db, "Two")

	if err := db.ResetJobs(context.Background()); err != nil {
		t.Fatalf("ResetJobs() error = %v", err)
	}
	jobs, _ := db.ListJobs(context.Background())
	if len(jobs) != 0 {
		t.Errorf("ListJobs() after reset = %d, want 0", len(jobs))
	}
}

// =========================================================================
// REFERRAL TESTS
// =========================================================================

func TestReferralRoundTrip(t *testing.T) {
	db := newTestDB(t)

	ref := &model.Referral{
		Recruiter:     "rec1",
		Admin:         "adm1",
		Job:           "job1",
		CandidateName: "Casey Pham",
		Status:        model.ReferralSubmitted,
	}
	if err := db.CreateReferral(context.Background(), ref); err != nil {
		t.Fatalf("CreateReferral() error = %v", err)
	}

	found, err := db.GetReferralByID(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("GetReferralByID() error = %v", err)
	}
	if found.CandidateName != "Casey Pham" || found.Status != model.ReferralSubmitted {
		t.Errorf("referral did not round-trip: %+v", found)
	}
}

func TestListReferrals_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	for _, name := range []string{"first", "second"} {
		ref := &model.Referral{Recruiter: "r", Admin: "a", Job: "j", CandidateName: name, Status: model.ReferralSubmitted}
		if err := db.CreateReferral(context.Background(), ref); err != nil {
			t.Fatalf("CreateReferral() error = %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at
	}

	refs, err := db.ListReferrals(context.Background())
	if err != nil {
		t.Fatalf("ListReferrals() error = %v", err)
	}
	if len(refs) != 2 || refs[0].CandidateName != "second" {
		t.Errorf("ListReferrals() order wrong: %+v", refs)
	}
}

// =========================================================================
// ACTIVITY TESTS
// =========================================================================

func TestAppendActivity_TrimsToCapAtomically(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < model.ActivityLogCap+10; i++ {
		if err := db.AppendActivity(ctx, &model.Activity{Type: "comment", Description: "entry"}); err != nil {
			t.Fatalf("AppendActivity() error = %v", err)
		}
	}

	_, total, err := db.ListActivities(ctx, repository.ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if total != model.ActivityLogCap {
		t.Errorf("total after overflow = %d, want %d", total, model.ActivityLogCap)
	}
}

func TestListActivities_NewestFirstWithMetadata(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_ = db.AppendActivity(ctx, &model.Activity{Type: "job_created", Description: "old", Metadata: map[string]any{"jobId": "j1"}})
	_ = db.AppendActivity(ctx, &model.Activity{Type: "job_updated", Description: "new"})

	page, total, err := db.ListActivities(ctx, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if total != 2 || len(page) != 2 {
		t.Fatalf("got total=%d len=%d, want 2/2", total, len(page))
	}
	if page[0].Description != "new" {
		t.Errorf("newest entry = %q, want %q", page[0].Description, "new")
	}
	if page[1].Metadata["jobId"] != "j1" {
		t.Errorf("metadata did not round-trip: %+v", page[1].Metadata)
	}
}

// =========================================================================
// MESSAGING TESTS
// =========================================================================

func TestMessaging_UpsertMarkReadAndCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	conv := &model.Conversation{ID: "a:b", Participants: []string{"a", "b"}, LastMessage: "hi", LastMessageAt: time.Now().UTC()}
	if err := db.UpsertConversation(ctx, conv); err != nil {
		t.Fatalf("UpsertConversation() error = %v", err)
	}

	msg := &model.Message{ConversationID: "a:b", SenderID: "a", RecipientID: "b", Content: "hi"}
	if err := db.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	// Upsert refreshes the summary without duplicating the row.
	conv.LastMessage = "hello again"
	if err := db.UpsertConversation(ctx, conv); err != nil {
		t.Fatalf("UpsertConversation() second error = %v", err)
	}
	convs, err := db.ListConversationsByUser(ctx, "a")
	if err != nil {
		t.Fatalf("ListConversationsByUser() error = %v", err)
	}
	if len(convs) != 1 || convs[0].LastMessage != "hello again" {
		t.Errorf("conversation upsert wrong: %+v", convs)
	}

	count, _ := db.CountUnreadMessages(ctx, "b")
	if count != 1 {
		t.Errorf("unread for b = %d, want 1", count)
	}

	updated, err := db.MarkConversationRead(ctx, "a:b", "b")
	if err != nil {
		t.Fatalf("MarkConversationRead() error = %v", err)
	}
	if updated != 1 {
		t.Errorf("MarkConversationRead() = %d, want 1", updated)
	}

	// Deleting the conversation cascades to its messages via the FK.
	if err := db.DeleteConversation(ctx, "a:b"); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	msgs, err := db.ListMessagesByConversation(ctx, "a:b")
	if err != nil {
		t.Fatalf("ListMessagesByConversation() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages after cascade = %d, want 0", len(msgs))
	}
}
