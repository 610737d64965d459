package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
	"github.com/haidang/referral-hub/internal/repository/flatfile"
)

// Shared helpers for the service tests. Services run against a real
// flatfile store in a throwaway directory: cheap, and it exercises the
// same code paths production uses.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	s, err := flatfile.New(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func newTestActivityService(store repository.Store) *ActivityService {
	return NewActivityService(store, testLogger())
}

func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(bcrypt.MinCost)
}

func createTestJob(t *testing.T, store repository.Store, title string) *model.Job {
	t.Helper()
	job := &model.Job{Title: title, Status: model.JobActive}
	if err := store.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

func createTestUser(t *testing.T, store repository.Store, email string, role model.Role, status model.UserStatus) *model.User {
	t.Helper()
	u := &model.User{Name: "Test " + string(role), Email: email, Role: role, Status: status}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}
