package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// Seeder populates an empty store with demo accounts and postings so a fresh
// checkout has something to click on. It never touches a store that already
// holds users.
type Seeder struct {
	store     repository.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewSeeder(store repository.Store, passwords *auth.PasswordService, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, passwords: passwords, logger: logger}
}

// Run seeds demo data when the user store is empty.
func (s *Seeder) Run(ctx context.Context) error {
	existing, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("store already populated, skipping seed", slog.Int("users", len(existing)))
		return nil
	}

	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	if err := s.seedJobs(ctx); err != nil {
		return err
	}

	s.logger.Info("seeded demo data")
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	accounts := []struct {
		name     string
		email    string
		password string
		role     model.Role
	}{
		{"Admin", "admin@referralhub.dev", "admin123", model.RoleAdmin},
		{"Riley Tran", "recruiter@referralhub.dev", "123456", model.RoleRecruiter},
		{"Casey Pham", "candidate@referralhub.dev", "123456", model.RoleCandidate},
	}

	for _, a := range accounts {
		hash, err := s.passwords.Hash(a.password)
		if err != nil {
			return fmt.Errorf("hashing seed password: %w", err)
		}
		u := &model.User{
			Name:     a.name,
			Email:    a.email,
			Password: hash,
			Role:     a.role,
			Status:   model.UserActive,
		}
		if err := s.store.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seeding user %s: %w", a.email, err)
		}
	}
	return nil
}

func (s *Seeder) seedJobs(ctx context.Context) error {
	deadline := time.Now().UTC().AddDate(0, 1, 0)

	jobs := []*model.Job{
		{
			Title:              "Senior Backend Engineer",
			Company:            "Harbor Systems",
			Location:           "Ho Chi Minh City",
			Salary:             "$3500 - $5000",
			Bonus:              500,
			RewardCandidateUSD: 300,
			RewardInterviewUSD: 50,
			Vacancies:          2,
			Deadline:           &deadline,
			Status:             model.JobActive,
			Keywords:           []string{"go", "postgres", "kubernetes"},
			Detail: model.JobDetail{
				Description:  "Own the services behind our logistics platform.",
				Requirements: "5+ years backend experience, strong SQL.",
				Benefits:     "13th month salary, private insurance.",
			},
		},
		{
			Title:              "Product Designer",
			Company:            "Nimbus Labs",
			Location:           "Remote",
			Salary:             "$2000 - $3200",
			RewardCandidateUSD: 200,
			RewardInterviewUSD: 30,
			Vacancies:          1,
			Deadline:           &deadline,
			Status:             model.JobActive,
			Keywords:           []string{"figma", "design systems"},
			Detail: model.JobDetail{
				Description:  "Design the referral dashboard end to end.",
				Requirements: "Portfolio with shipped B2B work.",
			},
		},
		{
			Title:     "QA Engineer",
			Company:   "Harbor Systems",
			Location:  "Da Nang",
			Salary:    "$1500 - $2200",
			Vacancies: 1,
			Status:    model.JobInactive,
			Detail: model.JobDetail{
				Description: "Manual and automated testing for web products.",
			},
		},
	}

	for _, j := range jobs {
		if err := s.store.CreateJob(ctx, j); err != nil {
			return fmt.Errorf("seeding job %q: %w", j.Title, err)
		}
	}
	return nil
}
