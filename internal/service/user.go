package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// UserService covers account administration and profile self-service.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	return s.users.GetUserByID(ctx, id)
}

// BasicInfoUpdate is a merge patch for the profile endpoint. Nil fields are
// left untouched; BankInfo merges field-by-field over the stored value.
type BasicInfoUpdate struct {
	Name        *string         `json:"name"`
	Email       *string         `json:"email"`
	Role        *model.Role     `json:"role"`
	NewPassword *string         `json:"newPassword"`
	BankInfo    *model.BankInfo `json:"bankInfo"`
}

// UpdateBasicInfo applies a profile patch and returns the updated account.
func (s *UserService) UpdateBasicInfo(ctx context.Context, id string, patch BasicInfoUpdate) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.NewPassword != nil && strings.TrimSpace(*patch.NewPassword) != "" {
		hashed, err := s.passwords.Hash(*patch.NewPassword)
		if err != nil {
			return nil, apperror.ValidationFailed("newPassword", err.Error())
		}
		user.Password = hashed
	}
	if patch.BankInfo != nil {
		merged := model.BankInfo{}
		if user.BankInfo != nil {
			merged = *user.BankInfo
		}
		if patch.BankInfo.BankName != "" {
			merged.BankName = patch.BankInfo.BankName
		}
		if patch.BankInfo.AccountName != "" {
			merged.AccountName = patch.BankInfo.AccountName
		}
		if patch.BankInfo.AccountNumber != "" {
			merged.AccountNumber = patch.BankInfo.AccountNumber
		}
		user.BankInfo = &merged
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// UpdateStatus moves an account between Pending, Active, and Rejected:
// the admin approval switch.
func (s *UserService) UpdateStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error) {
	if !model.ValidUserStatus(status) {
		return nil, apperror.ValidationFailed("newStatus",
			fmt.Sprintf("invalid status %q (want Pending, Active, or Rejected)", status))
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user status: %w", err)
	}

	s.logger.Info("user status updated",
		slog.String("id", id),
		slog.String("status", string(status)),
	)
	return user, nil
}

// Create is the admin backdoor for provisioning an account directly,
// bypassing the approval workflow. Role and status default to
// recruiter/Active when absent.
func (s *UserService) Create(ctx context.Context, user *model.User) (*model.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if user.Role == "" {
		user.Role = model.RoleRecruiter
	}
	if user.Status == "" {
		user.Status = model.UserActive
	}
	if user.Password != "" {
		hashed, err := s.passwords.Hash(user.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.Password = hashed
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) Remove(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user removed", slog.String("id", id))
	return nil
}
