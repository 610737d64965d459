package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/auth"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// AuthService handles registration, credential login, Google sign-in, and
// password reset.
//
// Account approval gate: registration creates Pending accounts; login (both
// kinds) refuses Pending and Rejected accounts with 403 so the dashboard can
// show the "waiting for approval" screen. Only Active accounts ever get a
// token.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a Pending recruiter account. Email is the registration
// key: an existing password-bearing account with the same email conflicts.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking existing user: %w", err)
	}
	if existing != nil && existing.Password != "" {
		return nil, apperror.Conflict("email already registered")
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "New User"
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     model.RoleRecruiter,
		Status:   model.UserPending,
		Credit:   0,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to register user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login verifies credentials and returns the account plus a signed token.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, "", apperror.Unauthorized("invalid email or password")
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}
	if user.Password == "" {
		// Google-only account: no password to compare against.
		return nil, "", apperror.Unauthorized("this account signs in with Google")
	}

	if err := s.checkApproved(user); err != nil {
		return nil, "", err
	}

	if err := s.passwords.Verify(user.Password, password); err != nil {
		return nil, "", apperror.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Generate(auth.Identity{ID: user.ID, Role: string(user.Role)})
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)
	return user, token, nil
}

// LoginWithGoogle signs in (or lazily registers) an account from a verified
// Google profile. A brand-new account starts Pending like any registration,
// so the returned token is empty until an admin approves it.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gu *auth.GoogleUser) (*model.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, gu.Email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, "", fmt.Errorf("looking up user: %w", err)
		}
		user = &model.User{
			Name:   gu.Name,
			Email:  gu.Email,
			Role:   model.RoleRecruiter,
			Status: model.UserPending,
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, "", fmt.Errorf("creating google user: %w", err)
		}
		s.logger.Info("google user registered pending approval",
			slog.String("id", user.ID),
			slog.String("email", user.Email),
		)
	}

	if user.Status != model.UserActive {
		return user, "", nil
	}

	token, err := s.tokens.Generate(auth.Identity{ID: user.ID, Role: string(user.Role)})
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}

// ResetPassword replaces the password of the account matching email
// (case-insensitive).
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return apperror.ValidationFailed("newPassword", "new password is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hashed, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}
	user.Password = hashed

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}

	s.logger.Info("password reset", slog.String("id", user.ID))
	return nil
}

// Status looks up an account by email and, when it is Active, issues a
// token. The dashboard uses this after a Google sign-in to poll whether the
// admin has approved the account yet.
func (s *AuthService) Status(ctx context.Context, email string) (*model.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if user.Status != model.UserActive {
		return user, "", nil
	}

	token, err := s.tokens.Generate(auth.Identity{ID: user.ID, Role: string(user.Role)})
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return user, token, nil
}

func (s *AuthService) checkApproved(user *model.User) error {
	switch user.Status {
	case model.UserPending:
		return apperror.Forbidden("account is pending approval")
	case model.UserRejected:
		return apperror.Forbidden("account has been rejected")
	}
	return nil
}
