package flatfile

import (
	"context"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	users, err := load[model.User](s, usersFile)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	users = append(users, *user)
	return save(s, usersFile, users)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	users, err := load[model.User](s, usersFile)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	users, err := load[model.User](s, usersFile)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	return load[model.User](s, usersFile)
}

func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	users, err := load[model.User](s, usersFile)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			users[i] = *user
			return save(s, usersFile, users)
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	l := s.fileLock(usersFile)
	l.Lock()
	defer l.Unlock()

	users, err := load[model.User](s, usersFile)
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return apperror.NotFound("user", id)
	}
	return save(s, usersFile, kept)
}
