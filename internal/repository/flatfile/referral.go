package flatfile

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
)

func (s *Store) CreateReferral(ctx context.Context, ref *model.Referral) error {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	referrals, err := load[model.Referral](s, referralsFile)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ref.ID = xid.New().String()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	referrals = append(referrals, *ref)
	return save(s, referralsFile, referrals)
}

func (s *Store) GetReferralByID(ctx context.Context, id string) (*model.Referral, error) {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	referrals, err := load[model.Referral](s, referralsFile)
	if err != nil {
		return nil, err
	}
	for i := range referrals {
		if referrals[i].ID == id {
			r := referrals[i]
			return &r, nil
		}
	}
	return nil, apperror.NotFound("referral", id)
}

func (s *Store) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	return load[model.Referral](s, referralsFile)
}

func (s *Store) UpdateReferral(ctx context.Context, ref *model.Referral) error {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	referrals, err := load[model.Referral](s, referralsFile)
	if err != nil {
		return err
	}
	for i := range referrals {
		if referrals[i].ID == ref.ID {
			ref.UpdatedAt = time.Now().UTC()
			referrals[i] = *ref
			return save(s, referralsFile, referrals)
		}
	}
	return apperror.NotFound("referral", ref.ID)
}

func (s *Store) DeleteReferral(ctx context.Context, id string) error {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	referrals, err := load[model.Referral](s, referralsFile)
	if err != nil {
		return err
	}
	kept := referrals[:0]
	for _, r := range referrals {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(referrals) {
		return apperror.NotFound("referral", id)
	}
	return save(s, referralsFile, kept)
}

func (s *Store) ResetReferrals(ctx context.Context) error {
	l := s.fileLock(referralsFile)
	l.Lock()
	defer l.Unlock()

	return save(s, referralsFile, []model.Referral{})
}
