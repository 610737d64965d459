package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// compile-time check that *DB implements repository.ReferralRepository
var _ repository.ReferralRepository = (*DB)(nil)

const referralColumns = `id, recruiter, admin, job, candidate_name, candidate_email,
	candidate_phone, cv_url, linkedin, portfolio, suitability, bonus, message,
	status, finalized, created_at, updated_at`

func (db *DB) CreateReferral(ctx context.Context, ref *model.Referral) error {
	now := time.Now().UTC()
	ref.ID = xid.New().String()
	ref.CreatedAt = now
	ref.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO referrals (`+referralColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.Recruiter, ref.Admin, ref.Job, ref.CandidateName,
		ref.CandidateEmail, ref.CandidatePhone, ref.CVURL, ref.LinkedIn,
		ref.Portfolio, ref.Suitability, ref.Bonus, ref.Message,
		string(ref.Status), ref.Finalized, ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating referral: %w", err)
	}
	return nil
}

func scanReferral(scan func(dest ...any) error) (*model.Referral, error) {
	var r model.Referral
	err := scan(
		&r.ID, &r.Recruiter, &r.Admin, &r.Job, &r.CandidateName,
		&r.CandidateEmail, &r.CandidatePhone, &r.CVURL, &r.LinkedIn,
		&r.Portfolio, &r.Suitability, &r.Bonus, &r.Message,
		&r.Status, &r.Finalized, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetReferralByID(ctx context.Context, id string) (*model.Referral, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+referralColumns+` FROM referrals WHERE id = ?`, id)
	r, err := scanReferral(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("referral", id)
		}
		return nil, fmt.Errorf("sqlite: getting referral %s: %w", id, err)
	}
	return r, nil
}

func (db *DB) ListReferrals(ctx context.Context) ([]model.Referral, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+referralColumns+` FROM referrals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing referrals: %w", err)
	}
	defer rows.Close()

	referrals := []model.Referral{}
	for rows.Next() {
		r, err := scanReferral(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning referral row: %w", err)
		}
		referrals = append(referrals, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating referrals: %w", err)
	}
	return referrals, nil
}

func (db *DB) UpdateReferral(ctx context.Context, ref *model.Referral) error {
	ref.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE referrals
		 SET recruiter = ?, admin = ?, job = ?, candidate_name = ?,
		     candidate_email = ?, candidate_phone = ?, cv_url = ?, linkedin = ?,
		     portfolio = ?, suitability = ?, bonus = ?, message = ?, status = ?,
		     finalized = ?, updated_at = ?
		 WHERE id = ?`,
		ref.Recruiter, ref.Admin, ref.Job, ref.CandidateName,
		ref.CandidateEmail, ref.CandidatePhone, ref.CVURL, ref.LinkedIn,
		ref.Portfolio, ref.Suitability, ref.Bonus, ref.Message,
		string(ref.Status), ref.Finalized, ref.UpdatedAt, ref.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating referral %s: %w", ref.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("referral", ref.ID)
	}
	return nil
}

func (db *DB) DeleteReferral(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM referrals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting referral %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("referral", id)
	}
	return nil
}

func (db *DB) ResetReferrals(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM referrals`); err != nil {
		return fmt.Errorf("sqlite: resetting referrals: %w", err)
	}
	return nil
}
