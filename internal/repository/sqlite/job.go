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

// compile-time check that *DB implements repository.JobRepository
var _ repository.JobRepository = (*DB)(nil)

const jobColumns = `id, title, company, location, salary, bonus,
	reward_candidate_usd, reward_interview_usd, vacancies, applicants,
	deadline, status, keywords, detail, saved_by, comments, created_at, updated_at`

func (db *DB) CreateJob(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	job.ID = xid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.SavedBy == nil {
		job.SavedBy = []string{}
	}
	if job.Comments == nil {
		job.Comments = []model.Comment{}
	}

	keywords, detail, savedBy, comments, err := encodeJobColumns(job)
	if err != nil {
		return err
	}

	var deadline sql.NullTime
	if job.Deadline != nil {
		deadline = sql.NullTime{Time: *job.Deadline, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Company, job.Location, job.Salary, job.Bonus,
		job.RewardCandidateUSD, job.RewardInterviewUSD, job.Vacancies, job.Applicants,
		deadline, string(job.Status), keywords, detail, savedBy, comments,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating job: %w", err)
	}
	return nil
}

func encodeJobColumns(job *model.Job) (keywords, detail, savedBy, comments string, err error) {
	if keywords, err = encodeJSON(job.Keywords); err != nil {
		return
	}
	if detail, err = encodeJSON(job.Detail); err != nil {
		return
	}
	if savedBy, err = encodeJSON(job.SavedBy); err != nil {
		return
	}
	comments, err = encodeJSON(job.Comments)
	return
}

// scanJob reads one job row from any scanner (sql.Row or sql.Rows).
func scanJob(scan func(dest ...any) error) (*model.Job, error) {
	var j model.Job
	var deadline sql.NullTime
	var keywords, detail, savedBy, comments string

	err := scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary, &j.Bonus,
		&j.RewardCandidateUSD, &j.RewardInterviewUSD, &j.Vacancies, &j.Applicants,
		&deadline, &j.Status, &keywords, &detail, &savedBy, &comments,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		t := deadline.Time
		j.Deadline = &t
	}
	if err := decodeJSON(keywords, &j.Keywords); err != nil {
		return nil, err
	}
	if err := decodeJSON(detail, &j.Detail); err != nil {
		return nil, err
	}
	if err := decodeJSON(savedBy, &j.SavedBy); err != nil {
		return nil, err
	}
	if err := decodeJSON(comments, &j.Comments); err != nil {
		return nil, err
	}
	if j.SavedBy == nil {
		j.SavedBy = []string{}
	}
	if j.Comments == nil {
		j.Comments = []model.Comment{}
	}
	return &j, nil
}

func (db *DB) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("job", id)
		}
		return nil, fmt.Errorf("sqlite: getting job %s: %w", id, err)
	}
	return j, nil
}

func (db *DB) listJobs(ctx context.Context, query string, args ...any) ([]model.Job, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning job row: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating jobs: %w", err)
	}
	return jobs, nil
}

func (db *DB) ListJobs(ctx context.Context) ([]model.Job, error) {
	return db.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at`)
}

func (db *DB) ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	return db.listJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at`,
		string(status))
}

func (db *DB) UpdateJob(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()

	keywords, detail, savedBy, comments, err := encodeJobColumns(job)
	if err != nil {
		return err
	}
	var deadline sql.NullTime
	if job.Deadline != nil {
		deadline = sql.NullTime{Time: *job.Deadline, Valid: true}
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE jobs
		 SET title = ?, company = ?, location = ?, salary = ?, bonus = ?,
		     reward_candidate_usd = ?, reward_interview_usd = ?, vacancies = ?,
		     applicants = ?, deadline = ?, status = ?, keywords = ?, detail = ?,
		     saved_by = ?, comments = ?, updated_at = ?
		 WHERE id = ?`,
		job.Title, job.Company, job.Location, job.Salary, job.Bonus,
		job.RewardCandidateUSD, job.RewardInterviewUSD, job.Vacancies,
		job.Applicants, deadline, string(job.Status), keywords, detail,
		savedBy, comments, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating job %s: %w", job.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("job", job.ID)
	}
	return nil
}

func (db *DB) DeleteJob(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting job %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("job", id)
	}
	return nil
}

func (db *DB) ResetJobs(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("sqlite: resetting jobs: %w", err)
	}
	return nil
}
