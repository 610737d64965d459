package flatfile

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/apperror"
	"github.com/haidang/referral-hub/internal/model"
)

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	jobs, err := load[model.Job](s, jobsFile)
	if err != nil {
		return err
	}

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

	jobs = append(jobs, *job)
	return save(s, jobsFile, jobs)
}

func (s *Store) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	jobs, err := load[model.Job](s, jobsFile)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			j := jobs[i]
			return &j, nil
		}
	}
	return nil, apperror.NotFound("job", id)
}

func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	return load[model.Job](s, jobsFile)
}

func (s *Store) ListJobsByStatus(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	jobs, err := load[model.Job](s, jobsFile)
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Status == status {
			filtered = append(filtered, j)
		}
	}
	return filtered, nil
}

// UpdateJob rewrites the stored record with job as-is. Embedded comments and
// savedBy travel with the record, so thread and bookmark mutations persist
// through this single path.
func (s *Store) UpdateJob(ctx context.Context, job *model.Job) error {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	jobs, err := load[model.Job](s, jobsFile)
	if err != nil {
		return err
	}
	for i := range jobs {
		if jobs[i].ID == job.ID {
			job.UpdatedAt = time.Now().UTC()
			jobs[i] = *job
			return save(s, jobsFile, jobs)
		}
	}
	return apperror.NotFound("job", job.ID)
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	jobs, err := load[model.Job](s, jobsFile)
	if err != nil {
		return err
	}
	kept := jobs[:0]
	for _, j := range jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	if len(kept) == len(jobs) {
		return apperror.NotFound("job", id)
	}
	return save(s, jobsFile, kept)
}

func (s *Store) ResetJobs(ctx context.Context) error {
	l := s.fileLock(jobsFile)
	l.Lock()
	defer l.Unlock()

	return save(s, jobsFile, []model.Job{})
}
