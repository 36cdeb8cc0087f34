package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// Store is the job persistence facade handed to the orchestrator and HTTP
// handlers; it owns the single underlying connection.
type Store struct {
	Queries *Queries
	db      *sql.DB
}

// NewStore wraps an already-migrated connection.
func NewStore(sqlDB *sql.DB) *Store {
	return &Store{Queries: New(sqlDB), db: sqlDB}
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJob persists a new job row.
func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	return s.Queries.InsertJob(ctx, j)
}

// GetJob fetches a job by id, returning sql.ErrNoRows if absent.
func (s *Store) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return s.Queries.GetJob(ctx, id)
}

// SaveJob persists the job's current mutable state (status, progress,
// report, error, result paths).
func (s *Store) SaveJob(ctx context.Context, j *model.Job) error {
	return s.Queries.UpdateJob(ctx, j)
}

// ListJobs returns every known job, most recent first.
func (s *Store) ListJobs(ctx context.Context) ([]*model.Job, error) {
	return s.Queries.ListJobs(ctx)
}

// ListJobsPage returns a page of jobs, most recent first, and the total
// job count across all pages.
func (s *Store) ListJobsPage(ctx context.Context, offset, pageSize int) ([]*model.Job, int, error) {
	jobs, err := s.Queries.ListJobsPage(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Queries.CountJobs(ctx)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// InterruptedJobs returns jobs left in Uploading, Analyzing or Exporting,
// used at startup to mark work orphaned by a prior crash as failed rather
// than silently stuck. Jobs in Uploaded, although non-terminal, are not
// returned.
func (s *Store) InterruptedJobs(ctx context.Context) ([]*model.Job, error) {
	var out []*model.Job
	for _, status := range []model.Status{model.StatusUploading, model.StatusAnalyzing, model.StatusExporting} {
		jobs, err := s.Queries.ListJobsByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		out = append(out, jobs...)
	}
	return out, nil
}

// ExpiredJobs returns jobs older than ttl, for the retention janitor.
func (s *Store) ExpiredJobs(ctx context.Context, ttl time.Duration) ([]*model.Job, error) {
	return s.Queries.ListJobsCreatedBefore(ctx, time.Now().Add(-ttl))
}

// DeleteJob removes a job row.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.Queries.DeleteJob(ctx, id)
}
