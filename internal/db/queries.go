package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tycoonteritory/AutoCut/internal/model"
)

// Queries is a thin, hand-written analogue of a sqlc query set: one method
// per statement, talking directly to database/sql.
type Queries struct {
	db *sql.DB
}

// New wraps a raw connection in a Queries.
func New(sqlDB *sql.DB) *Queries {
	return &Queries{db: sqlDB}
}

type jobRow struct {
	ID               string
	CreatedAt        int64
	SourceFilename   string
	SourcePath       string
	OutputDir        string
	SettingsJSON     string
	Status           string
	Progress         float64
	Phase            string
	Message          string
	ReportJSON       sql.NullString
	ErrorReason      sql.NullString
	ErrorDetail      sql.NullString
	ResultPathsJSON  sql.NullString
	UpdatedAt        int64
}

func toRow(j *model.Job) (jobRow, error) {
	settingsJSON, err := json.Marshal(j.Settings)
	if err != nil {
		return jobRow{}, err
	}
	row := jobRow{
		ID:             j.ID,
		CreatedAt:      j.CreatedAt.Unix(),
		SourceFilename: j.SourceFilename,
		SourcePath:     j.SourcePath,
		OutputDir:      j.OutputDir,
		SettingsJSON:   string(settingsJSON),
		Status:         string(j.Status),
		Progress:       j.Progress,
		Phase:          j.Phase,
		Message:        j.Message,
		UpdatedAt:      time.Now().Unix(),
	}
	if j.Report != nil {
		reportJSON, err := json.Marshal(j.Report)
		if err != nil {
			return jobRow{}, err
		}
		row.ReportJSON = sql.NullString{String: string(reportJSON), Valid: true}
	}
	if j.ErrorReason != "" {
		row.ErrorReason = sql.NullString{String: string(j.ErrorReason), Valid: true}
	}
	if j.ErrorDetail != "" {
		row.ErrorDetail = sql.NullString{String: j.ErrorDetail, Valid: true}
	}
	if len(j.ResultPaths) > 0 {
		resultPathsJSON, err := json.Marshal(j.ResultPaths)
		if err != nil {
			return jobRow{}, err
		}
		row.ResultPathsJSON = sql.NullString{String: string(resultPathsJSON), Valid: true}
	}
	return row, nil
}

func (row jobRow) toJob() (*model.Job, error) {
	j := &model.Job{
		ID:             row.ID,
		CreatedAt:      time.Unix(row.CreatedAt, 0).UTC(),
		SourceFilename: row.SourceFilename,
		SourcePath:     row.SourcePath,
		OutputDir:      row.OutputDir,
		Status:         model.Status(row.Status),
		Progress:       row.Progress,
		Phase:          row.Phase,
		Message:        row.Message,
	}
	if err := json.Unmarshal([]byte(row.SettingsJSON), &j.Settings); err != nil {
		return nil, err
	}
	if row.ReportJSON.Valid {
		var report model.AnalysisReport
		if err := json.Unmarshal([]byte(row.ReportJSON.String), &report); err != nil {
			return nil, err
		}
		j.Report = &report
	}
	if row.ErrorReason.Valid {
		j.ErrorReason = model.ErrorReason(row.ErrorReason.String)
	}
	if row.ErrorDetail.Valid {
		j.ErrorDetail = row.ErrorDetail.String
	}
	if row.ResultPathsJSON.Valid {
		if err := json.Unmarshal([]byte(row.ResultPathsJSON.String), &j.ResultPaths); err != nil {
			return nil, err
		}
	}
	return j, nil
}

const jobColumns = `id, created_at, source_filename, source_path, output_dir, settings_json,
	status, progress, phase, message, report_json, error_reason, error_detail, result_paths_json, updated_at`

func scanJobRow(scanner interface {
	Scan(dest ...any) error
}) (jobRow, error) {
	var row jobRow
	err := scanner.Scan(
		&row.ID, &row.CreatedAt, &row.SourceFilename, &row.SourcePath, &row.OutputDir, &row.SettingsJSON,
		&row.Status, &row.Progress, &row.Phase, &row.Message, &row.ReportJSON, &row.ErrorReason,
		&row.ErrorDetail, &row.ResultPathsJSON, &row.UpdatedAt,
	)
	return row, err
}

// InsertJob persists a newly created job.
func (q *Queries) InsertJob(ctx context.Context, j *model.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.CreatedAt, row.SourceFilename, row.SourcePath, row.OutputDir, row.SettingsJSON,
		row.Status, row.Progress, row.Phase, row.Message, row.ReportJSON, row.ErrorReason,
		row.ErrorDetail, row.ResultPathsJSON, row.UpdatedAt,
	)
	return err
}

// GetJob fetches a job by id.
func (q *Queries) GetJob(ctx context.Context, id string) (*model.Job, error) {
	r := q.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	row, err := scanJobRow(r)
	if err != nil {
		return nil, err
	}
	return row.toJob()
}

// UpdateJob overwrites every mutable column for j.ID with j's current state.
func (q *Queries) UpdateJob(ctx context.Context, j *model.Job) error {
	row, err := toRow(j)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, `
		UPDATE jobs SET
			status = ?, progress = ?, phase = ?, message = ?,
			report_json = ?, error_reason = ?, error_detail = ?, result_paths_json = ?,
			updated_at = ?
		WHERE id = ?`,
		row.Status, row.Progress, row.Phase, row.Message,
		row.ReportJSON, row.ErrorReason, row.ErrorDetail, row.ResultPathsJSON,
		row.UpdatedAt, row.ID,
	)
	return err
}

// ListJobs returns every job, most recently created first.
func (q *Queries) ListJobs(ctx context.Context) ([]*model.Job, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		row, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		j, err := row.toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ListJobsPage returns up to pageSize jobs, most recently created first,
// skipping the first offset rows.
func (q *Queries) ListJobsPage(ctx context.Context, offset, pageSize int) ([]*model.Job, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT ? OFFSET ?`, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		row, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		j, err := row.toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountJobs returns the total number of job rows.
func (q *Queries) CountJobs(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n)
	return n, err
}

// ListJobsByStatus returns jobs in the given status, oldest first (used to
// find interrupted jobs to recover after a restart).
func (q *Queries) ListJobsByStatus(ctx context.Context, status model.Status) ([]*model.Job, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at ASC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		row, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		j, err := row.toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job row (the caller is responsible for removing its
// output directory).
func (q *Queries) DeleteJob(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	return err
}

// ListJobsCreatedBefore returns jobs created before cutoff, for the
// retention janitor.
func (q *Queries) ListJobsCreatedBefore(ctx context.Context, cutoff time.Time) ([]*model.Job, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		row, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		j, err := row.toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
