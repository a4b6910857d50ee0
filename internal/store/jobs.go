package store

import (
	"context"
	"database/sql"
	"time"
)

// Job statuses as stored in the journal.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Source kinds accepted by the pipeline.
const (
	SourceVideo   = "video"
	SourceArchive = "archive"
)

// Job records one digitization run from intake to finished artifacts.
type Job struct {
	ID           string
	SourcePath   string
	SourceKind   string
	Status       string
	Error        string
	FrameCount   int
	PageCount    int
	ChapterCount int
	OutputPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Jobs is the journal repository.
type Jobs struct {
	db *sql.DB
}

// NewJobs creates the job repository over an open journal database.
func NewJobs(db *DB) *Jobs {
	return &Jobs{db: db.Conn()}
}

const jobColumns = `id, source_path, source_kind, status, error,
	frame_count, page_count, chapter_count, output_path, created_at, updated_at`

// Create inserts a new pending job.
func (r *Jobs) Create(ctx context.Context, job *Job) error {
	now := time.Now().UTC()
	job.Status = JobPending
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, source_path, source_kind, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, job.ID, job.SourcePath, job.SourceKind, job.Status,
		job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))
	return err
}

// Get returns a job by id, or nil when it does not exist.
func (r *Jobs) Get(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// LatestBySource returns the newest job recorded for a capture path, or nil
// when the path has never been digitized. Intake uses it to skip captures
// that already completed before a restart.
func (r *Jobs) LatestBySource(ctx context.Context, sourcePath string) (*Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source_path = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, sourcePath)
	return scanJob(row)
}

// List returns the newest jobs first, up to limit.
func (r *Jobs) List(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJobRows(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkRunning transitions a job to running.
func (r *Jobs) MarkRunning(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, JobRunning, "")
}

// MarkFailed transitions a job to failed with its error message.
func (r *Jobs) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.setStatus(ctx, id, JobFailed, errMsg)
}

// MarkCompleted records the finished counts and output location.
func (r *Jobs) MarkCompleted(ctx context.Context, id string, frameCount, pageCount, chapterCount int, outputPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, frame_count = ?, page_count = ?, chapter_count = ?,
			output_path = ?, updated_at = ?
		WHERE id = ?
	`, JobCompleted, frameCount, pageCount, chapterCount, outputPath,
		time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *Jobs) setStatus(ctx context.Context, id, status, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, errMsg, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row *sql.Row) (*Job, error) {
	job, err := scanJobRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

func scanJobRows(row rowScanner) (*Job, error) {
	var j Job
	var createdAt, updatedAt string

	err := row.Scan(&j.ID, &j.SourcePath, &j.SourceKind, &j.Status, &j.Error,
		&j.FrameCount, &j.PageCount, &j.ChapterCount, &j.OutputPath, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}
