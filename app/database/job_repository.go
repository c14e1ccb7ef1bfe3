package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ JobRepository = (*SQLJobRepository)(nil)

// SQLJobRepository implements JobRepository over SQLite.
type SQLJobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *SQLJobRepository {
	return &SQLJobRepository{db: db}
}

func (r *SQLJobRepository) CreateJob(job CollectionJob) error {
	_, err := r.db.Exec(`
		INSERT INTO collection_jobs (id, source_id, status, items_collected, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, job.ID, job.SourceID, job.Status, job.ItemsCollected, job.ErrorMessage, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *SQLJobRepository) GetJob(id string) (*CollectionJob, error) {
	row := r.db.QueryRow(`
		SELECT id, source_id, status, started_at, completed_at, items_collected, error_message, created_at
		FROM collection_jobs WHERE id = ?
	`, id)

	var job CollectionJob
	err := row.Scan(&job.ID, &job.SourceID, &job.Status, &job.StartedAt,
		&job.CompletedAt, &job.ItemsCollected, &job.ErrorMessage, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (r *SQLJobRepository) GetJobs(limit int) ([]CollectionJob, error) {
	rows, err := r.db.Query(`
		SELECT id, source_id, status, started_at, completed_at, items_collected, error_message, created_at
		FROM collection_jobs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	defer rows.Close()

	var jobs []CollectionJob
	for rows.Next() {
		var job CollectionJob
		err := rows.Scan(&job.ID, &job.SourceID, &job.Status, &job.StartedAt,
			&job.CompletedAt, &job.ItemsCollected, &job.ErrorMessage, &job.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

func (r *SQLJobRepository) GetJobStats() (JobStats, error) {
	var stats JobStats
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'queued' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM collection_jobs
	`).Scan(&stats.Total, &stats.Queued, &stats.Running, &stats.Completed, &stats.Failed)
	if err != nil {
		return JobStats{}, fmt.Errorf("failed to get job stats: %w", err)
	}
	return stats, nil
}

// MarkRunning moves a queued job to running. The WHERE clause enforces the
// one-directional state machine: a job that already left queued is not
// touched.
func (r *SQLJobRepository) MarkRunning(id string) error {
	return r.transition(id, JobStatusQueued, `
		UPDATE collection_jobs
		SET status = ?, started_at = ?
		WHERE id = ? AND status = ?
	`, JobStatusRunning, time.Now().UTC(), id, JobStatusQueued)
}

func (r *SQLJobRepository) MarkCompleted(id string, itemsCollected int) error {
	return r.transition(id, JobStatusRunning, `
		UPDATE collection_jobs
		SET status = ?, completed_at = ?, items_collected = ?
		WHERE id = ? AND status = ?
	`, JobStatusCompleted, time.Now().UTC(), itemsCollected, id, JobStatusRunning)
}

func (r *SQLJobRepository) MarkFailed(id string, errorMessage string) error {
	_, err := r.db.Exec(`
		UPDATE collection_jobs
		SET status = ?, completed_at = ?, error_message = ?
		WHERE id = ? AND status IN (?, ?)
	`, JobStatusFailed, time.Now().UTC(), errorMessage, id, JobStatusQueued, JobStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

func (r *SQLJobRepository) transition(id, expected, query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %s is not in status %s", id, expected)
	}

	return nil
}
