package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shotforge/internal/domain"
)

// JobArchivePG implements domain.JobArchive. Terminal jobs are kept as one
// row each with the result set as JSON; live jobs never touch the database.
type JobArchivePG struct {
	pool *pgxpool.Pool
}

// NewJobArchive creates a job archive backed by PostgreSQL.
func NewJobArchive(pool *pgxpool.Pool) *JobArchivePG {
	return &JobArchivePG{pool: pool}
}

// Save upserts a terminal job snapshot.
func (a *JobArchivePG) Save(ctx context.Context, job *domain.GenerationJob) error {
	resultsJSON, err := json.Marshal(job.Results)
	if err != nil {
		return fmt.Errorf("archive: encode results: %w", err)
	}
	query := `
INSERT INTO job_archive (job_id, subject_id, job_type, status, error_message, results_json, started_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (job_id) DO UPDATE
SET status = EXCLUDED.status,
    error_message = EXCLUDED.error_message,
    results_json = EXCLUDED.results_json,
    completed_at = EXCLUDED.completed_at;
`
	_, err = a.pool.Exec(ctx, query,
		job.JobID,
		job.SubjectID,
		job.JobType,
		job.Status,
		nullableString(job.Error),
		resultsJSON,
		job.StartedAt,
		job.CompletedAt,
	)
	return err
}

var _ domain.JobArchive = (*JobArchivePG)(nil)
