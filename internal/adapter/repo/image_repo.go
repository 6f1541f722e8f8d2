package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shotforge/internal/domain"
)

// ImageRepositoryPG implements domain.ImageRepository.
type ImageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewImageRepository creates an image pool repository backed by PostgreSQL.
func NewImageRepository(pool *pgxpool.Pool) *ImageRepositoryPG {
	return &ImageRepositoryPG{pool: pool}
}

// SaveAll inserts the job's accepted images into the subject's pool.
func (r *ImageRepositoryPG) SaveAll(ctx context.Context, jobID string, images []domain.GeneratedImage) error {
	query := `
INSERT INTO generated_images (job_id, subject_id, shot_template_id, asset_ref, quality_score, consistency_score, prompt_used, attempts_used, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	for _, img := range images {
		if _, err := r.pool.Exec(ctx, query,
			jobID,
			img.SubjectID,
			img.ShotTemplateID,
			img.AssetRef,
			img.QualityScore,
			img.ConsistencyScore,
			img.PromptUsed,
			img.AttemptsUsed,
			nullableString(img.Note),
			img.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListBySubject returns the subject's full image pool, newest first.
func (r *ImageRepositoryPG) ListBySubject(ctx context.Context, subjectID string) ([]domain.GeneratedImage, error) {
	query := `
SELECT subject_id, shot_template_id, asset_ref, quality_score, consistency_score, prompt_used, attempts_used, COALESCE(note, ''), created_at
FROM generated_images
WHERE subject_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GeneratedImage
	for rows.Next() {
		var img domain.GeneratedImage
		if err := rows.Scan(
			&img.SubjectID,
			&img.ShotTemplateID,
			&img.AssetRef,
			&img.QualityScore,
			&img.ConsistencyScore,
			&img.PromptUsed,
			&img.AttemptsUsed,
			&img.Note,
			&img.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
