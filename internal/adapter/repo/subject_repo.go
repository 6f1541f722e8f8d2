// Package repo contains the persistence adapters behind the domain's narrow
// repository interfaces: PostgreSQL implementations for deployments and
// in-memory implementations for local runs and tests.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shotforge/internal/domain"
)

// SubjectRepositoryPG implements domain.SubjectProvider.
type SubjectRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a subject provider backed by PostgreSQL.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepositoryPG {
	return &SubjectRepositoryPG{pool: pool}
}

// GetSubject fetches a subject by its identifier.
func (r *SubjectRepositoryPG) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	query := `
SELECT id, name, traits, personality, master_reference_ref
FROM subjects
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var subj domain.Subject
	if err := row.Scan(
		&subj.ID,
		&subj.Name,
		&subj.Traits,
		&subj.Personality,
		&subj.MasterReferenceRef,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("subject %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &subj, nil
}

var _ domain.SubjectProvider = (*SubjectRepositoryPG)(nil)
