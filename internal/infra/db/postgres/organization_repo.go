package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/tpa-risk/internal/domain/organizations"
)

type OrganizationRepository struct{ db *sql.DB }

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Get by ID; ids are compared as text so a malformed id is simply not found
func (r *OrganizationRepository) Get(ctx context.Context, id domain.ID) (*domain.Organization, error) {
	const q = `
SELECT id::text, name
FROM organisations
WHERE id::text = $1
LIMIT 1;`
	var o domain.Organization
	if err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&o.ID, &o.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Latest organizations by updated_at
func (r *OrganizationRepository) Latest(ctx context.Context, limit int) ([]*domain.Organization, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id::text, name
FROM organisations
ORDER BY updated_at DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Organization
	for rows.Next() {
		var o domain.Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
