package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
)

type RunErrorRepository struct {
	db *sql.DB
}

func NewRunErrorRepository(db *sql.DB) *RunErrorRepository { return &RunErrorRepository{db: db} }

func (r *RunErrorRepository) Save(ctx context.Context, e *domain.RunError) error {
	const q = `
INSERT INTO risk_analysis_errors
  (organization_id, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5)
`
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		stringOrDash(e.OrganizationID), stringOrDash(string(e.Phase)), msg, detailsJSON(e.DetailsJSON), created)
	return err
}

func (r *RunErrorRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*domain.RunError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, organization_id, phase, message, details_json::text, created_at
FROM risk_analysis_errors
WHERE organization_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.RunError{}
	for rows.Next() {
		var e domain.RunError
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Phase, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// detailsJSON ensures valid json; if invalid, wrap as string field
func detailsJSON(details string) string {
	if strings.TrimSpace(details) == "" {
		return "{}"
	}
	if !json.Valid([]byte(details)) {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}
