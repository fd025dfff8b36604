package mysql

import (
	"context"
	"database/sql"
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
VALUES (?,?,?,?,?)
`
	org := stringOrDash(e.OrganizationID)
	phase := stringOrDash(string(e.Phase))
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	details := jsonOrEmpty(e.DetailsJSON)
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, org, phase, msg, details, created.UTC())
	return err
}

func (r *RunErrorRepository) ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*domain.RunError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, organization_id, phase, message, details_json, created_at
FROM risk_analysis_errors
WHERE organization_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.RunError{}
	for rows.Next() {
		var e domain.RunError
		var created time.Time
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Phase, &e.Message, &e.DetailsJSON, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = created
		out = append(out, &e)
	}
	return out, rows.Err()
}
