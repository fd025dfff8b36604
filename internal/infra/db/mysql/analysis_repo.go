package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	domain "github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an archived analysis
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO risk_analyses
  (id, organization_id, organization_name, result_json, artifact_path, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  organization_id=VALUES(organization_id), organization_name=VALUES(organization_name),
  result_json=VALUES(result_json), artifact_path=VALUES(artifact_path);
`
	// Ensure non-nullable fields have safe defaults
	orgID := stringOrDash(a.OrganizationID)
	orgName := stringOrDash(a.OrganizationName)
	result := jsonOrEmpty(a.ResultJSON)
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, string(a.ID), orgID, orgName, result, a.ArtifactPath, createdAt.UTC())
	return err
}

// Paginate returns a page of archived analyses ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, organizationID string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, organization_id, organization_name, result_json, artifact_path, created_at
FROM risk_analyses
WHERE organization_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		var a domain.Record
		var created time.Time
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.OrganizationName, &a.ResultJSON, &a.ArtifactPath, &created); err != nil {
			return domain.PaginatedResult{}, err
		}
		a.CreatedAt = created
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM risk_analyses WHERE organization_id = ?", organizationID).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       out,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}
