package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts or updates an archived analysis
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO risk_analyses
  (id, organization_id, organization_name, result_json, artifact_path, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  organization_id=EXCLUDED.organization_id,
  organization_name=EXCLUDED.organization_name,
  result_json=EXCLUDED.result_json,
  artifact_path=EXCLUDED.artifact_path;
`
	orgID := stringOrDash(a.OrganizationID)
	orgName := stringOrDash(a.OrganizationName)
	result := a.ResultJSON
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, string(a.ID), orgID, orgName, result, a.ArtifactPath, createdAt)
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
SELECT id::text, organization_id, organization_name, result_json::text, artifact_path, created_at
FROM risk_analyses
WHERE organization_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, organizationID, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		var a domain.Record
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.OrganizationName, &a.ResultJSON, &a.ArtifactPath, &a.CreatedAt); err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM risk_analyses WHERE organization_id=$1`, organizationID).Scan(&total); err != nil {
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
