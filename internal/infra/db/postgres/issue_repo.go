package postgres

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/tpa-risk/internal/domain/thirdparty"
)

type IssueRepository struct{ db *sql.DB }

func NewIssueRepository(db *sql.DB) *IssueRepository { return &IssueRepository{db: db} }

// ScopeRecords returns open, non-deleted issues with their third-party app, newest first
func (r *IssueRepository) ScopeRecords(ctx context.Context, q domain.IssueQuery) ([]domain.ScopeRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 300
	}
	const query = `
SELECT i.id::text, i.object_at_risk::text, i.created_at,
       o.scopes,
       tp.name AS third_party_name, tp.handle AS third_party_handle,
       tp.category1, tp.category2, tp.is_ai, tp.sensitive_level::text
FROM saas.issues i
LEFT JOIN third_party_apps_module.objects o ON i.id = o.issue_id
LEFT JOIN third_party_apps_module.third_parties tp ON o.third_party_handle = tp.handle
WHERE i.organisation_id::text = $1
  AND i.app_id::text = $2
  AND o.is_deleted = false
  AND i.remediated_at IS NULL
ORDER BY i.created_at DESC
LIMIT $3;`

	rows, err := r.db.QueryContext(ctx, query, q.OrganizationID, q.AppID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	var out []domain.ScopeRecord
	for rows.Next() {
		var rec domain.ScopeRecord
		var objectAtRisk, scopes, name, handle sql.NullString
		var category1, category2, sensitiveLevel sql.NullString
		var isAI sql.NullBool
		if err := rows.Scan(
			&rec.IssueID, &objectAtRisk, &rec.CreatedAt,
			&scopes,
			&name, &handle,
			&category1, &category2, &isAI, &sensitiveLevel,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.ObjectAtRisk = objectAtRisk.String
		rec.Scopes = nullableString(scopes)
		rec.Name = name.String
		rec.Handle = handle.String
		rec.Category1 = category1.String
		rec.Category2 = category2.String
		rec.IsAI = nullableBool(isAI)
		rec.SensitiveLevel = sensitiveLevel.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
