package postgres

import (
	"context"
	"database/sql"
)

// archiveSchema creates the tables owned by this service. The source tables
// (organisations, saas.issues, third_party_apps_module.*) belong upstream.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS risk_analyses (
  id                uuid PRIMARY KEY,
  organization_id   text NOT NULL,
  organization_name text NOT NULL,
  result_json       jsonb NOT NULL,
  artifact_path     text NOT NULL DEFAULT '',
  created_at        timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS risk_analyses_org_created_idx
  ON risk_analyses (organization_id, created_at DESC);

CREATE TABLE IF NOT EXISTS risk_analysis_errors (
  id              bigserial PRIMARY KEY,
  organization_id text NOT NULL,
  phase           text NOT NULL,
  message         text NOT NULL,
  details_json    jsonb NOT NULL DEFAULT '{}',
  created_at      timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS risk_analysis_errors_org_created_idx
  ON risk_analysis_errors (organization_id, created_at DESC);
`

// Migrate creates the archive tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, archiveSchema)
	return err
}
