package mysql

import (
	"context"
	"database/sql"
)

var archiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS risk_analyses (
  id                CHAR(36) PRIMARY KEY,
  organization_id   VARCHAR(64) NOT NULL,
  organization_name VARCHAR(255) NOT NULL,
  result_json       JSON NOT NULL,
  artifact_path     VARCHAR(512) NOT NULL DEFAULT '',
  created_at        DATETIME(3) NOT NULL,
  INDEX risk_analyses_org_created_idx (organization_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS risk_analysis_errors (
  id              BIGINT AUTO_INCREMENT PRIMARY KEY,
  organization_id VARCHAR(64) NOT NULL,
  phase           VARCHAR(32) NOT NULL,
  message         TEXT NOT NULL,
  details_json    JSON NOT NULL,
  created_at      DATETIME(3) NOT NULL,
  INDEX risk_analysis_errors_org_created_idx (organization_id, created_at)
)`,
}

// Migrate creates the archive tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range archiveSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
