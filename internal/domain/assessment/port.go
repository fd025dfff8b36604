package assessment

import (
	"context"
	"time"
)

// ResultWriter persists one AnalysisResult and returns where it went.
type ResultWriter interface {
	Write(ctx context.Context, r *AnalysisResult) (string, error)
}

// ArtifactStore port (mirror of written artifacts, e.g. object storage)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// RecordID identifier type
type RecordID string

// Record is an archived AnalysisResult.
type Record struct {
	ID               RecordID  `json:"id"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	ResultJSON       string    `json:"result"`
	ArtifactPath     string    `json:"artifact_path,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// PaginatedResult represents a page of archived records with metadata
type PaginatedResult struct {
	Data       []*Record `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Total      int64     `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// Repository port for the optional results archive
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Paginate(ctx context.Context, organizationID string, page, pageSize int) (PaginatedResult, error)
}
