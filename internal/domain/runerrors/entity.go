package runerrors

import "time"

// Phase names the pipeline step an organization failed in.
type Phase string

const (
	PhaseFetch   Phase = "fetch"
	PhaseInvoke  Phase = "invoke"
	PhaseWrite   Phase = "write"
	PhaseArchive Phase = "archive"
)

// RunError represents a persisted per-organization failure entry
type RunError struct {
	ID             int64     `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Phase          Phase     `json:"phase"`
	Message        string    `json:"message"`
	DetailsJSON    string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt      time.Time `json:"created_at"`
}
