package riskanalysis

import (
	"github.com/bryanwahyu/tpa-risk/internal/domain/assessment"
	"github.com/bryanwahyu/tpa-risk/internal/domain/runerrors"
)

// Status enum
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ReasonNoIssues is the skip reason for an organization with nothing to analyze.
const ReasonNoIssues = "no issues found"

// Outcome is the result of running the pipeline for one organization.
type Outcome struct {
	OrganizationID string              `json:"organization_id"`
	Organization   string              `json:"organization"`
	Status         Status              `json:"status"`
	Reason         string              `json:"reason,omitempty"`
	Phase          runerrors.Phase     `json:"phase,omitempty"`
	Error          string              `json:"error,omitempty"`
	Issues         int                 `json:"issues"`
	Apps           int                 `json:"apps"`
	ParseFailed    bool                `json:"parse_failed,omitempty"`
	Summary        *assessment.Summary `json:"summary,omitempty"`
	ArtifactPath   string              `json:"artifact_path,omitempty"`

	Err error `json:"-"`
}

// BatchReport collects every outcome of a run, in processing order.
type BatchReport struct {
	Outcomes  []Outcome `json:"outcomes"`
	Completed int       `json:"completed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

func (r *BatchReport) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusCompleted:
		r.Completed++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}

// HasFailures reports whether any organization failed.
func (r BatchReport) HasFailures() bool { return r.Failed > 0 }
