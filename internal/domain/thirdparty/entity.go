package thirdparty

import "time"

// ScopeRecord is one issue joined to its third-party app and the app's static metadata.
// Nullable columns from the outer joins are pointers.
type ScopeRecord struct {
	IssueID        string    `json:"issue_id"`
	ObjectAtRisk   string    `json:"object_at_risk"`
	CreatedAt      time.Time `json:"created_at"`
	Handle         string    `json:"third_party_handle"`
	Name           string    `json:"third_party_name"`
	Scopes         *string   `json:"scopes"`
	Category1      string    `json:"category1"`
	Category2      string    `json:"category2"`
	IsAI           *bool     `json:"is_ai"`
	SensitiveLevel string    `json:"sensitive_level"`
}

// DedupedApp is one distinct application within an organization's batch.
type DedupedApp struct {
	Name           string  `json:"name"`
	Handle         string  `json:"handle"`
	Scopes         *string `json:"scopes"`
	Category1      string  `json:"category1"`
	Category2      string  `json:"category2"`
	IsAI           *bool   `json:"is_ai"`
	SensitiveLevel string  `json:"sensitive_level"`
	ObjectAtRisk   string  `json:"object_at_risk"`
}

// ScopesOrEmpty returns the scopes string, or "" when the column was null.
func (a DedupedApp) ScopesOrEmpty() string {
	if a.Scopes == nil {
		return ""
	}
	return *a.Scopes
}
