package thirdparty

import "context"

// IssueQuery selects open issues of one organization for one source app.
type IssueQuery struct {
	OrganizationID string
	AppID          string
	Limit          int
}

// IssueSource port: newest-first issue+app rows for an organization.
type IssueSource interface {
	ScopeRecords(ctx context.Context, q IssueQuery) ([]ScopeRecord, error)
}
