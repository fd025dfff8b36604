package runerrors

import "context"

// Repository defines persistence for run errors
type Repository interface {
	Save(ctx context.Context, e *RunError) error
	ListByOrganization(ctx context.Context, organizationID string, limit int) ([]*RunError, error)
}
