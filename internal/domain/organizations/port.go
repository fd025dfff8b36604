package organizations

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an explicit organization id matches nothing.
var ErrNotFound = errors.New("organization not found")

// Repository port (read side of the organisations table)
type Repository interface {
	// Get returns ErrNotFound when the id has no match.
	Get(ctx context.Context, id ID) (*Organization, error)
	// Latest returns the most recently updated organizations, newest first.
	Latest(ctx context.Context, limit int) ([]*Organization, error)
}
