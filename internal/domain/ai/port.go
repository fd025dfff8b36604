package ai

import "context"

// Client sends a single user-turn prompt to a text model and returns the raw text.
// It does not interpret the text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
