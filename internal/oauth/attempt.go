package oauth

import (
	"context"

	"github.com/google/uuid"
)

type attemptKey struct{}

// NewAttemptID returns a short random identifier for correlating the log and
// audit lines of one login attempt or volume request.
func NewAttemptID() string {
	return uuid.NewString()[:8]
}

// WithAttemptID returns a context carrying id.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, attemptKey{}, id)
}

// AttemptIDFromContext returns the attempt ID stored by WithAttemptID, or "".
func AttemptIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(attemptKey{}).(string)
	return id
}
