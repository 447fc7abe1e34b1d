// Package requestcontext provides context accessors for job-scoped values.
//
// Values are typically set by the jobs worker when it picks up an envelope and
// consumed by services. Keeping this package free of transport dependencies
// lets services import only what they need.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	jobID := requestcontext.JobID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	jobIDKey   struct{}
	jobTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyJobID   = jobIDKey{}
	ContextKeyJobTime = jobTimeKey{}
)

// JobID retrieves the job envelope ID from the context. Returns "" if not set.
func JobID(ctx context.Context) string {
	if jobID, ok := ctx.Value(ContextKeyJobID).(string); ok {
		return jobID
	}
	return ""
}

// WithJobID injects a job envelope ID into the context.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, ContextKeyJobID, jobID)
}

// Now retrieves the job-scoped time from context.
// Falls back to time.Now() if not set (for CLI and test contexts).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyJobTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Unit tests that assert on written timestamps
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyJobTime, t)
}
