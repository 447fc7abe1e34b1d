// Package reference provides read-only lookups against the pre-populated
// reference tables: classes, localities, judging bodies, subjects and
// document types. Provisioning these tables is out of scope for the worker.
package reference

import "context"

// Ref is a resolved {code, name} pair denormalized onto processes and events.
type Ref struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Resolver looks up descriptive records by code. Every method returns
// sentinel.ErrNotFound on a miss; callers own the miss policy (clear the
// field, skip the entry, leave the name empty).
type Resolver interface {
	Class(ctx context.Context, code string) (Ref, error)
	Locality(ctx context.Context, code string) (Ref, error)
	JudgingBody(ctx context.Context, code string) (Ref, error)
	Subject(ctx context.Context, code string) (Ref, error)

	// DocumentType is additionally scoped by court tier; the same numeric
	// code can name different document kinds per tier.
	DocumentType(ctx context.Context, tier string, code int) (Ref, error)
}
