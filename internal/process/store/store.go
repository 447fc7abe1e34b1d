// Package store persists processes and everything extracted from their raw
// snapshots. Each entity keeps the write semantics the pipeline depends on:
// processes are upserted field-by-field, snapshots are replaced wholesale,
// events are append-only, parties are delete-all-then-reinsert.
package store

import (
	"context"

	"procsync/internal/process/models"
)

// ProcessStore persists process records keyed by external case number.
type ProcessStore interface {
	// Create inserts a new process. Returns sentinel.ErrConflict when the
	// number already exists.
	Create(ctx context.Context, p *models.Process) error

	// Find returns the process for a number, or sentinel.ErrNotFound.
	Find(ctx context.Context, number string) (*models.Process, error)

	// Save overwrites every mutable field of an existing process.
	// Returns sentinel.ErrNotFound when the number is unknown.
	Save(ctx context.Context, p *models.Process) error

	// SetUpdating flips the in-progress flag without touching the rest of
	// the record.
	SetUpdating(ctx context.Context, number string, updating bool) error

	// ListStale returns the numbers of processes with fresh=false, up to
	// limit; limit <= 0 means all.
	ListStale(ctx context.Context, limit int) ([]string, error)
}

// SnapshotStore keeps the single raw snapshot per process.
type SnapshotStore interface {
	// Save upserts the snapshot, overwriting every field in place.
	Save(ctx context.Context, snap *models.RawSnapshot) error

	// Find returns the snapshot for a number, or sentinel.ErrNotFound.
	Find(ctx context.Context, number string) (*models.RawSnapshot, error)
}

// EventStore is append-only; an event is never updated or deleted.
type EventStore interface {
	// Exists reports whether an event with this movement identifier was
	// already extracted for the process.
	Exists(ctx context.Context, number, movementID string) (bool, error)

	// Append inserts a new event. Appending an existing
	// (process, movement) pair is a silent no-op.
	Append(ctx context.Context, event *models.Event) error

	// ListByProcess returns the events of a process in extraction order.
	ListByProcess(ctx context.Context, number string) ([]models.Event, error)
}

// PartyStore holds only the parties from the most recent extraction.
type PartyStore interface {
	// DeleteByProcess removes every party of a process.
	DeleteByProcess(ctx context.Context, number string) error

	// Add inserts one party.
	Add(ctx context.Context, party *models.Party) error

	// ListByProcess returns the parties of a process in insertion order.
	ListByProcess(ctx context.Context, number string) ([]models.Party, error)
}
