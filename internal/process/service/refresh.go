package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"procsync/internal/process/models"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/requestcontext"
)

// RefreshStatus classifies the outcome of one refresh run.
type RefreshStatus string

const (
	// StatusUpdated means the snapshot and all three extractions landed.
	StatusUpdated RefreshStatus = "updated"
	// StatusSkipped means another run already holds the process lock.
	StatusSkipped RefreshStatus = "skipped"
	// StatusFailed is a reported, non-fatal failure: registry miss,
	// transport failure, or a malformed required header field.
	StatusFailed RefreshStatus = "failed"
)

// RefreshResult is the reported outcome of a refresh run. Infrastructure
// errors (storage, unexpected states) surface as a separate error instead.
type RefreshResult struct {
	Number string
	Status RefreshStatus
	Detail string
}

func (r RefreshResult) String() string {
	switch r.Status {
	case StatusUpdated:
		return fmt.Sprintf("process %s updated", r.Number)
	case StatusSkipped:
		return fmt.Sprintf("refresh process %s skipped: %s", r.Number, r.Detail)
	default:
		return fmt.Sprintf("refresh process %s: %s", r.Number, r.Detail)
	}
}

// Refresh re-fetches one process and re-runs extraction. Concurrent calls
// for the same number collapse into one run; across workers the per-number
// lock turns the duplicate into a skipped result.
func (s *Service) Refresh(ctx context.Context, number string) (RefreshResult, error) {
	v, err, _ := s.group.Do(number, func() (any, error) {
		// The run is shared with duplicate callers, so it must not die
		// with whichever caller started it. Request-scoped values
		// survive the detach.
		return s.refresh(context.WithoutCancel(ctx), number)
	})
	if err != nil {
		return RefreshResult{Number: number, Status: StatusFailed}, err
	}
	return v.(RefreshResult), nil
}

func (s *Service) refresh(ctx context.Context, number string) (result RefreshResult, err error) {
	ctx, span := s.tracer.Start(ctx, "procsync.refresh",
		trace.WithAttributes(attribute.String("process.number", number)))
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			outcome := string(result.Status)
			if err != nil {
				outcome = "error"
			}
			s.metrics.ObserveRefresh(outcome, time.Since(start).Seconds())
		}
	}()

	unlock, err := s.locker.Acquire(ctx, "refresh:"+number, s.lockTTL)
	if err != nil {
		if errors.Is(err, sentinel.ErrLocked) {
			return RefreshResult{Number: number, Status: StatusSkipped, Detail: "already in progress"}, nil
		}
		return RefreshResult{}, fmt.Errorf("lock process %s: %w", number, err)
	}
	defer unlock(context.WithoutCancel(ctx))

	proc, err := s.requireProcess(ctx, number)
	if err != nil {
		return RefreshResult{}, err
	}

	if err := s.stores.Processes.SetUpdating(ctx, number, true); err != nil {
		return RefreshResult{}, fmt.Errorf("mark process %s updating: %w", number, err)
	}
	// The header extractor clears the flag on the success path; this
	// guarantees it is also cleared when extraction aborts.
	defer func() {
		cleanup := context.WithoutCancel(ctx)
		if clearErr := s.stores.Processes.SetUpdating(cleanup, number, false); clearErr != nil {
			s.logger.ErrorContext(cleanup, "failed to clear updating flag",
				"process", number,
				"error", clearErr,
			)
		}
	}()

	raw, err := s.registry.FetchProcess(ctx, number)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return RefreshResult{Number: number, Status: StatusFailed, Detail: "not found in registry"}, nil
		case errors.Is(err, sentinel.ErrUnavailable):
			return RefreshResult{Number: number, Status: StatusFailed, Detail: err.Error()}, nil
		default:
			return RefreshResult{}, fmt.Errorf("fetch process %s: %w", number, err)
		}
	}

	snap := &models.RawSnapshot{
		ProcessNumber: number,
		Payload:       *raw,
		FetchedAt:     requestcontext.Now(ctx),
	}
	if err := s.stores.Snapshots.Save(ctx, snap); err != nil {
		return RefreshResult{}, fmt.Errorf("save snapshot for %s: %w", number, err)
	}

	// Header runs last: its freshness flip is the commit point.
	appended, err := s.events.Extract(ctx, proc, snap)
	if err != nil {
		return RefreshResult{}, err
	}
	if s.metrics != nil {
		s.metrics.EventsExtracted.Add(float64(appended))
	}

	written, err := s.parties.Extract(ctx, proc, snap)
	if err != nil {
		return RefreshResult{}, err
	}
	if s.metrics != nil {
		s.metrics.PartiesExtracted.Add(float64(written))
	}

	if err := s.header.Extract(ctx, proc, snap); err != nil {
		s.logger.WarnContext(ctx, "header extraction failed",
			"process", number,
			"error", err,
		)
		return RefreshResult{Number: number, Status: StatusFailed, Detail: err.Error()}, nil
	}

	s.logger.InfoContext(ctx, "process refreshed",
		"process", number,
		"events", appended,
		"parties", written,
	)
	return RefreshResult{Number: number, Status: StatusUpdated}, nil
}

// requireProcess loads the process, creating it stale when a refresh job
// arrives before discovery ever saw the number.
func (s *Service) requireProcess(ctx context.Context, number string) (*models.Process, error) {
	proc, err := s.stores.Processes.Find(ctx, number)
	if err == nil {
		return proc, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("find process %s: %w", number, err)
	}

	proc, err = models.NewProcess(number)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Processes.Create(ctx, proc); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return s.stores.Processes.Find(ctx, number)
		}
		return nil, fmt.Errorf("create process %s: %w", number, err)
	}
	return proc, nil
}
