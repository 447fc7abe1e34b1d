package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procsync/internal/eproc"
	"procsync/internal/process/models"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/requestcontext"
)

// ErrNoChangedProcesses is returned when the registry answers the window
// query with an empty list. The invoking scheduler owns retry policy for
// this and for transport failures alike.
var ErrNoChangedProcesses = errors.New("registry returned no changed processes")

// DiscoveryResult summarizes one discovery run.
type DiscoveryResult struct {
	// Created counts processes seen for the first time.
	Created int
	// Marked counts known processes flipped back to stale.
	Marked int
}

// DiscoverChanged queries the registry for process numbers changed inside
// [start, end] and makes sure each exists locally in the stale state.
// New processes are created with an empty header; known ones are only
// flipped to fresh=false.
func (s *Service) DiscoverChanged(ctx context.Context, tier string, start, end time.Time, maxResults, page int) (DiscoveryResult, error) {
	numbers, err := s.registry.ListChanged(ctx, eproc.ChangedQuery{
		Tier:       tier,
		Start:      start,
		End:        end,
		MaxResults: maxResults,
		Page:       page,
	})
	if err != nil {
		return DiscoveryResult{}, fmt.Errorf("list changed processes (tier %s): %w", tier, err)
	}
	if len(numbers) == 0 {
		return DiscoveryResult{}, ErrNoChangedProcesses
	}

	var result DiscoveryResult
	for _, number := range numbers {
		created, err := s.markStale(ctx, number, tier)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
			if s.metrics != nil {
				s.metrics.ProcessesDiscovered.Inc()
			}
		} else {
			result.Marked++
		}
	}

	s.logger.InfoContext(ctx, "discovery finished",
		"tier", tier,
		"created", result.Created,
		"marked", result.Marked,
	)
	return result, nil
}

// DiscoverWindow runs DiscoverChanged over the trailing window ending now,
// truncated to minute precision.
func (s *Service) DiscoverWindow(ctx context.Context, tier string, window time.Duration, maxResults, page int) (DiscoveryResult, error) {
	end := requestcontext.Now(ctx).Truncate(time.Minute)
	start := end.Add(-window)
	return s.DiscoverChanged(ctx, tier, start, end, maxResults, page)
}

// markStale ensures a process exists and is flagged for re-fetch. Returns
// whether the process was newly created.
func (s *Service) markStale(ctx context.Context, number, tier string) (bool, error) {
	proc, err := s.stores.Processes.Find(ctx, number)
	switch {
	case err == nil:
		proc.Fresh = false
		if err := s.stores.Processes.Save(ctx, proc); err != nil {
			return false, fmt.Errorf("mark process %s stale: %w", number, err)
		}
		return false, nil

	case errors.Is(err, sentinel.ErrNotFound):
		proc, err := models.NewProcess(number)
		if err != nil {
			return false, err
		}
		proc.Tier = tier
		if err := s.stores.Processes.Create(ctx, proc); err != nil {
			// Lost a race with a concurrent discovery; the other run
			// already created it stale.
			if errors.Is(err, sentinel.ErrConflict) {
				return false, nil
			}
			return false, fmt.Errorf("create process %s: %w", number, err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("find process %s: %w", number, err)
	}
}
