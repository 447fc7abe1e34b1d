package service

import (
	"context"
	"fmt"
)

// SweepStale enumerates processes with fresh=false, up to limit (<= 0 means
// all), and dispatches one refresh job per number. It performs no extraction
// itself and does not deduplicate in-flight work; that exclusion happens
// inside Refresh.
func (s *Service) SweepStale(ctx context.Context, limit int) (int, error) {
	numbers, err := s.stores.Processes.ListStale(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale processes: %w", err)
	}

	dispatched := 0
	for _, number := range numbers {
		if err := s.dispatcher.DispatchRefresh(ctx, number); err != nil {
			return dispatched, fmt.Errorf("dispatch refresh for %s: %w", number, err)
		}
		dispatched++
	}

	s.logger.InfoContext(ctx, "staleness sweep finished",
		"stale", len(numbers),
		"dispatched", dispatched,
	)
	return dispatched, nil
}
