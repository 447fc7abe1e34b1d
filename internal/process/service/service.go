// Package service orchestrates the sync pipeline: discovery of changed
// process numbers, the staleness sweep, and the per-process refresh run that
// fetches the raw payload and drives the three extractors.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"procsync/internal/eproc"
	"procsync/internal/platform/lock"
	"procsync/internal/process/extract"
	procmetrics "procsync/internal/process/metrics"
	"procsync/internal/process/store"
	"procsync/internal/reference"
)

// Dispatcher hands refresh work to the external job transport. The service
// never runs refreshes inline from a sweep; policy around retries and worker
// pools belongs to the transport.
type Dispatcher interface {
	DispatchRefresh(ctx context.Context, number string) error
}

// Stores bundles the four persistence dependencies.
type Stores struct {
	Processes store.ProcessStore
	Snapshots store.SnapshotStore
	Events    store.EventStore
	Parties   store.PartyStore
}

// Service coordinates discovery, sweeping and refreshing of processes.
type Service struct {
	stores     Stores
	refs       reference.Resolver
	registry   eproc.Client
	dispatcher Dispatcher
	locker     lock.Locker

	header  *extract.Header
	events  *extract.Events
	parties *extract.Parties

	// group collapses concurrent refreshes of the same number inside this
	// worker; the locker excludes refreshes across workers.
	group   singleflight.Group
	lockTTL time.Duration

	logger  *slog.Logger
	metrics *procmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *procmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLockTTL overrides how long a refresh may hold its per-process lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.lockTTL = ttl
	}
}

// New constructs a Service.
func New(stores Stores, refs reference.Resolver, registry eproc.Client, dispatcher Dispatcher, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		stores:     stores,
		refs:       refs,
		registry:   registry,
		dispatcher: dispatcher,
		locker:     locker,
		lockTTL:    5 * time.Minute,
		logger:     slog.Default(),
		tracer:     otel.Tracer("procsync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.header = extract.NewHeader(stores.Processes, refs)
	s.events = extract.NewEvents(stores.Events, refs, s.logger)
	s.parties = extract.NewParties(stores.Parties, s.logger)
	return s
}
