package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"procsync/internal/process/service"
	"procsync/pkg/requestcontext"
)

// Handler is the slice of the pipeline the worker drives.
type Handler interface {
	Refresh(ctx context.Context, number string) (service.RefreshResult, error)
	DiscoverWindow(ctx context.Context, tier string, window time.Duration, maxResults, page int) (service.DiscoveryResult, error)
	SweepStale(ctx context.Context, limit int) (int, error)
}

// Worker consumes job envelopes from the jobs topic and routes them to the
// pipeline. A job failure is logged and committed; redelivery policy belongs
// to whoever enqueues, not to this loop.
type Worker struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

func NewWorker(client *kgo.Client, handler Handler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{client: client, handler: handler, logger: logger}
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		fetches := w.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			w.logger.ErrorContext(ctx, "fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		fetches.EachRecord(func(record *kgo.Record) {
			w.handle(ctx, record)
		})

		if err := w.client.CommitUncommittedOffsets(ctx); err != nil {
			w.logger.ErrorContext(ctx, "commit offsets", "error", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, record *kgo.Record) {
	envelope, err := DecodeEnvelope(record.Value)
	if err != nil {
		w.logger.ErrorContext(ctx, "dropping undecodable job",
			"key", string(record.Key),
			"error", err,
		)
		return
	}

	ctx = requestcontext.WithJobID(ctx, envelope.ID)

	switch envelope.Kind {
	case KindRefresh:
		result, err := w.handler.Refresh(ctx, envelope.Number)
		if err != nil {
			w.logger.ErrorContext(ctx, "refresh job failed",
				"process", envelope.Number,
				"error", err,
			)
			return
		}
		w.logger.InfoContext(ctx, result.String())

	case KindDiscover:
		window := time.Duration(envelope.WindowMinutes) * time.Minute
		result, err := w.handler.DiscoverWindow(ctx, envelope.Tier, window, envelope.MaxResults, envelope.Page)
		if err != nil {
			if errors.Is(err, service.ErrNoChangedProcesses) {
				w.logger.InfoContext(ctx, "discovery found no changed processes", "tier", envelope.Tier)
				return
			}
			w.logger.ErrorContext(ctx, "discovery job failed",
				"tier", envelope.Tier,
				"error", err,
			)
			return
		}
		w.logger.InfoContext(ctx, "discovery job finished",
			"tier", envelope.Tier,
			"created", result.Created,
			"marked", result.Marked,
		)

	case KindSweep:
		dispatched, err := w.handler.SweepStale(ctx, envelope.Limit)
		if err != nil {
			w.logger.ErrorContext(ctx, "sweep job failed", "error", err)
			return
		}
		w.logger.InfoContext(ctx, "sweep job finished",
			"dispatched", dispatched,
			"limit", envelope.Limit,
		)

	default:
		w.logger.WarnContext(ctx, "unknown job kind, skipping",
			"kind", string(envelope.Kind),
		)
	}
}
