package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"procsync/internal/eproc"
	"procsync/internal/jobs"
	"procsync/internal/platform/config"
	"procsync/internal/platform/httpserver"
	"procsync/internal/platform/kafka"
	"procsync/internal/platform/lock"
	"procsync/internal/platform/logger"
	"procsync/internal/platform/postgres"
	platformredis "procsync/internal/platform/redis"
	procmetrics "procsync/internal/process/metrics"
	"procsync/internal/process/service"
	"procsync/internal/process/store"
	"procsync/internal/reference"
	httptransport "procsync/internal/transport/http"
)

// main wires the pipeline: postgres stores, the registry client, the kafka
// job transport, the redis refresh lock, and the operational HTTP surface.
// Business logic lives in the internal service packages.
func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}

	// Without redis the per-process lock only excludes refreshes inside
	// this worker. Fine for a single replica, unsafe for more.
	var locker lock.Locker = lock.NewMemory()
	checks := []httptransport.HealthCheck{
		{Name: "postgres", Pinger: poolPinger{pool}},
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedis(redisClient.Client)
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Pinger: redisClient})
	} else {
		log.Warn("redis not configured, refresh locks are process-local")
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return err
	}
	defer producer.Close()
	if err := kafka.EnsureTopics(ctx, producer, cfg.JobsTopic); err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.JobsGroup, cfg.JobsTopic)
	if err != nil {
		return err
	}
	defer consumer.Close()

	stores := service.Stores{
		Processes: store.NewPostgresProcesses(pool),
		Snapshots: store.NewPostgresSnapshots(pool),
		Events:    store.NewPostgresEvents(pool),
		Parties:   store.NewPostgresParties(pool),
	}
	refs := reference.NewPostgres(pool)
	registry := eproc.NewHTTPClient(cfg.RegistryBaseURL, cfg.RegistryKey)
	dispatcher := jobs.NewKafkaDispatcher(producer, cfg.JobsTopic)
	metrics := procmetrics.New()

	svc := service.New(stores, refs, registry, dispatcher, locker,
		service.WithLogger(log),
		service.WithMetrics(metrics),
		service.WithLockTTL(cfg.RefreshLockTTL),
	)

	handler := httptransport.NewHandler(stores.Processes, stores.Events, stores.Parties, dispatcher, checks, cfg.SweepLimit, log)
	srv := httpserver.New(cfg.AdminAddr, httptransport.NewRouter(handler))

	worker := jobs.NewWorker(consumer, svc, log)
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(ctx)
	}()

	serverDone := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	log.Info("worker started",
		"admin_addr", cfg.AdminAddr,
		"jobs_topic", cfg.JobsTopic,
		"jobs_group", cfg.JobsGroup,
	)

	workerStopped := false
	select {
	case <-ctx.Done():
	case err := <-serverDone:
		if err != nil {
			return err
		}
	case err := <-workerDone:
		workerStopped = true
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	stop()

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	if !workerStopped {
		if err := <-workerDone; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

type poolPinger struct {
	pool *pgxpool.Pool
}

func (p poolPinger) Health(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
