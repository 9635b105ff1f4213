package app

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"github.com/Heinvv10/gaztime-sub000/internal/config"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/events"
	"github.com/Heinvv10/gaztime-sub000/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(d *dispatch.Service) *events.Processor {
			return events.NewProcessor(d)
		},
		func(cfg *config.Config, p *events.Processor) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, p.Handle)
		},
	)
}

// WorkerRunner runs the dispatch worker: the Kafka event consumer plus the
// periodic offer-expiry sweep.
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	consumer *kafka.Consumer,
	dispatcher *dispatch.Service,
	cfg *config.Config,
) error {
	defer closeWorker(pool, logger, consumer)

	logger.Info("dispatch-worker started",
		logx.Duration("sweep_interval", cfg.Dispatch.SweepInterval),
	)

	// nil consumer (no Kafka configured) exits immediately; the sweep then
	// carries dispatch alone, driven by polling.
	consumerDone := make(chan error, 1)
	go func() { consumerDone <- consumer.Run(ctx) }()

	ticker := time.NewTicker(cfg.Dispatch.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-consumerDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			consumerDone = nil
		case <-ticker.C:
			if err := dispatcher.Sweep(ctx); err != nil {
				logger.Error("sweep failed", logx.Err(err))
			}
		}
	}
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, kafkaConsumer *kafka.Consumer) {
	if err := kafkaConsumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Err(err))
	}
	if pool != nil {
		pool.Close()
	}
}
