package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/Heinvv10/gaztime-sub000/internal/config"
	"github.com/Heinvv10/gaztime-sub000/internal/gateway/notify"
	"github.com/Heinvv10/gaztime-sub000/internal/http/handlers"
	"github.com/Heinvv10/gaztime-sub000/internal/http/middleware/ratelimit"
	"github.com/Heinvv10/gaztime-sub000/internal/http/router"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
	"github.com/Heinvv10/gaztime-sub000/internal/repository"
	"github.com/Heinvv10/gaztime-sub000/internal/service/dispatch"
	"github.com/Heinvv10/gaztime-sub000/internal/service/fulfillment"
	"github.com/Heinvv10/gaztime-sub000/internal/service/ledger"
	"github.com/Heinvv10/gaztime-sub000/internal/service/orderlock"
	"github.com/Heinvv10/gaztime-sub000/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
	worker    bool
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// ForWorker marks the container as a worker container: the Kafka consumer
// and event processor get registered instead of the HTTP layer.
func (b *ContainerBuilder) ForWorker() *ContainerBuilder {
	b.worker = true
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if b.worker {
		if err := registerWorker(container); err != nil {
			return nil, fmt.Errorf("worker: %w", err)
		}
		return container, nil
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the dispatch worker container.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().ForWorker().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	if err := provideAll(container,
		func() context.Context { return ctx },
		func() *log.Logger { return log.Default() },
		config.Load,
		NewLogger,
	); err != nil {
		return err
	}
	if err := container.Provide(newRateLimitExceededCounter, dig.Name("rate_limit_exceeded_total")); err != nil {
		return err
	}
	return container.Provide(newGatewayRetriesCounter, dig.Name("gateway_retries_total"))
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB, repository.NewStore)
}

type notifyGatewayIn struct {
	dig.In
	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

func newNotifyGateway(in notifyGatewayIn) *notify.RetryingGateway {
	base := notify.NewHTTPGateway(in.Cfg.Notify.BaseURL, nil)
	return notify.NewRetryingGateway(base, in.Logger, in.Retries, notify.RetryConfig{
		MaxAttempts: in.Cfg.Notify.MaxAttempts,
		BaseDelay:   in.Cfg.Notify.BaseDelay,
		MaxDelay:    in.Cfg.Notify.MaxDelay,
	})
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		orderlock.NewSet,
		newNotifyGateway,
		newDispatchMetrics,
		newFulfillmentMetrics,
		func() dispatch.Clock { return dispatch.RealClock{} },
		func(cfg *config.Config) (*kafka.Producer, error) {
			return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		},
		func(store *repository.Store, locks *orderlock.Set, gw *notify.RetryingGateway, cfg *config.Config, clock dispatch.Clock, logger logx.Logger, m dispatch.Metrics) *dispatch.Service {
			return dispatch.NewService(store, locks, gw, cfg.Dispatch, clock, logger, m)
		},
		func(store *repository.Store, cfg *config.Config, logger logx.Logger) *ledger.WalletService {
			return ledger.NewWalletService(store, store, cfg.OperationTimeout, logger)
		},
		func(store *repository.Store, cfg *config.Config, logger logx.Logger) *ledger.CylinderService {
			return ledger.NewCylinderService(store, store, cfg.OperationTimeout, logger)
		},
		func(store *repository.Store, locks *orderlock.Set, d *dispatch.Service, producer *kafka.Producer, gw *notify.RetryingGateway, cfg *config.Config, logger logx.Logger, m fulfillment.Metrics) *fulfillment.Service {
			return fulfillment.NewService(store, locks, d, producer, gw, cfg.Dispatch.MaxActiveDeliveries, cfg.OperationTimeout, logger, m)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(
		base *handlers.Handlers,
		orders *handlers.OrderHandler,
		offers *handlers.OfferHandler,
		drivers *handlers.DriverHandler,
		wallets *handlers.WalletHandler,
		cylinders *handlers.CylinderHandler,
		logger logx.Logger,
		rl *ratelimit.Middleware,
	) http.Handler {
		return router.New(router.Deps{
			Base:      base,
			Orders:    orders,
			Offers:    offers,
			Drivers:   drivers,
			Wallets:   wallets,
			Cylinders: cylinders,
			Logger:    logger,
			RateLimit: rl,
		})
	}
	return provideAll(container,
		handlers.New,
		handlers.NewOrderUsecase,
		handlers.NewOrderHandler,
		handlers.NewOfferUsecase,
		handlers.NewOfferHandler,
		handlers.NewDriverUsecase,
		handlers.NewDriverHandler,
		handlers.NewWalletUsecase,
		handlers.NewWalletHandler,
		handlers.NewCylinderUsecase,
		handlers.NewMovementUsecase,
		handlers.NewCylinderHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
