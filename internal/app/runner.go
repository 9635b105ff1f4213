package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"github.com/Heinvv10/gaztime-sub000/internal/config"
	"github.com/Heinvv10/gaztime-sub000/internal/http/pprofserver"
)

// MustRun starts the HTTP server using the provided DI container
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(func(server *http.Server, ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, logger *log.Logger) error {
		startPprof(cfg, logger)
		startServer(server, logger)
		waitForShutdown(ctx, logger)
		gracefulShutdown(server, logger, 15*time.Second)
		closeResources(pool, server, logger)
		return nil
	})
}

// startPprof serves the profiling endpoints on a separate loopback-guarded
// port so they never share a listener with the public API.
func startPprof(cfg *config.Config, logger *log.Logger) {
	if cfg.PprofPort <= 0 {
		return
	}
	go func() {
		addr := fmt.Sprintf("localhost:%d", cfg.PprofPort)
		srv := &http.Server{
			Addr:              addr,
			Handler:           pprofserver.Handler(pprofserver.Config{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		logger.Printf("pprof listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("pprof listen error: %v", err)
		}
	}()
}

func startServer(server *http.Server, logger *log.Logger) {
	go func() {
		logger.Printf("gaztime-api listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()
}

func waitForShutdown(ctx context.Context, logger *log.Logger) {
	<-ctx.Done()
	logger.Println("shutting down gaztime-api...")
}

func gracefulShutdown(srv *http.Server, logger *log.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}

func closeResources(pool *pgxpool.Pool, server *http.Server, logger *log.Logger) {
	if err := server.Close(); err != nil {
		logger.Printf("server close error: %v", err)
	}
	pool.Close()
}
