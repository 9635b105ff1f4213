//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var tcPool *pgxpool.Pool

var tcDSN string

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after conn string error: %v", termErr)
		}
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after pool create error: %v", termErr)
		}
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after ping error: %v", termErr)
		}
		log.Fatalf("failed to ping postgres in testcontainer: %v", err)
	}

	tcPool = pool
	tcDSN = connStr

	if err := createTables(ctx, tcPool); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after createTables error: %v", termErr)
		}
		log.Fatalf("failed to create test tables: %v", err)
	}

	code := m.Run()

	pool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}

	os.Exit(code)
}

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"orders", `
			CREATE TABLE IF NOT EXISTS orders (
				id               UUID PRIMARY KEY,
				reference        TEXT NOT NULL UNIQUE,
				customer_id      UUID NOT NULL,
				channel          TEXT NOT NULL,
				status           TEXT NOT NULL,
				items            JSONB NOT NULL,
				delivery_address JSONB,
				delivery_fee     NUMERIC(12,2) NOT NULL DEFAULT 0,
				payment_method   TEXT NOT NULL,
				payment_status   TEXT NOT NULL,
				driver_id        UUID,
				pod_id           UUID,
				delivery_otp     TEXT NOT NULL DEFAULT '',
				proof            JSONB,
				cash_collected   NUMERIC(12,2),
				cancel_reason    TEXT NOT NULL DEFAULT '',
				rating           INT,
				created_at       TIMESTAMPTZ NOT NULL,
				confirmed_at     TIMESTAMPTZ,
				assigned_at      TIMESTAMPTZ,
				picked_up_at     TIMESTAMPTZ,
				delivered_at     TIMESTAMPTZ,
				completed_at     TIMESTAMPTZ,
				cancelled_at     TIMESTAMPTZ
			);
		`},
		{"drivers", `
			CREATE TABLE IF NOT EXISTS drivers (
				id               UUID PRIMARY KEY,
				name             TEXT NOT NULL,
				phone            TEXT NOT NULL UNIQUE,
				status           TEXT NOT NULL,
				lat              DOUBLE PRECISION,
				lng              DOUBLE PRECISION,
				active_orders    INT NOT NULL DEFAULT 0,
				rating_avg       DOUBLE PRECISION NOT NULL DEFAULT 0,
				rating_count     INT NOT NULL DEFAULT 0,
				total_deliveries INT NOT NULL DEFAULT 0,
				hired_at         TIMESTAMPTZ NOT NULL,
				last_seen_at     TIMESTAMPTZ
			);
		`},
		{"cylinders", `
			CREATE TABLE IF NOT EXISTS cylinders (
				id                UUID PRIMARY KEY,
				serial_number     TEXT NOT NULL UNIQUE,
				size_kg           NUMERIC(6,2) NOT NULL,
				status            TEXT NOT NULL,
				fill_count        INT NOT NULL DEFAULT 0,
				last_inspected_at TIMESTAMPTZ,
				created_at        TIMESTAMPTZ NOT NULL
			);
		`},
		{"cylinder_movements", `
			CREATE TABLE IF NOT EXISTS cylinder_movements (
				id          UUID PRIMARY KEY,
				cylinder_id UUID NOT NULL REFERENCES cylinders(id),
				from_type   TEXT NOT NULL,
				from_id     UUID NOT NULL,
				to_type     TEXT NOT NULL,
				to_id       UUID NOT NULL,
				actor_id    UUID NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`},
		{"wallets", `
			CREATE TABLE IF NOT EXISTS wallets (
				customer_id UUID PRIMARY KEY
			);
		`},
		{"wallet_transactions", `
			CREATE TABLE IF NOT EXISTS wallet_transactions (
				id          UUID PRIMARY KEY,
				customer_id UUID NOT NULL,
				type        TEXT NOT NULL,
				amount      NUMERIC(12,2) NOT NULL,
				reference   TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL
			);
		`},
		{"dispatch_offers", `
			CREATE TABLE IF NOT EXISTS dispatch_offers (
				id          UUID PRIMARY KEY,
				order_id    UUID NOT NULL,
				driver_id   UUID NOT NULL,
				state       TEXT NOT NULL,
				offered_at  TIMESTAMPTZ NOT NULL,
				expires_at  TIMESTAMPTZ NOT NULL,
				resolved_at TIMESTAMPTZ
			);
			CREATE UNIQUE INDEX IF NOT EXISTS dispatch_offers_pending_order
				ON dispatch_offers (order_id) WHERE state = 'pending';
		`},
	}

	for _, st := range stmts {
		if _, err := pool.Exec(ctx, st.sql); err != nil {
			return fmt.Errorf("create %s table: %w", st.name, err)
		}
	}
	return nil
}
