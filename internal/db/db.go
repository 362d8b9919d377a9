package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/haythamforever/HonorHub/internal/metrics"
	"github.com/haythamforever/HonorHub/migrations"
)

// Open creates a pgx pool for databaseURL and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the database and records availability and latency.
func Ping(ctx context.Context, p Pinger) error {
	start := time.Now()
	err := p.Ping(ctx)
	metrics.ObserveProbe(metrics.DependencyPostgres, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Migrate runs a goose subcommand (up, down, status) against the embedded
// migrations.
func Migrate(subcmd, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch subcmd {
	case "up":
		return goose.Up(conn, migrations.Dir)
	case "down":
		return goose.Down(conn, migrations.Dir)
	case "status":
		return goose.Status(conn, migrations.Dir)
	default:
		return fmt.Errorf("unsupported migrate subcommand %q", subcmd)
	}
}
