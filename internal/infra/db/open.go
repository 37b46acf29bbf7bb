// Package db opens the Postgres pool shared by the API and the worker and
// applies the embedded schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	envconfig "tlwd-backend/pkg/config"
)

const pingTimeout = 5 * time.Second

// PoolConfig sizes the database/sql pool. Render's starter Postgres allows
// roughly 100 connections shared by the API and the worker.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpen:     25,
		MaxIdle:     10,
		MaxLifetime: time.Hour,
		MaxIdleTime: 30 * time.Minute,
	}
}

// PoolConfigFromEnv overlays DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Non-positive values keep
// the default.
func PoolConfigFromEnv() PoolConfig {
	cfg := DefaultPoolConfig()
	cfg.MaxOpen = envconfig.GetEnvPositiveInt("DB_MAX_OPEN_CONNS", cfg.MaxOpen)
	cfg.MaxIdle = envconfig.GetEnvPositiveInt("DB_MAX_IDLE_CONNS", cfg.MaxIdle)
	cfg.MaxLifetime = positive(envconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", cfg.MaxLifetime), cfg.MaxLifetime)
	cfg.MaxIdleTime = positive(envconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.MaxIdleTime), cfg.MaxIdleTime)
	return cfg
}

func (c PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(c.MaxOpen)
	db.SetMaxIdleConns(c.MaxIdle)
	db.SetConnMaxLifetime(c.MaxLifetime)
	db.SetConnMaxIdleTime(c.MaxIdleTime)
}

// Open connects to dsn through the pgx stdlib driver and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := PoolConfigFromEnv()
	cfg.apply(db)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database ready",
		slog.Int("max_open", cfg.MaxOpen),
		slog.Int("max_idle", cfg.MaxIdle),
		slog.Duration("max_lifetime", cfg.MaxLifetime))
	return db, nil
}

func positive(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
