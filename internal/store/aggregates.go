// Package store persists database-ready aggregate values to PostgreSQL.
//
// Only the reduced aggregates are stored; raw uploads never reach the
// database. The store is optional: without a configured DATABASE_URL the
// service runs without it.
package store

import (
	"context"
	"fmt"

	"github.com/ShirinGhmm/Thickness-files/internal/config"
	"github.com/ShirinGhmm/Thickness-files/internal/thickness"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS thickness_aggregates (
	id              UUID PRIMARY KEY,
	source_format   TEXT NOT NULL,
	column_name     TEXT NOT NULL,
	sample_count    INTEGER NOT NULL,
	min_thickness   DOUBLE PRECISION NOT NULL,
	max_thickness   DOUBLE PRECISION NOT NULL,
	mean_thickness  DOUBLE PRECISION NOT NULL,
	std_dev         DOUBLE PRECISION NOT NULL,
	ma_window       INTEGER NOT NULL,
	moving_average  DOUBLE PRECISION[] NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// AggregateStore writes aggregate values through a pgx connection pool.
type AggregateStore struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, verifies the connection, and ensures the
// aggregate table exists.
func New(ctx context.Context, cfg config.DatabaseConfig) (*AggregateStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure thickness_aggregates table: %w", err)
	}

	return &AggregateStore{pool: pool}, nil
}

// SaveAggregates inserts one aggregate row tagged with the source format.
func (s *AggregateStore) SaveAggregates(ctx context.Context, format string, agg *thickness.AggregateValues) error {
	const q = `
		INSERT INTO thickness_aggregates (
			id, source_format, column_name, sample_count,
			min_thickness, max_thickness, mean_thickness, std_dev,
			ma_window, moving_average
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, q,
		uuid.New(), format, agg.Column, agg.Count,
		agg.MinThickness, agg.MaxThickness, agg.MeanThickness, agg.StdDev,
		agg.MAWindow, agg.MovingAverage,
	)
	if err != nil {
		return fmt.Errorf("insert thickness aggregates: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *AggregateStore) Close() {
	s.pool.Close()
}
