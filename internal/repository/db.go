// Package repository persists card definitions in Postgres.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/config"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS card_definitions (
	deck         TEXT        NOT NULL,
	position     INTEGER     NOT NULL,
	name         TEXT        NOT NULL,
	card_type    TEXT        NOT NULL,
	cost         INTEGER     NOT NULL CHECK (cost >= 0),
	rarity       TEXT        NOT NULL,
	attack       INTEGER     NOT NULL DEFAULT 0,
	health       INTEGER     NOT NULL DEFAULT 0,
	effect       TEXT        NOT NULL DEFAULT '',
	power        INTEGER     NOT NULL DEFAULT 0,
	target_count INTEGER     NOT NULL DEFAULT 0,
	target_mode  TEXT        NOT NULL DEFAULT '',
	durability   INTEGER,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (deck, position)
);
CREATE INDEX IF NOT EXISTS card_definitions_name_idx ON card_definitions (name);
`

// DB wraps the connection pool.
type DB struct {
	*pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to Postgres and ensures the schema exists.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(connectCtx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("connected to database",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &DB{Pool: pool, logger: logger}, nil
}
