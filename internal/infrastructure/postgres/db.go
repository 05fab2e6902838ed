package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultApplicationName tags fund ledger sessions in pg_stat_activity.
const DefaultApplicationName = "fundledger"

// PoolConfig holds connection pool settings. Zero values keep the pgxpool
// defaults, except ApplicationName which falls back to DefaultApplicationName.
type PoolConfig struct {
	DatabaseURL     string
	ApplicationName string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

func (c PoolConfig) parse() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if c.MaxConns > 0 {
		config.MaxConns = int32(min(c.MaxConns, 1<<15))
	}
	if c.MinConns > 0 {
		config.MinConns = min(int32(min(c.MinConns, 1<<15)), config.MaxConns)
	}
	if c.MaxConnLifetime > 0 {
		config.MaxConnLifetime = c.MaxConnLifetime
	}

	name := c.ApplicationName
	if name == "" {
		name = DefaultApplicationName
	}
	config.ConnConfig.RuntimeParams["application_name"] = name

	return config, nil
}

// Open creates the pool and pings the database once before returning it.
func Open(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := cfg.parse()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
