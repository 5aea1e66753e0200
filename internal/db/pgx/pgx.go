// Package pgx owns the process-wide pgxpool.Pool backing TagRepository.
package pgx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kheina-com/tagsvc/config"
)

var pool *pgxpool.Pool
var m sync.Mutex

// InitPool opens the connection pool from cfg and verifies connectivity.
func InitPool(ctx context.Context, cfg config.Postgres) error {
	m.Lock()
	defer m.Unlock()

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?search_path=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Second
	}

	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pool = p
	return nil
}

// GetPool returns the process-wide pool. Callers must call InitPool during
// startup before this is used.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the pool, used during graceful shutdown.
func Close() {
	m.Lock()
	defer m.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}
