package records

import (
	"context"
	"fmt"

	"dupscore/internal/config"
)

// Open builds the record store selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open records: config is nil")
	}
	switch cfg.Store.Backend {
	case config.BackendSQLite, "":
		return OpenSQLite(ctx, cfg.Paths.Database, cfg.Store.Table)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.RedisPrefix)
	default:
		return nil, fmt.Errorf("open records: unknown backend %q", cfg.Store.Backend)
	}
}
