package store

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/config"
	"cashflow/internal/db"
	"cashflow/internal/game"
)

// Open builds the backend named by cfg.Store. The returned func releases
// any connection it holds.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (game.Store, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		s := NewPostgres(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres store")
		return s, pool.Close, nil
	default:
		s, err := NewFile(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file store", "dir", s.Dir())
		return s, func() {}, nil
	}
}
