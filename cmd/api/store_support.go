package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourusername/auth-api/internal/config"
	"github.com/yourusername/auth-api/internal/users"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// setupStore は DATABASE_URL から認証情報ストアを作成します。
// 未設定やマイグレーション失敗では終了せず、縮退運転のまま起動します。
func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (users.Store, error) {
	store, err := users.Open(cfg.DatabaseURL, users.OpenOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		logger.Warn("store.disabled", "reason", "DATABASE_URL is not set; signup and login will report the store as unavailable")
		return store, nil
	}

	if m, ok := store.(migrator); ok {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := m.Migrate(migrateCtx); err != nil {
			logger.Warn("store.migrate.fail", "err", err)
		} else {
			logger.Info("store.migrate.ok")
		}
	}
	return store, nil
}
