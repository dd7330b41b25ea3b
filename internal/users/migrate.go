package users

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/yourusername/auth-api/internal/users/migrations"
)

// gooseUpContext はテストで差し替えるための seam です。
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations は埋め込み SQL を goose で適用します。
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
