package postgres

import (
	"context"
	"database/sql"

	"identity/internal/infra/persistence/migrations"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// gooseUp is swapped in tests to avoid touching a real database.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := gooseUp(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	return nil
}
