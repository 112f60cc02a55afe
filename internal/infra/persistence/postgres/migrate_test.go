package postgres

import (
	"context"
	"database/sql"
	"io/fs"
	"testing"

	"identity/internal/infra/persistence/migrations"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "00001_create_users.sql")

	body, err := fs.ReadFile(migrations.FS, "00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "idx_users_username")
	assert.Contains(t, string(body), "idx_users_email")
}

func TestRunMigrations(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	t.Run("runs from embedded root", func(t *testing.T) {
		var gotDir string
		gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
			gotDir = dir

			return nil
		}

		require.NoError(t, RunMigrations(context.Background(), nil))
		assert.Equal(t, ".", gotDir)
	})

	t.Run("wraps goose failure", func(t *testing.T) {
		gooseUp = func(context.Context, *sql.DB, string) error {
			return errors.New("dirty database")
		}

		err := RunMigrations(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to run migrations")
	})
}
