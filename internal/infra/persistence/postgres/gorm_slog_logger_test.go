package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"identity/config"
	deliverycontext "identity/internal/delivery/context"
	"identity/internal/domain/entity"
	"identity/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedGormLogger(debug bool) (logger.Interface, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return newGormSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), cfg), buf
}

func TestGormSlogLogger_ParamsFilterDropsValues(t *testing.T) {
	l, _ := newBufferedGormLogger(false)
	filter, ok := l.(gorm.ParamsFilter)
	assert.True(t, ok)

	sql, params := filter.ParamsFilter(context.Background(), `INSERT INTO "users" ("password_hash") VALUES ($1)`, "$2a$10$secret")

	assert.Equal(t, `INSERT INTO "users" ("password_hash") VALUES ($1)`, sql)
	assert.Empty(t, params)
}

func TestGormSlogLogger_CreateNeverLogsPasswordHash(t *testing.T) {
	l, buf := newBufferedGormLogger(true)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 l,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	const hash = "$2a$04$abcdefghijklmnopqrstuuSecretHashValue"
	user := &entity.User{Username: "ana", Email: "a@x.com", PasswordHash: hash}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Contains(t, buf.String(), "GORM query")
	assert.Contains(t, buf.String(), `INSERT INTO \"users\"`)
	assert.NotContains(t, buf.String(), hash)
	assert.NotContains(t, buf.String(), "a@x.com")
}

func TestGormSlogLogger_Trace(t *testing.T) {
	stmt := func() (string, int64) { return `SELECT * FROM "users" WHERE email = $1`, 1 }

	tests := []struct {
		name    string
		debug   bool
		err     error
		wantLog string
	}{
		{name: "query failure", err: errors.New("connection reset"), wantLog: "GORM query failed"},
		{name: "record not found is quiet", err: gorm.ErrRecordNotFound},
		{
			name: "unique violation is quiet",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"},
		},
		{name: "success quiet outside debug"},
		{name: "success logged in debug", debug: true, wantLog: "GORM query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferedGormLogger(tt.debug)

			l.Trace(context.Background(), time.Now(), stmt, tt.err)

			if tt.wantLog == "" {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), "email = $1")
		})
	}
}

func TestGormSlogLogger_UsesRequestLogger(t *testing.T) {
	l, base := newBufferedGormLogger(true)
	scoped := &bytes.Buffer{}
	ctx := deliverycontext.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(scoped, nil)).With(slog.String("request_id", "req-1")))

	l.Error(ctx, "failed %s", "here")

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), `"request_id":"req-1"`)
	assert.Contains(t, scoped.String(), "failed here")
}
