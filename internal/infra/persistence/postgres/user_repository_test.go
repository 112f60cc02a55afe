package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"identity/internal/domain/entity"
	domainerrors "identity/internal/domain/errors"
	"identity/internal/domain/repository"
	"identity/internal/infra/persistence/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

var userColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "ana", "a@x.com", "$2a$04$hash", now, now))

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "$2a$04$hash", user.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.FindByEmail(context.Background(), "missing@x.com")
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByUsername_DatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByUsername(context.Background(), "ana")
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &entity.User{Username: "ana", Email: "a@x.com", PasswordHash: "$2a$04$hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantFields []domainerrors.FieldError
	}{
		{
			name:       "email index",
			constraint: model.EmailIndex,
			wantFields: []domainerrors.FieldError{{Field: "email", Reason: domainerrors.ReasonTaken}},
		},
		{
			name:       "username index",
			constraint: model.UsernameIndex,
			wantFields: []domainerrors.FieldError{{Field: "username", Reason: domainerrors.ReasonTaken}},
		},
		{
			name:       "unknown constraint",
			constraint: "users_something",
			wantFields: []domainerrors.FieldError{
				{Field: "username", Reason: domainerrors.ReasonTaken},
				{Field: "email", Reason: domainerrors.ReasonTaken},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})

			err := repo.Create(context.Background(), &entity.User{Username: "ana", Email: "a@x.com", PasswordHash: "h"})

			var validationErr *domainerrors.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantFields, validationErr.Fields())
		})
	}
}

func TestUserRepository_Create_NotNullViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})

	err := repo.Create(context.Background(), &entity.User{Username: "ana"})
	assert.True(t, errors.Is(err, domainerrors.ErrUserCreationFailed))
}

func TestTransactionManager_Execute(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.Execute(context.Background(), func(f repository.RepositoryFactory) error {
			assert.NotNil(t, f.UserRepo())

			return nil
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("boom")
		err := tm.Execute(context.Background(), func(repository.RepositoryFactory) error {
			return sentinel
		})
		assert.True(t, errors.Is(err, sentinel))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
