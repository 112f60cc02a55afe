package postgres

import (
	"identity/internal/infra/persistence/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// uniqueViolation reports whether err is a unique-constraint violation and,
// when the driver exposes it, the name of the violated constraint.
func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgerrcode.UniqueViolation
	}

	// Translated by GORM when TranslateError is enabled; the constraint name is lost.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	return "", false
}

func isNotNullConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.NotNullViolation
	}

	return false
}

// userFieldForConstraint maps a users index to the input field it guards.
func userFieldForConstraint(constraint string) string {
	switch constraint {
	case model.UsernameIndex:
		return "username"
	case model.EmailIndex:
		return "email"
	default:
		return ""
	}
}
