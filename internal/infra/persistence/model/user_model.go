// Package model holds the GORM persistence models. They never leave the infra layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Index names double as the constraint names reported by PostgreSQL on a
// unique violation.
const (
	UsernameIndex = "idx_users_username"
	EmailIndex    = "idx_users_email"
)

// UserModel mirrors the 'users' table. IDs are generated in Go before insert.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_users_username"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
