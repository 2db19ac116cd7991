package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a photographer account that owns albums.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	StudioName   string    `db:"studio_name" json:"studio_name"`
	Password     []byte    `db:"password" json:"-"`
	RegisteredAt time.Time `db:"registered_at,omitempty" json:"registered_at,omitempty"`
	LastLogin    time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}
