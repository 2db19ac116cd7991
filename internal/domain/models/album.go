package models

import (
	"time"

	"github.com/google/uuid"
)

type AlbumTheme string

const (
	ThemeLight AlbumTheme = "light"
	ThemeDark  AlbumTheme = "dark"
	ThemeAuto  AlbumTheme = "auto"
)

// Album is an owned collection of media delivered to one client.
// PinHash is a bcrypt hash and must never leave the server.
type Album struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	PhotographerID   uuid.UUID  `json:"photographer_id" db:"photographer_id"`
	Title            string     `json:"title" db:"title"`
	Slug             string     `json:"slug" db:"slug"`
	ClientName       *string    `json:"client_name,omitempty" db:"client_name"`
	ClientEmail      *string    `json:"client_email,omitempty" db:"client_email"`
	ClientPhone      *string    `json:"client_phone,omitempty" db:"client_phone"`
	PinHash          []byte     `json:"-" db:"pin_hash"`
	CoverMediaID     *uuid.UUID `json:"cover_media_id,omitempty" db:"cover_media_id"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	DownloadEnabled  bool       `json:"download_enabled" db:"download_enabled"`
	SelectionEnabled bool       `json:"selection_enabled" db:"selection_enabled"`
	MaxSelections    *int       `json:"max_selections,omitempty" db:"max_selections"`
	Theme            AlbumTheme `json:"theme" db:"theme"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	ViewCount        int        `json:"view_count" db:"view_count"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
}

// HasPin reports whether the album is PIN protected.
func (a *Album) HasPin() bool {
	return len(a.PinHash) > 0
}

// IsExpired reports whether the album is past its expiry timestamp.
func (a *Album) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
