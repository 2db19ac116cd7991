package dto

import (
	"time"

	"lensdrop/internal/domain/models"

	"github.com/google/uuid"
)

type CreateAlbumInput struct {
	Title            string     `json:"title" validate:"required,max=200"`
	ClientName       *string    `json:"client_name,omitempty" validate:"omitempty,max=200"`
	ClientEmail      *string    `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientPhone      *string    `json:"client_phone,omitempty" validate:"omitempty,max=30"`
	Pin              *string    `json:"pin,omitempty" validate:"omitempty,min=4,max=32"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	DownloadEnabled  bool       `json:"download_enabled"`
	SelectionEnabled bool       `json:"selection_enabled"`
	MaxSelections    *int       `json:"max_selections,omitempty" validate:"omitempty,min=1"`
	Theme            string     `json:"theme" validate:"omitempty,oneof=light dark auto"`
}

// UpdateAlbumInput carries a partial update: nil fields stay untouched.
// A Pin of "" removes PIN protection; a non-empty Pin replaces it.
type UpdateAlbumInput struct {
	Title            *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	ClientName       *string    `json:"client_name,omitempty" validate:"omitempty,max=200"`
	ClientEmail      *string    `json:"client_email,omitempty" validate:"omitempty,email"`
	ClientPhone      *string    `json:"client_phone,omitempty" validate:"omitempty,max=30"`
	Pin              *string    `json:"pin,omitempty" validate:"omitempty,max=32"`
	CoverMediaID     *uuid.UUID `json:"cover_media_id,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	DownloadEnabled  *bool      `json:"download_enabled,omitempty"`
	SelectionEnabled *bool      `json:"selection_enabled,omitempty"`
	MaxSelections    *int       `json:"max_selections,omitempty" validate:"omitempty,min=1"`
	Theme            *string    `json:"theme,omitempty" validate:"omitempty,oneof=light dark auto"`
	IsActive         *bool      `json:"is_active,omitempty"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
}

// AlbumDetail is the owner's view of an album: the full record plus its
// media count.
type AlbumDetail struct {
	Album      models.Album `json:"album"`
	MediaCount int          `json:"media_count"`
}
