package dto

import (
	"time"

	"lensdrop/internal/domain/models"

	"github.com/google/uuid"
)

// VisitorInfo identifies the requester for analytics purposes only.
type VisitorInfo struct {
	ClientIP  string
	UserAgent string
}

// GalleryLocked is returned for a PIN-protected album before the PIN has
// been presented. Everything beyond the title stays hidden.
type GalleryLocked struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	PinRequired bool      `json:"pin_required"`
}

// GalleryView is the public, unlocked view of an album. No storage keys, no
// PIN hash, no client contact details.
type GalleryView struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	CoverMediaID     *uuid.UUID        `json:"cover_media_id,omitempty"`
	DownloadEnabled  bool              `json:"download_enabled"`
	SelectionEnabled bool              `json:"selection_enabled"`
	MaxSelections    *int              `json:"max_selections,omitempty"`
	Theme            models.AlbumTheme `json:"theme"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	Media            []GalleryMedia    `json:"media"`
}

// GalleryMedia is one item as visitors see it. A photo whose derivation has
// not finished falls back to its original URL.
type GalleryMedia struct {
	ID           uuid.UUID        `json:"id"`
	MediaType    models.MediaType `json:"media_type"`
	OptimizedURL string           `json:"optimized_url"`
	ThumbnailURL string           `json:"thumbnail_url"`
	Width        *int             `json:"width,omitempty"`
	Height       *int             `json:"height,omitempty"`
	SortOrder    int              `json:"sort_order"`
}

type UnlockInput struct {
	Pin string `json:"pin" validate:"required,max=32"`
}

// DownloadGrant is the response to a download request: a time-limited URL
// for the original bytes.
type DownloadGrant struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
