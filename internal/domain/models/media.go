package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// DeriveStatus tracks the derivation task lifecycle for a media item.
type DeriveStatus string

const (
	// DerivePending: the original slot is reserved, renditions not produced yet.
	DerivePending DeriveStatus = "pending"
	// DeriveDone: optimized and thumbnail renditions are stored.
	DeriveDone DeriveStatus = "done"
	// DeriveFailed: derivation errored; the sweeper will retry it.
	DeriveFailed DeriveStatus = "failed"
	// DeriveExhausted: derivation failed every allowed retry; the gallery
	// serves the original only. Terminal, never picked up by the sweeper.
	DeriveExhausted DeriveStatus = "exhausted"
	// DeriveSkipped: derivation does not apply (videos).
	DeriveSkipped DeriveStatus = "skipped"
)

// Media is one photo or video belonging to exactly one album.
//
// A media row is in one of three lifecycle states: reserved (original key
// allocated, bytes not yet confirmed), uploaded (bytes present, renditions
// absent) and derived (optimized + thumbnail populated). Storage keys are
// persisted alongside public URLs so no component ever has to parse a key
// back out of a URL.
type Media struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	AlbumID          uuid.UUID    `json:"album_id" db:"album_id"`
	MediaType        MediaType    `json:"media_type" db:"media_type"`
	OriginalFilename string       `json:"original_filename" db:"original_filename"`
	OriginalKey      string       `json:"-" db:"original_key"`
	OriginalURL      string       `json:"original_url" db:"original_url"`
	OptimizedKey     *string      `json:"-" db:"optimized_key"`
	OptimizedURL     *string      `json:"optimized_url,omitempty" db:"optimized_url"`
	ThumbnailKey     *string      `json:"-" db:"thumbnail_key"`
	ThumbnailURL     *string      `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Width            *int         `json:"width,omitempty" db:"width"`
	Height           *int         `json:"height,omitempty" db:"height"`
	SizeBytes        int64        `json:"size_bytes" db:"size_bytes"`
	MimeType         string       `json:"mime_type" db:"mime_type"`
	SortOrder        int          `json:"sort_order" db:"sort_order"`
	DeriveStatus     DeriveStatus `json:"derive_status" db:"derive_status"`
	ViewCount        int          `json:"view_count" db:"view_count"`
	DownloadCount    int          `json:"download_count" db:"download_count"`
	UploadedAt       time.Time    `json:"uploaded_at" db:"uploaded_at"`
}

// DerivedAssets is the payload written in a single update when derivation
// succeeds: both rendition locations plus the original's intrinsic size.
type DerivedAssets struct {
	OptimizedKey string
	OptimizedURL string
	ThumbnailKey string
	ThumbnailURL string
	Width        int
	Height       int
}

// MediaTypeFor classifies a MIME content type: anything under video/ is a
// video, everything else is treated as a photo.
func MediaTypeFor(contentType string) MediaType {
	if strings.HasPrefix(contentType, "video/") {
		return MediaTypeVideo
	}
	return MediaTypePhoto
}

// Validate проверяет корректность данных медиафайла
func (m *Media) Validate() error {
	var validationErrors []string

	if m.AlbumID == uuid.Nil {
		validationErrors = append(validationErrors, "album ID is required")
	}
	if m.OriginalFilename == "" {
		validationErrors = append(validationErrors, "original filename is required")
	}
	if len(m.OriginalFilename) > 255 {
		validationErrors = append(validationErrors, "original filename must be 255 characters or less")
	}
	if m.OriginalKey == "" {
		validationErrors = append(validationErrors, "original storage key is required")
	}
	if m.SizeBytes < 0 {
		validationErrors = append(validationErrors, "file size must not be negative")
	}
	if m.MimeType == "" {
		validationErrors = append(validationErrors, "mime type is required")
	}

	switch m.MediaType {
	case MediaTypePhoto, MediaTypeVideo:
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid media type '%s', must be one of: [%s %s]",
				m.MediaType, MediaTypePhoto, MediaTypeVideo))
	}

	switch m.DeriveStatus {
	case DerivePending, DeriveDone, DeriveFailed, DeriveExhausted, DeriveSkipped:
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("invalid derive status '%s'", m.DeriveStatus))
	}

	// derived state requires both renditions and dimensions
	if m.DeriveStatus == DeriveDone {
		if m.OptimizedKey == nil || m.ThumbnailKey == nil {
			validationErrors = append(validationErrors, "derived media requires optimized and thumbnail keys")
		}
		if m.Width == nil || m.Height == nil {
			validationErrors = append(validationErrors, "derived media requires width and height")
		}
	}

	if len(validationErrors) > 0 {
		return &MediaValidationError{Errors: validationErrors}
	}

	return nil
}

// MediaValidationError кастомный тип ошибки для валидации
type MediaValidationError struct {
	Errors []string
}

func (e *MediaValidationError) Error() string {
	return fmt.Sprintf("media validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsMediaValidationError(err error) bool {
	var verr *MediaValidationError
	return errors.As(err, &verr)
}
