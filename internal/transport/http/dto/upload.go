package dto

import "github.com/google/uuid"

type ReserveUploadInput struct {
	AlbumID     uuid.UUID `json:"album_id" validate:"required"`
	Filename    string    `json:"filename" validate:"required,max=255"`
	ContentType string    `json:"content_type" validate:"required,max=100"`
	SizeBytes   int64     `json:"size_bytes" validate:"omitempty,min=0"`
	SortOrder   int       `json:"sort_order" validate:"omitempty,min=0"`
}

// Reservation is handed back to the client, which PUTs the bytes straight to
// the storage target and then calls the complete endpoint.
type Reservation struct {
	UploadURL  string    `json:"upload_url"`
	MediaID    uuid.UUID `json:"media_id"`
	StorageKey string    `json:"storage_key"`
}
