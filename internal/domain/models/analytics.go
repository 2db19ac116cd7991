package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventView     EventType = "view"
	EventDownload EventType = "download"
)

// AnalyticsEvent is an append-only record of a view or download.
// Rows are never updated or deleted.
type AnalyticsEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	AlbumID   uuid.UUID  `json:"album_id" db:"album_id"`
	MediaID   *uuid.UUID `json:"media_id,omitempty" db:"media_id"`
	EventType EventType  `json:"event_type" db:"event_type"`
	ClientIP  string     `json:"client_ip" db:"client_ip"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
