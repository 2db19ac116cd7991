package repository

import (
	"context"
	"time"

	"lensdrop/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}

type AlbumRepository interface {
	CreateAlbum(ctx context.Context, album *models.Album) (*models.Album, error)
	GetByIDForOwner(ctx context.Context, albumID, ownerID uuid.UUID) (*models.Album, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Album, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Album, error)
	UpdateAlbumFields(ctx context.Context, albumID uuid.UUID, updates map[string]interface{}) error
	DeleteAlbum(ctx context.Context, albumID uuid.UUID) error
	MediaCount(ctx context.Context, albumID uuid.UUID) (int, error)
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	FindByIDInAlbum(ctx context.Context, id, albumID uuid.UUID) (*models.Media, error)
	ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]models.Media, error)
	SetDerived(ctx context.Context, id uuid.UUID, derived models.DerivedAssets) error
	SetDeriveStatus(ctx context.Context, id uuid.UUID, status models.DeriveStatus) error
	ListByDeriveStatus(ctx context.Context, status models.DeriveStatus, limit int) ([]models.Media, error)
}

// AnalyticsRepository owns the append-only event log. The Record* methods run
// the counter increment and the event insert in one transaction; the
// increments themselves are SQL-level so concurrent requests never lose an
// update.
type AnalyticsRepository interface {
	RecordView(ctx context.Context, albumID uuid.UUID, event *models.AnalyticsEvent) error
	RecordDownload(ctx context.Context, mediaID uuid.UUID, event *models.AnalyticsEvent) error
}
