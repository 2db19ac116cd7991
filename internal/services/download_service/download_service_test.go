package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/storage"
	"lensdrop/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAlbumRepository struct {
	mock.Mock
}

func (m *MockAlbumRepository) CreateAlbum(ctx context.Context, album *models.Album) (*models.Album, error) {
	args := m.Called(ctx, album)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumRepository) GetByIDForOwner(ctx context.Context, albumID, ownerID uuid.UUID) (*models.Album, error) {
	args := m.Called(ctx, albumID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumRepository) GetActiveBySlug(ctx context.Context, slug string) (*models.Album, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Album), args.Error(1)
}

func (m *MockAlbumRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Album, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Album), args.Error(1)
}

func (m *MockAlbumRepository) UpdateAlbumFields(ctx context.Context, albumID uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, albumID, updates)
	return args.Error(0)
}

func (m *MockAlbumRepository) DeleteAlbum(ctx context.Context, albumID uuid.UUID) error {
	args := m.Called(ctx, albumID)
	return args.Error(0)
}

func (m *MockAlbumRepository) MediaCount(ctx context.Context, albumID uuid.UUID) (int, error) {
	args := m.Called(ctx, albumID)
	return args.Int(0), args.Error(1)
}

type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	args := m.Called(ctx, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) FindByIDInAlbum(ctx context.Context, id, albumID uuid.UUID) (*models.Media, error) {
	args := m.Called(ctx, id, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Media), args.Error(1)
}

func (m *MockMediaRepository) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]models.Media, error) {
	args := m.Called(ctx, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Media), args.Error(1)
}

func (m *MockMediaRepository) SetDerived(ctx context.Context, id uuid.UUID, derived models.DerivedAssets) error {
	args := m.Called(ctx, id, derived)
	return args.Error(0)
}

func (m *MockMediaRepository) SetDeriveStatus(ctx context.Context, id uuid.UUID, status models.DeriveStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockMediaRepository) ListByDeriveStatus(ctx context.Context, status models.DeriveStatus, limit int) ([]models.Media, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Media), args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) RecordView(ctx context.Context, albumID uuid.UUID, event *models.AnalyticsEvent) error {
	args := m.Called(ctx, albumID, event)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) RecordDownload(ctx context.Context, mediaID uuid.UUID, event *models.AnalyticsEvent) error {
	args := m.Called(ctx, mediaID, event)
	return args.Error(0)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Fetch(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDownloadService_RequestDownload(t *testing.T) {
	ctx := context.Background()
	visitor := dto.VisitorInfo{ClientIP: "198.51.100.7", UserAgent: "test-agent"}

	albumID := uuid.New()
	mediaID := uuid.New()

	openAlbum := func() *models.Album {
		return &models.Album{
			ID:              albumID,
			Slug:            "smith-wedding",
			IsActive:        true,
			DownloadEnabled: true,
		}
	}

	item := &models.Media{
		ID:          mediaID,
		AlbumID:     albumID,
		OriginalKey: "galleries/owner/album/original/file.jpg",
	}

	newService := func(albums *MockAlbumRepository, media *MockMediaRepository, analytics *MockAnalyticsRepository, store *MockObjectStorage) *DownloadService {
		return NewDownloadService(testLogger(), albums, media, analytics, store, 24*time.Hour)
	}

	t.Run("successful download counts then presigns", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(openAlbum(), nil)
		media.On("FindByIDInAlbum", ctx, mediaID, albumID).Return(item, nil)
		analytics.On("RecordDownload", ctx, mediaID, mock.AnythingOfType("*models.AnalyticsEvent")).Return(nil)
		store.On("PresignDownload", ctx, item.OriginalKey).Return("https://bucket.example/get?sig=xyz", nil)

		grant, err := svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.NoError(t, err)

		assert.Equal(t, "https://bucket.example/get?sig=xyz", grant.DownloadURL)
		assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), grant.ExpiresAt, time.Minute)

		event := analytics.Calls[0].Arguments.Get(2).(*models.AnalyticsEvent)
		assert.Equal(t, models.EventDownload, event.EventType)
		require.NotNil(t, event.MediaID)
		assert.Equal(t, mediaID, *event.MediaID)
	})

	t.Run("downloads disabled rejects before side effects", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		disabled := openAlbum()
		disabled.DownloadEnabled = false

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(disabled, nil)

		_, err := svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.ErrorIs(t, err, storage.ErrDownloadsDisabled)

		analytics.AssertNotCalled(t, "RecordDownload", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "PresignDownload", mock.Anything, mock.Anything)
	})

	t.Run("locked album requires unlock", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		locked := openAlbum()
		hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
		require.NoError(t, err)
		locked.PinHash = hash

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(locked, nil)

		_, err = svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.ErrorIs(t, err, storage.ErrPinRequired)
	})

	t.Run("expired album is gone", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		gone := openAlbum()
		expired := time.Now().UTC().Add(-time.Hour)
		gone.ExpiresAt = &expired

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(gone, nil)

		_, err := svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.ErrorIs(t, err, storage.ErrAlbumExpired)
	})

	t.Run("media from another album is not found", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(openAlbum(), nil)
		media.On("FindByIDInAlbum", ctx, mediaID, albumID).Return(nil, storage.ErrMediaNotFound)

		_, err := svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.ErrorIs(t, err, storage.ErrMediaNotFound)

		analytics.AssertNotCalled(t, "RecordDownload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed counting blocks the grant", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		analytics := new(MockAnalyticsRepository)
		store := new(MockObjectStorage)
		svc := newService(albums, media, analytics, store)

		albums.On("GetActiveBySlug", ctx, "smith-wedding").Return(openAlbum(), nil)
		media.On("FindByIDInAlbum", ctx, mediaID, albumID).Return(item, nil)
		analytics.On("RecordDownload", ctx, mediaID, mock.AnythingOfType("*models.AnalyticsEvent")).
			Return(context.DeadlineExceeded)

		_, err := svc.RequestDownload(ctx, "smith-wedding", mediaID, false, visitor)
		require.Error(t, err)

		store.AssertNotCalled(t, "PresignDownload", mock.Anything, mock.Anything)
	})
}
