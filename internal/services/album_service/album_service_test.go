package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

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

func strPtr(s string) *string { return &s }

func TestAlbumService_CreateAlbum(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("slug is derived from title with a random suffix", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("CreateAlbum", ctx, mock.AnythingOfType("*models.Album")).
			Return(&models.Album{}, nil)

		_, err := svc.CreateAlbum(ctx, ownerID, dto.CreateAlbumInput{Title: "Smith & Jones Wedding!"})
		require.NoError(t, err)

		created := albums.Calls[0].Arguments.Get(1).(*models.Album)
		assert.Regexp(t, regexp.MustCompile(`^smith-jones-wedding-[0-9a-f]{8}$`), created.Slug)
		assert.Equal(t, ownerID, created.PhotographerID)
		assert.True(t, created.IsActive)
		assert.Equal(t, models.ThemeLight, created.Theme)
	})

	t.Run("identical titles get distinct slugs", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("CreateAlbum", ctx, mock.AnythingOfType("*models.Album")).
			Return(&models.Album{}, nil)

		_, err := svc.CreateAlbum(ctx, ownerID, dto.CreateAlbumInput{Title: "Same Title"})
		require.NoError(t, err)
		_, err = svc.CreateAlbum(ctx, ownerID, dto.CreateAlbumInput{Title: "Same Title"})
		require.NoError(t, err)

		first := albums.Calls[0].Arguments.Get(1).(*models.Album)
		second := albums.Calls[1].Arguments.Get(1).(*models.Album)
		assert.NotEqual(t, first.Slug, second.Slug)
	})

	t.Run("pin is stored hashed", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("CreateAlbum", ctx, mock.AnythingOfType("*models.Album")).
			Return(&models.Album{}, nil)

		_, err := svc.CreateAlbum(ctx, ownerID, dto.CreateAlbumInput{
			Title: "Protected",
			Pin:   strPtr("4321"),
		})
		require.NoError(t, err)

		created := albums.Calls[0].Arguments.Get(1).(*models.Album)
		require.NotEmpty(t, created.PinHash)
		assert.NotContains(t, string(created.PinHash), "4321")
		require.NoError(t, bcrypt.CompareHashAndPassword(created.PinHash, []byte("4321")))
	})
}

func TestAlbumService_UpdateAlbum(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	albumID := uuid.New()

	existing := &models.Album{ID: albumID, PhotographerID: ownerID, IsActive: true}

	t.Run("empty pin removes protection", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)
		albums.On("UpdateAlbumFields", ctx, albumID, mock.AnythingOfType("map[string]interface {}")).Return(nil)

		_, err := svc.UpdateAlbum(ctx, ownerID, albumID, dto.UpdateAlbumInput{Pin: strPtr("")})
		require.NoError(t, err)

		var updates map[string]interface{}
		for _, call := range albums.Calls {
			if call.Method == "UpdateAlbumFields" {
				updates = call.Arguments.Get(2).(map[string]interface{})
			}
		}
		require.Contains(t, updates, "pin_hash")
		assert.Nil(t, updates["pin_hash"])
	})

	t.Run("no fields means no update query", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)

		_, err := svc.UpdateAlbum(ctx, ownerID, albumID, dto.UpdateAlbumInput{})
		require.NoError(t, err)

		albums.AssertNotCalled(t, "UpdateAlbumFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("foreign album is not found", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		svc := NewAlbumService(testLogger(), albums, new(MockMediaRepository), new(MockObjectStorage))

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(nil, storage.ErrAlbumNotFound)

		_, err := svc.UpdateAlbum(ctx, ownerID, albumID, dto.UpdateAlbumInput{Title: strPtr("New")})
		require.ErrorIs(t, err, storage.ErrAlbumNotFound)
	})
}

func TestAlbumService_DeleteAlbum(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	albumID := uuid.New()

	existing := &models.Album{ID: albumID, PhotographerID: ownerID}

	items := []models.Media{
		{
			ID:           uuid.New(),
			AlbumID:      albumID,
			OriginalKey:  "galleries/o/a/original/1.jpg",
			OptimizedKey: strPtr("galleries/o/a/optimized/1.jpg"),
			ThumbnailKey: strPtr("galleries/o/a/thumbnail/1_thumb.jpg"),
		},
		{
			ID:          uuid.New(),
			AlbumID:     albumID,
			OriginalKey: "galleries/o/a/original/2.jpg",
		},
	}

	t.Run("rows cascade then objects are removed", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		store := new(MockObjectStorage)
		svc := NewAlbumService(testLogger(), albums, media, store)

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)
		media.On("ListByAlbum", ctx, albumID).Return(items, nil)
		albums.On("DeleteAlbum", ctx, albumID).Return(nil)
		store.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

		require.NoError(t, svc.DeleteAlbum(ctx, ownerID, albumID))

		// 3 keys for the first media, 1 for the second
		store.AssertNumberOfCalls(t, "Delete", 4)
	})

	t.Run("object delete failures do not fail the call", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		store := new(MockObjectStorage)
		svc := NewAlbumService(testLogger(), albums, media, store)

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)
		media.On("ListByAlbum", ctx, albumID).Return(items, nil)
		albums.On("DeleteAlbum", ctx, albumID).Return(nil)
		store.On("Delete", ctx, mock.AnythingOfType("string")).Return(errors.New("bucket unavailable"))

		require.NoError(t, svc.DeleteAlbum(ctx, ownerID, albumID))
	})

	t.Run("row delete failure aborts object cleanup", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		store := new(MockObjectStorage)
		svc := NewAlbumService(testLogger(), albums, media, store)

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)
		media.On("ListByAlbum", ctx, albumID).Return(items, nil)
		albums.On("DeleteAlbum", ctx, albumID).Return(errors.New("db down"))

		require.Error(t, svc.DeleteAlbum(ctx, ownerID, albumID))

		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestListAlbumMedia(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	albumID := uuid.New()
	existing := &models.Album{ID: albumID, PhotographerID: ownerID, Title: "Smith Wedding"}

	t.Run("returns the media including derive status", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		svc := NewAlbumService(testLogger(), albums, media, new(MockObjectStorage))

		items := []models.Media{
			{ID: uuid.New(), AlbumID: albumID, DeriveStatus: models.DeriveDone},
			{ID: uuid.New(), AlbumID: albumID, DeriveStatus: models.DeriveFailed},
			{ID: uuid.New(), AlbumID: albumID, DeriveStatus: models.DerivePending},
		}
		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(existing, nil)
		media.On("ListByAlbum", ctx, albumID).Return(items, nil)

		got, err := svc.ListAlbumMedia(ctx, ownerID, albumID)

		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("foreign album is reported as not found", func(t *testing.T) {
		albums := new(MockAlbumRepository)
		media := new(MockMediaRepository)
		svc := NewAlbumService(testLogger(), albums, media, new(MockObjectStorage))

		albums.On("GetByIDForOwner", ctx, albumID, ownerID).Return(nil, storage.ErrAlbumNotFound)

		_, err := svc.ListAlbumMedia(ctx, ownerID, albumID)

		assert.ErrorIs(t, err, storage.ErrAlbumNotFound)
		media.AssertNotCalled(t, "ListByAlbum", mock.Anything, mock.Anything)
	})
}
