package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/lib/logger/sl"
	"lensdrop/internal/repository"
	"lensdrop/internal/storage"
	"lensdrop/internal/storage/objectstore"
	"lensdrop/internal/transport/http/dto"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AlbumService struct {
	log    *slog.Logger
	albums repository.AlbumRepository
	media  repository.MediaRepository
	store  objectstore.ObjectStorage
}

func NewAlbumService(log *slog.Logger, albums repository.AlbumRepository, media repository.MediaRepository, store objectstore.ObjectStorage) *AlbumService {
	return &AlbumService{
		log:    log,
		albums: albums,
		media:  media,
		store:  store,
	}
}

// CreateAlbum creates an album for the photographer. The public slug is the
// slugified title plus a random suffix, so identical titles never clash and
// slugs stay unguessable enough for unlisted sharing.
func (s *AlbumService) CreateAlbum(ctx context.Context, ownerID uuid.UUID, input dto.CreateAlbumInput) (*models.Album, error) {
	const op = "album_service.CreateAlbum"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", input.Title),
	)

	album := &models.Album{
		ID:               uuid.New(),
		PhotographerID:   ownerID,
		Title:            input.Title,
		Slug:             generateSlug(input.Title),
		ClientName:       input.ClientName,
		ClientEmail:      input.ClientEmail,
		ClientPhone:      input.ClientPhone,
		ExpiresAt:        input.ExpiresAt,
		DownloadEnabled:  input.DownloadEnabled,
		SelectionEnabled: input.SelectionEnabled,
		MaxSelections:    input.MaxSelections,
		Theme:            models.ThemeLight,
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
	}

	if input.Theme != "" {
		album.Theme = models.AlbumTheme(input.Theme)
	}

	if input.Pin != nil && *input.Pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Pin), bcrypt.DefaultCost)
		if err != nil {
			log.Error("failed to hash pin", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
		album.PinHash = hash
	}

	created, err := s.albums.CreateAlbum(ctx, album)
	if err != nil {
		log.Error("failed to create album", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("album created", slog.String("album_id", created.ID.String()), slog.String("slug", created.Slug))

	return created, nil
}

func (s *AlbumService) ListAlbums(ctx context.Context, ownerID uuid.UUID) ([]models.Album, error) {
	const op = "album_service.ListAlbums"

	albums, err := s.albums.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error("failed to list albums", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return albums, nil
}

func (s *AlbumService) GetAlbum(ctx context.Context, ownerID, albumID uuid.UUID) (*dto.AlbumDetail, error) {
	const op = "album_service.GetAlbum"

	album, err := s.albums.GetByIDForOwner(ctx, albumID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.albums.MediaCount(ctx, album.ID)
	if err != nil {
		s.log.Error("failed to count media", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &dto.AlbumDetail{Album: *album, MediaCount: count}, nil
}

// ListAlbumMedia returns the album's media in gallery order, including the
// derive status, so the photographer can see which renditions are still
// pending or failed.
func (s *AlbumService) ListAlbumMedia(ctx context.Context, ownerID, albumID uuid.UUID) ([]models.Media, error) {
	const op = "album_service.ListAlbumMedia"

	album, err := s.albums.GetByIDForOwner(ctx, albumID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.media.ListByAlbum(ctx, album.ID)
	if err != nil {
		s.log.Error("failed to list media", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// UpdateAlbum applies a partial update. Setting Pin to the empty string
// removes PIN protection; any other value replaces the hash.
func (s *AlbumService) UpdateAlbum(ctx context.Context, ownerID, albumID uuid.UUID, input dto.UpdateAlbumInput) (*models.Album, error) {
	const op = "album_service.UpdateAlbum"

	log := s.log.With(
		slog.String("op", op),
		slog.String("album_id", albumID.String()),
	)

	if _, err := s.albums.GetByIDForOwner(ctx, albumID, ownerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.ClientName != nil {
		updates["client_name"] = *input.ClientName
	}
	if input.ClientEmail != nil {
		updates["client_email"] = *input.ClientEmail
	}
	if input.ClientPhone != nil {
		updates["client_phone"] = *input.ClientPhone
	}
	if input.CoverMediaID != nil {
		updates["cover_media_id"] = *input.CoverMediaID
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if input.DownloadEnabled != nil {
		updates["download_enabled"] = *input.DownloadEnabled
	}
	if input.SelectionEnabled != nil {
		updates["selection_enabled"] = *input.SelectionEnabled
	}
	if input.MaxSelections != nil {
		updates["max_selections"] = *input.MaxSelections
	}
	if input.Theme != nil {
		updates["theme"] = *input.Theme
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.DeliveredAt != nil {
		updates["delivered_at"] = *input.DeliveredAt
	}

	if input.Pin != nil {
		if *input.Pin == "" {
			updates["pin_hash"] = nil
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Pin), bcrypt.DefaultCost)
			if err != nil {
				log.Error("failed to hash pin", sl.Err(err))

				return nil, fmt.Errorf("%s: %w", op, err)
			}
			updates["pin_hash"] = hash
		}
	}

	if len(updates) > 0 {
		if err := s.albums.UpdateAlbumFields(ctx, albumID, updates); err != nil {
			log.Error("failed to update album", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	album, err := s.albums.GetByIDForOwner(ctx, albumID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("album updated")

	return album, nil
}

// DeleteAlbum removes the album row (media and analytics rows cascade) and
// then deletes the bucket objects best-effort. An object delete failure is
// logged, not surfaced: the rows are already gone and an orphaned object is
// unreachable without them.
func (s *AlbumService) DeleteAlbum(ctx context.Context, ownerID, albumID uuid.UUID) error {
	const op = "album_service.DeleteAlbum"

	log := s.log.With(
		slog.String("op", op),
		slog.String("album_id", albumID.String()),
	)

	if _, err := s.albums.GetByIDForOwner(ctx, albumID, ownerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.media.ListByAlbum(ctx, albumID)
	if err != nil {
		log.Error("failed to list media before delete", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.albums.DeleteAlbum(ctx, albumID); err != nil {
		if !errors.Is(err, storage.ErrAlbumNotFound) {
			log.Error("failed to delete album", sl.Err(err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, m := range items {
		keys := []string{m.OriginalKey}
		if m.OptimizedKey != nil {
			keys = append(keys, *m.OptimizedKey)
		}
		if m.ThumbnailKey != nil {
			keys = append(keys, *m.ThumbnailKey)
		}
		for _, key := range keys {
			if err := s.store.Delete(ctx, key); err != nil {
				log.Warn("failed to delete object", slog.String("key", key), sl.Err(err))
			}
		}
	}

	log.Info("album deleted", slog.Int("media_count", len(items)))

	return nil
}

func generateSlug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	suffix := uuid.New().String()[:8]
	if slug == "" {
		return suffix
	}

	return slug + "-" + suffix
}
