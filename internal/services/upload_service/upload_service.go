package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/lib/logger/sl"
	"lensdrop/internal/repository"
	"lensdrop/internal/services/derive"
	"lensdrop/internal/storage"
	"lensdrop/internal/storage/objectstore"
	"lensdrop/internal/transport/http/dto"

	"github.com/google/uuid"
)

// DeriveFunc produces renditions from the original bytes. It is a field so
// tests can substitute a stub for the real image pipeline.
type DeriveFunc func(original []byte) (*derive.Result, error)

type UploadService struct {
	log    *slog.Logger
	albums repository.AlbumRepository
	media  repository.MediaRepository
	store  objectstore.ObjectStorage
	derive DeriveFunc
}

func NewUploadService(log *slog.Logger, albums repository.AlbumRepository, media repository.MediaRepository, store objectstore.ObjectStorage) *UploadService {
	return &UploadService{
		log:    log,
		albums: albums,
		media:  media,
		store:  store,
		derive: derive.Derive,
	}
}

// ReserveUpload allocates a media record and a presigned PUT URL for it. The
// client uploads the bytes directly to the bucket and then calls
// CompleteUpload; until then the record stays in the pending derive state.
//
// The original storage key uses the media ID as filename, so two uploads of
// identically named files never collide. The client's filename survives only
// as display metadata.
func (s *UploadService) ReserveUpload(ctx context.Context, ownerID uuid.UUID, input dto.ReserveUploadInput) (*dto.Reservation, error) {
	const op = "upload_service.ReserveUpload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("album_id", input.AlbumID.String()),
		slog.String("filename", input.Filename),
	)

	album, err := s.albums.GetByIDForOwner(ctx, input.AlbumID, ownerID)
	if err != nil {
		if !errors.Is(err, storage.ErrAlbumNotFound) {
			log.Error("failed to load album", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mediaID := uuid.New()

	filename := mediaID.String()
	if ext := objectstore.Ext(input.Filename); ext != "" {
		filename = mediaID.String() + "." + ext
	}
	key := objectstore.Key(album.PhotographerID, album.ID, filename, objectstore.RoleOriginal)

	uploadURL, err := s.store.PresignUpload(ctx, key, input.ContentType)
	if err != nil {
		log.Error("failed to presign upload", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	media := &models.Media{
		ID:               mediaID,
		AlbumID:          album.ID,
		MediaType:        models.MediaTypeFor(input.ContentType),
		OriginalFilename: input.Filename,
		OriginalKey:      key,
		OriginalURL:      s.store.PublicURL(key),
		SizeBytes:        input.SizeBytes,
		MimeType:         input.ContentType,
		SortOrder:        input.SortOrder,
		DeriveStatus:     models.DerivePending,
		UploadedAt:       time.Now().UTC(),
	}

	if err := media.Validate(); err != nil {
		log.Error("media validation failed", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.media.CreateMedia(ctx, media)
	if err != nil {
		log.Error("failed to save media to database", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("upload reserved", slog.String("media_id", created.ID.String()))

	return &dto.Reservation{
		UploadURL:  uploadURL,
		MediaID:    created.ID,
		StorageKey: key,
	}, nil
}

// CompleteUpload is called after the client has PUT the original bytes. For
// photos it runs derivation inline; for videos derivation is skipped. A
// derivation failure marks the record failed for the sweeper but does not
// fail the call: the original is already safe in the bucket and the client
// can do nothing useful with the error.
//
// Calling it again for an already derived media is a no-op.
func (s *UploadService) CompleteUpload(ctx context.Context, ownerID, mediaID uuid.UUID) (*models.Media, error) {
	const op = "upload_service.CompleteUpload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("media_id", mediaID.String()),
	)

	media, err := s.media.FindByID(ctx, mediaID)
	if err != nil {
		if !errors.Is(err, storage.ErrMediaNotFound) {
			log.Error("failed to load media", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// ownership check goes through the album; a foreign media looks exactly
	// like a missing one
	if _, err := s.albums.GetByIDForOwner(ctx, media.AlbumID, ownerID); err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrMediaNotFound)
		}
		log.Error("failed to load album", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch media.DeriveStatus {
	case models.DeriveDone, models.DeriveSkipped:
		return media, nil
	}

	if media.MediaType == models.MediaTypeVideo {
		if err := s.media.SetDeriveStatus(ctx, media.ID, models.DeriveSkipped); err != nil {
			log.Error("failed to mark derivation skipped", sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}
		media.DeriveStatus = models.DeriveSkipped

		return media, nil
	}

	if err := s.deriveMedia(ctx, media); err != nil {
		log.Warn("derivation failed, original kept", sl.Err(err))

		if markErr := s.media.SetDeriveStatus(ctx, media.ID, models.DeriveFailed); markErr != nil {
			log.Error("failed to mark derivation failed", sl.Err(markErr))
		}
		media.DeriveStatus = models.DeriveFailed

		return media, nil
	}

	updated, err := s.media.FindByID(ctx, media.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("upload completed", slog.String("derive_status", string(updated.DeriveStatus)))

	return updated, nil
}

// deriveMedia fetches the original, produces both renditions, stores them and
// records keys, URLs and dimensions in a single update.
func (s *UploadService) deriveMedia(ctx context.Context, media *models.Media) error {
	const op = "upload_service.deriveMedia"

	original, err := s.store.Fetch(ctx, media.OriginalKey)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.derive(original)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	parsed, err := objectstore.ParseKey(media.OriginalKey)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	optKey := objectstore.Key(parsed.PhotographerID, parsed.AlbumID,
		media.ID.String()+"."+derive.RenditionExt, objectstore.RoleOptimized)
	thumbKey := objectstore.Key(parsed.PhotographerID, parsed.AlbumID,
		media.ID.String()+"_thumb."+derive.RenditionExt, objectstore.RoleThumbnail)

	optURL, err := s.store.Put(ctx, optKey, derive.RenditionContentType, result.Optimized)
	if err != nil {
		return fmt.Errorf("%s: optimized: %w", op, err)
	}

	thumbURL, err := s.store.Put(ctx, thumbKey, derive.RenditionContentType, result.Thumbnail)
	if err != nil {
		return fmt.Errorf("%s: thumbnail: %w", op, err)
	}

	if err := s.media.SetDerived(ctx, media.ID, models.DerivedAssets{
		OptimizedKey: optKey,
		OptimizedURL: optURL,
		ThumbnailKey: thumbKey,
		ThumbnailURL: thumbURL,
		Width:        result.Width,
		Height:       result.Height,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
