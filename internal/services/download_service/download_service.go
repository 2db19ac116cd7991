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
	"lensdrop/internal/storage"
	"lensdrop/internal/storage/objectstore"
	"lensdrop/internal/transport/http/dto"

	"github.com/google/uuid"
)

type DownloadService struct {
	log         *slog.Logger
	albums      repository.AlbumRepository
	media       repository.MediaRepository
	analytics   repository.AnalyticsRepository
	store       objectstore.ObjectStorage
	downloadTTL time.Duration
}

func NewDownloadService(log *slog.Logger, albums repository.AlbumRepository, media repository.MediaRepository, analytics repository.AnalyticsRepository, store objectstore.ObjectStorage, downloadTTL time.Duration) *DownloadService {
	return &DownloadService{
		log:         log,
		albums:      albums,
		media:       media,
		analytics:   analytics,
		store:       store,
		downloadTTL: downloadTTL,
	}
}

// RequestDownload hands out a time-limited URL for one original.
//
// All gates run before any side effect: the album must be active, not
// expired, have downloads enabled, and actually contain the media. Only then
// is the download counted and the URL presigned, so a rejected request never
// touches the counters.
func (s *DownloadService) RequestDownload(ctx context.Context, slug string, mediaID uuid.UUID, unlocked bool, visitor dto.VisitorInfo) (*dto.DownloadGrant, error) {
	const op = "download_service.RequestDownload"

	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
		slog.String("media_id", mediaID.String()),
	)

	album, err := s.albums.GetActiveBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, storage.ErrAlbumNotFound) {
			log.Error("failed to load album", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if album.IsExpired(time.Now().UTC()) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumExpired)
	}

	if album.HasPin() && !unlocked {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPinRequired)
	}

	if !album.DownloadEnabled {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrDownloadsDisabled)
	}

	media, err := s.media.FindByIDInAlbum(ctx, mediaID, album.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrMediaNotFound) {
			log.Error("failed to load media", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.analytics.RecordDownload(ctx, media.ID, &models.AnalyticsEvent{
		ID:        uuid.New(),
		AlbumID:   album.ID,
		MediaID:   &media.ID,
		EventType: models.EventDownload,
		ClientIP:  visitor.ClientIP,
		UserAgent: visitor.UserAgent,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Error("failed to record download", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.store.PresignDownload(ctx, media.OriginalKey)
	if err != nil {
		log.Error("failed to presign download", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("download granted")

	return &dto.DownloadGrant{
		DownloadURL: url,
		ExpiresAt:   time.Now().UTC().Add(s.downloadTTL),
	}, nil
}
