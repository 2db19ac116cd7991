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
	"lensdrop/internal/transport/http/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

// slugCacheTTL bounds how stale a cached slug lookup may be. Deactivating or
// re-protecting an album takes effect within this window.
const slugCacheTTL = 30 * time.Second

type GalleryService struct {
	log       *slog.Logger
	albums    repository.AlbumRepository
	media     repository.MediaRepository
	analytics repository.AnalyticsRepository
	cache     *gocache.Cache
}

func NewGalleryService(log *slog.Logger, albums repository.AlbumRepository, media repository.MediaRepository, analytics repository.AnalyticsRepository) *GalleryService {
	return &GalleryService{
		log:       log,
		albums:    albums,
		media:     media,
		analytics: analytics,
		cache:     gocache.New(slugCacheTTL, time.Minute),
	}
}

// ViewGallery resolves a public gallery by slug.
//
// Expiry is checked before the PIN gate, so an expired album answers expired
// even with a valid PIN. For a PIN-protected album without a prior unlock the
// second return value carries only the locked shell. A successful full view
// records one view event.
func (s *GalleryService) ViewGallery(ctx context.Context, slug string, unlocked bool, visitor dto.VisitorInfo) (*dto.GalleryView, *dto.GalleryLocked, error) {
	const op = "gallery_service.ViewGallery"

	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	album, err := s.albumBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, storage.ErrAlbumNotFound) {
			log.Error("failed to load album", sl.Err(err))
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if album.IsExpired(time.Now().UTC()) {
		return nil, nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumExpired)
	}

	if album.HasPin() && !unlocked {
		return nil, &dto.GalleryLocked{
			ID:          album.ID,
			Title:       album.Title,
			PinRequired: true,
		}, nil
	}

	items, err := s.media.ListByAlbum(ctx, album.ID)
	if err != nil {
		log.Error("failed to list media", sl.Err(err))

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.analytics.RecordView(ctx, album.ID, &models.AnalyticsEvent{
		ID:        uuid.New(),
		AlbumID:   album.ID,
		EventType: models.EventView,
		ClientIP:  visitor.ClientIP,
		UserAgent: visitor.UserAgent,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		// a lost view must not break the gallery
		log.Error("failed to record view", sl.Err(err))
	}

	view := &dto.GalleryView{
		ID:               album.ID,
		Title:            album.Title,
		Slug:             album.Slug,
		CoverMediaID:     album.CoverMediaID,
		DownloadEnabled:  album.DownloadEnabled,
		SelectionEnabled: album.SelectionEnabled,
		MaxSelections:    album.MaxSelections,
		Theme:            album.Theme,
		ExpiresAt:        album.ExpiresAt,
		Media:            make([]dto.GalleryMedia, 0, len(items)),
	}

	for _, m := range items {
		view.Media = append(view.Media, galleryMedia(m))
	}

	return view, nil, nil
}

// Unlock verifies the PIN for a slug. The transport layer persists a
// successful unlock in the visitor's session.
func (s *GalleryService) Unlock(ctx context.Context, slug, pin string) (*models.Album, error) {
	const op = "gallery_service.Unlock"

	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	album, err := s.albumBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, storage.ErrAlbumNotFound) {
			log.Error("failed to load album", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if album.IsExpired(time.Now().UTC()) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumExpired)
	}

	if !album.HasPin() {
		return album, nil
	}

	if err := bcrypt.CompareHashAndPassword(album.PinHash, []byte(pin)); err != nil {
		log.Info("invalid pin attempt")

		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidPin)
	}

	return album, nil
}

// albumBySlug resolves an active album, consulting a short-lived cache so
// hot galleries don't hit the database on every request.
func (s *GalleryService) albumBySlug(ctx context.Context, slug string) (*models.Album, error) {
	if cached, ok := s.cache.Get(slug); ok {
		return cached.(*models.Album), nil
	}

	album, err := s.albums.GetActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(slug, album)

	return album, nil
}

// galleryMedia maps one media row to its public shape. Missing renditions
// fall back to the original so a pending or failed derivation still renders.
func galleryMedia(m models.Media) dto.GalleryMedia {
	optimized := m.OriginalURL
	if m.OptimizedURL != nil {
		optimized = *m.OptimizedURL
	}
	thumbnail := m.OriginalURL
	if m.ThumbnailURL != nil {
		thumbnail = *m.ThumbnailURL
	}

	return dto.GalleryMedia{
		ID:           m.ID,
		MediaType:    m.MediaType,
		OptimizedURL: optimized,
		ThumbnailURL: thumbnail,
		Width:        m.Width,
		Height:       m.Height,
		SortOrder:    m.SortOrder,
	}
}
