package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lensdrop/internal/config"
	"lensdrop/internal/domain/models"
	"lensdrop/internal/lib/logger/sl"
)

const sweepBatchSize = 50

// Sweeper periodically retries failed derivations. It is the only recovery
// path for photos whose inline derivation errored; originals are never at
// risk, only their renditions lag behind.
type Sweeper struct {
	log      *slog.Logger
	uploads  *UploadService
	interval time.Duration
	workers  int
	attempts map[string]int
	mu       sync.Mutex
	maxTries int
}

func NewSweeper(log *slog.Logger, uploads *UploadService, cfg config.DeriveConfig) *Sweeper {
	workers := cfg.SweepWorkers
	if workers < 1 {
		workers = 1
	}

	return &Sweeper{
		log:      log,
		uploads:  uploads,
		interval: cfg.SweepInterval,
		workers:  workers,
		attempts: make(map[string]int),
		maxTries: cfg.MaxAttempts,
	}
}

// Run blocks until ctx is cancelled. Call in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	const op = "upload_service.Sweeper.sweep"

	log := s.log.With(slog.String("op", op))

	failed, err := s.uploads.media.ListByDeriveStatus(ctx, models.DeriveFailed, sweepBatchSize)
	if err != nil {
		log.Error("failed to list failed derivations", sl.Err(err))
		return
	}
	if len(failed) == 0 {
		return
	}

	log.Info("retrying failed derivations", slog.Int("count", len(failed)))

	jobs := make(chan models.Media)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for media := range jobs {
				s.retry(ctx, media)
			}
		}()
	}

	for _, media := range failed {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- media:
		}
	}
	close(jobs)
	wg.Wait()
}

// retry reruns derivation for one media. After maxTries attempts the media
// is moved to the terminal exhausted status, so it stops occupying batch
// slots and newer failures keep getting their turn; the gallery serves its
// original. A restart wipes the in-memory attempt counts, which at worst
// grants an exhaustion candidate a fresh round of retries.
func (s *Sweeper) retry(ctx context.Context, media models.Media) {
	const op = "upload_service.Sweeper.retry"

	log := s.log.With(
		slog.String("op", op),
		slog.String("media_id", media.ID.String()),
	)

	s.mu.Lock()
	tries := s.attempts[media.ID.String()]
	s.mu.Unlock()

	if s.maxTries > 0 && tries >= s.maxTries {
		s.abandon(ctx, media, log)
		return
	}

	err := s.uploads.deriveMedia(ctx, &media)
	if err == nil {
		s.mu.Lock()
		delete(s.attempts, media.ID.String())
		s.mu.Unlock()

		log.Info("derivation recovered")
		return
	}

	tries++

	s.mu.Lock()
	s.attempts[media.ID.String()] = tries
	s.mu.Unlock()

	log.Warn("derivation retry failed", sl.Err(err), slog.Int("attempt", tries))

	if s.maxTries > 0 && tries >= s.maxTries {
		s.abandon(ctx, media, log)
	}
}

// abandon marks a media exhausted and forgets its attempt count.
func (s *Sweeper) abandon(ctx context.Context, media models.Media, log *slog.Logger) {
	if err := s.uploads.media.SetDeriveStatus(ctx, media.ID, models.DeriveExhausted); err != nil {
		log.Error("failed to mark derivation exhausted", sl.Err(err))
		return
	}

	s.mu.Lock()
	delete(s.attempts, media.ID.String())
	s.mu.Unlock()

	log.Warn("derivation abandoned, serving original only")
}
