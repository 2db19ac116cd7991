package repository

import (
	"context"
	"errors"
	"fmt"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var mediaColumns = []string{
	"id",
	"album_id",
	"media_type",
	"original_filename",
	"original_key",
	"original_url",
	"optimized_key",
	"optimized_url",
	"thumbnail_key",
	"thumbnail_url",
	"width",
	"height",
	"size_bytes",
	"mime_type",
	"sort_order",
	"derive_status",
	"view_count",
	"download_count",
	"uploaded_at",
}

type MediaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	const op = "repository.media_repository.CreateMedia"

	query, args, err := r.sb.Insert("media").
		Columns(mediaColumns...).
		Values(
			media.ID,
			media.AlbumID,
			media.MediaType,
			media.OriginalFilename,
			media.OriginalKey,
			media.OriginalURL,
			media.OptimizedKey,
			media.OptimizedURL,
			media.ThumbnailKey,
			media.ThumbnailURL,
			media.Width,
			media.Height,
			media.SizeBytes,
			media.MimeType,
			media.SortOrder,
			media.DeriveStatus,
			media.ViewCount,
			media.DownloadCount,
			media.UploadedAt,
		).
		Suffix("RETURNING " + columnList(mediaColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	created, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByID"

	return r.findOne(ctx, op, sq.Eq{"id": id})
}

func (r *MediaRepo) FindByIDInAlbum(ctx context.Context, id, albumID uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByIDInAlbum"

	return r.findOne(ctx, op, sq.Eq{"id": id, "album_id": albumID})
}

func (r *MediaRepo) findOne(ctx context.Context, op string, where sq.Eq) (*models.Media, error) {
	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	media, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrMediaNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

func (r *MediaRepo) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]models.Media, error) {
	const op = "repository.media_repository.ListByAlbum"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"album_id": albumID}).
		OrderBy("sort_order ASC", "uploaded_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.list(ctx, op, query, args)
}

func (r *MediaRepo) ListByDeriveStatus(ctx context.Context, status models.DeriveStatus, limit int) ([]models.Media, error) {
	const op = "repository.media_repository.ListByDeriveStatus"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"derive_status": status}).
		OrderBy("uploaded_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.list(ctx, op, query, args)
}

func (r *MediaRepo) list(ctx context.Context, op, query string, args []interface{}) ([]models.Media, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, *media)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// SetDerived writes both rendition locations, the intrinsic dimensions and
// the done status as one update, so a media row is never observed half
// derived.
func (r *MediaRepo) SetDerived(ctx context.Context, id uuid.UUID, derived models.DerivedAssets) error {
	const op = "repository.media_repository.SetDerived"

	query, args, err := r.sb.Update("media").
		Set("optimized_key", derived.OptimizedKey).
		Set("optimized_url", derived.OptimizedURL).
		Set("thumbnail_key", derived.ThumbnailKey).
		Set("thumbnail_url", derived.ThumbnailURL).
		Set("width", derived.Width).
		Set("height", derived.Height).
		Set("derive_status", models.DeriveDone).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrMediaNotFound)
	}

	return nil
}

func (r *MediaRepo) SetDeriveStatus(ctx context.Context, id uuid.UUID, status models.DeriveStatus) error {
	const op = "repository.media_repository.SetDeriveStatus"

	query, args, err := r.sb.Update("media").
		Set("derive_status", status).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrMediaNotFound)
	}

	return nil
}

func scanMedia(row pgx.Row) (*models.Media, error) {
	var media models.Media
	err := row.Scan(
		&media.ID,
		&media.AlbumID,
		&media.MediaType,
		&media.OriginalFilename,
		&media.OriginalKey,
		&media.OriginalURL,
		&media.OptimizedKey,
		&media.OptimizedURL,
		&media.ThumbnailKey,
		&media.ThumbnailURL,
		&media.Width,
		&media.Height,
		&media.SizeBytes,
		&media.MimeType,
		&media.SortOrder,
		&media.DeriveStatus,
		&media.ViewCount,
		&media.DownloadCount,
		&media.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return &media, nil
}
