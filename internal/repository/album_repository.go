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

var albumColumns = []string{
	"id",
	"photographer_id",
	"title",
	"slug",
	"client_name",
	"client_email",
	"client_phone",
	"pin_hash",
	"cover_media_id",
	"expires_at",
	"download_enabled",
	"selection_enabled",
	"max_selections",
	"theme",
	"is_active",
	"view_count",
	"created_at",
	"delivered_at",
}

type AlbumRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAlbumRepository(db *pgxpool.Pool) *AlbumRepo {
	return &AlbumRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AlbumRepo) CreateAlbum(ctx context.Context, album *models.Album) (*models.Album, error) {
	const op = "repository.album_repository.CreateAlbum"

	query, args, err := r.sb.Insert("albums").
		Columns(albumColumns...).
		Values(
			album.ID,
			album.PhotographerID,
			album.Title,
			album.Slug,
			album.ClientName,
			album.ClientEmail,
			album.ClientPhone,
			album.PinHash,
			album.CoverMediaID,
			album.ExpiresAt,
			album.DownloadEnabled,
			album.SelectionEnabled,
			album.MaxSelections,
			album.Theme,
			album.IsActive,
			album.ViewCount,
			album.CreatedAt,
			album.DeliveredAt,
		).
		Suffix("RETURNING " + columnList(albumColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	created, err := scanAlbum(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *AlbumRepo) GetByIDForOwner(ctx context.Context, albumID, ownerID uuid.UUID) (*models.Album, error) {
	const op = "repository.album_repository.GetByIDForOwner"

	query, args, err := r.sb.Select(albumColumns...).
		From("albums").
		Where(sq.Eq{"id": albumID, "photographer_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	album, err := scanAlbum(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return album, nil
}

func (r *AlbumRepo) GetActiveBySlug(ctx context.Context, slug string) (*models.Album, error) {
	const op = "repository.album_repository.GetActiveBySlug"

	query, args, err := r.sb.Select(albumColumns...).
		From("albums").
		Where(sq.Eq{"slug": slug, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	album, err := scanAlbum(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return album, nil
}

func (r *AlbumRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Album, error) {
	const op = "repository.album_repository.ListByOwner"

	query, args, err := r.sb.Select(albumColumns...).
		From("albums").
		Where(sq.Eq{"photographer_id": ownerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		albums = append(albums, *album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return albums, nil
}

func (r *AlbumRepo) UpdateAlbumFields(ctx context.Context, albumID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.album_repository.UpdateAlbumFields"

	if len(updates) == 0 {
		return nil
	}

	builder := r.sb.Update("albums").Where(sq.Eq{"id": albumID})
	for field, value := range updates {
		builder = builder.Set(field, value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
	}

	return nil
}

func (r *AlbumRepo) DeleteAlbum(ctx context.Context, albumID uuid.UUID) error {
	const op = "repository.album_repository.DeleteAlbum"

	query, args, err := r.sb.Delete("albums").Where(sq.Eq{"id": albumID}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrAlbumNotFound)
	}

	return nil
}

func (r *AlbumRepo) MediaCount(ctx context.Context, albumID uuid.UUID) (int, error) {
	const op = "repository.album_repository.MediaCount"

	query, args, err := r.sb.Select("COUNT(*)").
		From("media").
		Where(sq.Eq{"album_id": albumID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func scanAlbum(row pgx.Row) (*models.Album, error) {
	var album models.Album
	err := row.Scan(
		&album.ID,
		&album.PhotographerID,
		&album.Title,
		&album.Slug,
		&album.ClientName,
		&album.ClientEmail,
		&album.ClientPhone,
		&album.PinHash,
		&album.CoverMediaID,
		&album.ExpiresAt,
		&album.DownloadEnabled,
		&album.SelectionEnabled,
		&album.MaxSelections,
		&album.Theme,
		&album.IsActive,
		&album.ViewCount,
		&album.CreatedAt,
		&album.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	return &album, nil
}
