package repository

import (
	"context"
	"fmt"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type AnalyticsRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// RecordView bumps the album view counter and appends the view event inside
// one transaction. The increment happens at SQL level, so two concurrent
// views never lose an update.
func (r *AnalyticsRepo) RecordView(ctx context.Context, albumID uuid.UUID, event *models.AnalyticsEvent) error {
	const op = "repository.analytics_repository.RecordView"

	updateSQL, updateArgs, err := r.sb.Update("albums").
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"id": albumID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.recordInTx(ctx, op, updateSQL, updateArgs, event, storage.ErrAlbumNotFound)
}

// RecordDownload bumps the media download counter and appends the download
// event inside one transaction.
func (r *AnalyticsRepo) RecordDownload(ctx context.Context, mediaID uuid.UUID, event *models.AnalyticsEvent) error {
	const op = "repository.analytics_repository.RecordDownload"

	updateSQL, updateArgs, err := r.sb.Update("media").
		Set("download_count", sq.Expr("download_count + 1")).
		Where(sq.Eq{"id": mediaID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.recordInTx(ctx, op, updateSQL, updateArgs, event, storage.ErrMediaNotFound)
}

func (r *AnalyticsRepo) recordInTx(ctx context.Context, op, updateSQL string, updateArgs []interface{}, event *models.AnalyticsEvent, missing error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, missing)
	}

	insertSQL, insertArgs, err := r.insertEventSQL(event)
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *AnalyticsRepo) insertEventSQL(event *models.AnalyticsEvent) (string, []interface{}, error) {
	return r.sb.Insert("analytics").
		Columns(
			"id",
			"album_id",
			"media_id",
			"event_type",
			"client_ip",
			"user_agent",
			"created_at",
		).
		Values(
			event.ID,
			event.AlbumID,
			event.MediaID,
			event.EventType,
			event.ClientIP,
			event.UserAgent,
			event.CreatedAt,
		).
		ToSql()
}
