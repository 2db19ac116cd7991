package repository

import (
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	User      UserRepository
	Album     AlbumRepository
	Media     MediaRepository
	Analytics AnalyticsRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		User:      NewUserRepository(db),
		Album:     NewAlbumRepository(db),
		Media:     NewMediaRepository(db),
		Analytics: NewAnalyticsRepository(db),
	}
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
