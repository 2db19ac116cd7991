package app

import (
	"context"
	"log/slog"

	httpapp "lensdrop/internal/app/http"
	"lensdrop/internal/config"
	"lensdrop/internal/repository"
	albumsvc "lensdrop/internal/services/album_service"
	downloadsvc "lensdrop/internal/services/download_service"
	gallerysvc "lensdrop/internal/services/gallery_service"
	tokensvc "lensdrop/internal/services/token_service"
	uploadsvc "lensdrop/internal/services/upload_service"
	usersvc "lensdrop/internal/services/user_service"
	"lensdrop/internal/storage/objectstore"
	"lensdrop/internal/storage/postgresql"
	redisapp "lensdrop/internal/storage/redis"
	httprouters "lensdrop/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Sweeper    *uploadsvc.Sweeper

	db    *postgresql.Storage
	redis *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) *App {
	db, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	var urlCache *objectstore.URLCache
	if cfg.Redis.RedisAddr != "" {
		urlCache = objectstore.NewURLCache(redisClient, cfg.Storage.DownloadTTL)
	}

	store, err := objectstore.New(ctx, objectstore.Options{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		UploadTTL:       cfg.Storage.UploadTTL,
		DownloadTTL:     cfg.Storage.DownloadTTL,
	}, urlCache)
	if err != nil {
		panic(err)
	}

	repos := repository.NewRepository(db.Pool())
	tokenRepo := repository.NewRedisTokenRepo(redisClient)

	userService := usersvc.NewUserService(log, repos.User)
	tokenService := tokensvc.NewTokenService(tokenRepo, cfg.TokenSecret)
	albumService := albumsvc.NewAlbumService(log, repos.Album, repos.Media, store)
	uploadService := uploadsvc.NewUploadService(log, repos.Album, repos.Media, store)
	galleryService := gallerysvc.NewGalleryService(log, repos.Album, repos.Media, repos.Analytics)
	downloadService := downloadsvc.NewDownloadService(log, repos.Album, repos.Media, repos.Analytics, store, cfg.Storage.DownloadTTL)

	sweeper := uploadsvc.NewSweeper(log, uploadService, cfg.Derive)

	routers := httprouters.NewRouter(log, userService, tokenService, albumService, uploadService, galleryService, downloadService)

	server := httpapp.New(log, cfg.TokenSecret, cfg.HTTP.SessionSecret, cfg.HTTP.Host, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Sweeper:    sweeper,
		db:         db,
		redis:      redisClient,
	}
}

func (a *App) Stop(log *slog.Logger) {
	if err := a.HTTPServer.Stop(); err != nil {
		log.Error("failed to stop http server", slog.Any("error", err))
	}

	a.db.Stop()

	if err := a.redis.Close(); err != nil {
		log.Error("failed to close redis client", slog.Any("error", err))
	}
}
