package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/lib/logger/sl"
	usersvc "lensdrop/internal/services/user_service"
	"lensdrop/internal/storage"
	"lensdrop/internal/transport/http/dto"
	"lensdrop/internal/transport/http/dto/request"
	"lensdrop/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	RegisterUser(ctx context.Context, name, email, studioName, password string) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (models.User, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type AuthService interface {
	GenerateTokens(ctx context.Context, user models.User) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	RevokeAll(ctx context.Context, userID string) error
}

type AlbumService interface {
	CreateAlbum(ctx context.Context, ownerID uuid.UUID, input dto.CreateAlbumInput) (*models.Album, error)
	ListAlbums(ctx context.Context, ownerID uuid.UUID) ([]models.Album, error)
	GetAlbum(ctx context.Context, ownerID, albumID uuid.UUID) (*dto.AlbumDetail, error)
	UpdateAlbum(ctx context.Context, ownerID, albumID uuid.UUID, input dto.UpdateAlbumInput) (*models.Album, error)
	DeleteAlbum(ctx context.Context, ownerID, albumID uuid.UUID) error
	ListAlbumMedia(ctx context.Context, ownerID, albumID uuid.UUID) ([]models.Media, error)
}

type UploadService interface {
	ReserveUpload(ctx context.Context, ownerID uuid.UUID, input dto.ReserveUploadInput) (*dto.Reservation, error)
	CompleteUpload(ctx context.Context, ownerID, mediaID uuid.UUID) (*models.Media, error)
}

type GalleryService interface {
	ViewGallery(ctx context.Context, slug string, unlocked bool, visitor dto.VisitorInfo) (*dto.GalleryView, *dto.GalleryLocked, error)
	Unlock(ctx context.Context, slug, pin string) (*models.Album, error)
}

type DownloadService interface {
	RequestDownload(ctx context.Context, slug string, mediaID uuid.UUID, unlocked bool, visitor dto.VisitorInfo) (*dto.DownloadGrant, error)
}

type Routers struct {
	log             *slog.Logger
	UserService     UserService
	AuthService     AuthService
	AlbumService    AlbumService
	UploadService   UploadService
	GalleryService  GalleryService
	DownloadService DownloadService
}

func NewRouter(log *slog.Logger, userService UserService, authService AuthService, albumService AlbumService, uploadService UploadService, galleryService GalleryService, downloadService DownloadService) *Routers {
	return &Routers{
		log:             log,
		UserService:     userService,
		AuthService:     authService,
		AlbumService:    albumService,
		UploadService:   uploadService,
		GalleryService:  galleryService,
		DownloadService: downloadService,
	}
}

var ErrNoIdentity = errors.New("no identity in request context")

const gallerySession = "gallery_session"

func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RegisterRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	userID, err := r.UserService.RegisterUser(c.Request().Context(), req.Name, req.Email, req.StudioName, req.Password)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserExist) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	log.Info("user registered successfully", slog.String("user_id", userID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(map[string]uuid.UUID{
		"user_id": userID,
	}))
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	user, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, usersvc.ErrInvalidCredentials) {
			log.Error("login failed", sl.Err(err))
		}
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	tokens, err := r.AuthService.GenerateTokens(c.Request().Context(), user)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{
		"user_id":       tokens.UserID,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	}))
}

func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	newTokens, err := r.AuthService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("error refresh tokens", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(newTokens))
}

func (r *Routers) Me(c echo.Context) error {
	const op = "http.routers.Me"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	user, err := r.UserService.UserByID(c.Request().Context(), ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		}

		r.log.Error("failed to load profile", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(user))
}

func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.AuthService.RevokeAll(c.Request().Context(), ownerID.String()); err != nil {
		r.log.Error("failed to revoke tokens", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "logged out"})
}

func (r *Routers) CreateAlbum(c echo.Context) error {
	const op = "http.routers.CreateAlbum"

	log := r.log.With(
		slog.String("op", op),
	)

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req dto.CreateAlbumInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	album, err := r.AlbumService.CreateAlbum(c.Request().Context(), ownerID, req)
	if err != nil {
		log.Error("failed to create album", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(album))
}

func (r *Routers) ListAlbums(c echo.Context) error {
	const op = "http.routers.ListAlbums"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	albums, err := r.AlbumService.ListAlbums(c.Request().Context(), ownerID)
	if err != nil {
		r.log.Error("failed to list albums", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(albums))
}

func (r *Routers) GetAlbum(c echo.Context) error {
	const op = "http.routers.GetAlbum"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid album ID format"))
	}

	detail, err := r.AlbumService.GetAlbum(c.Request().Context(), ownerID, albumID)
	if err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
		}

		r.log.Error("failed to get album", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(detail))
}

func (r *Routers) UpdateAlbum(c echo.Context) error {
	const op = "http.routers.UpdateAlbum"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid album ID format"))
	}

	var req dto.UpdateAlbumInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	album, err := r.AlbumService.UpdateAlbum(c.Request().Context(), ownerID, albumID, req)
	if err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
		}

		r.log.Error("failed to update album", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(album))
}

func (r *Routers) DeleteAlbum(c echo.Context) error {
	const op = "http.routers.DeleteAlbum"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid album ID format"))
	}

	if err := r.AlbumService.DeleteAlbum(c.Request().Context(), ownerID, albumID); err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
		}

		r.log.Error("failed to delete album", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.NoContent(http.StatusNoContent)
}

func (r *Routers) ListAlbumMedia(c echo.Context) error {
	const op = "http.routers.ListAlbumMedia"

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid album ID format"))
	}

	items, err := r.AlbumService.ListAlbumMedia(c.Request().Context(), ownerID, albumID)
	if err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
		}

		r.log.Error("failed to list album media", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

func (r *Routers) ReserveUpload(c echo.Context) error {
	const op = "http.routers.ReserveUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	var req dto.ReserveUploadInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	reservation, err := r.UploadService.ReserveUpload(c.Request().Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, storage.ErrAlbumNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
		}
		if models.IsMediaValidationError(err) {
			return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
		}

		log.Error("failed to reserve upload", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(reservation))
}

func (r *Routers) CompleteUpload(c echo.Context) error {
	const op = "http.routers.CompleteUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	ownerID, err := ownerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	mediaID, err := uuid.Parse(c.Param("media_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid media ID format"))
	}

	media, err := r.UploadService.CompleteUpload(c.Request().Context(), ownerID, mediaID)
	if err != nil {
		if errors.Is(err, storage.ErrMediaNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrMediaNotFound)
		}

		log.Error("failed to complete upload", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(media))
}

func (r *Routers) ViewGallery(c echo.Context) error {
	const op = "http.routers.ViewGallery"

	slug := c.Param("slug")

	view, locked, err := r.GalleryService.ViewGallery(
		c.Request().Context(), slug, r.galleryUnlocked(c, slug), visitorInfo(c))
	if err != nil {
		return r.galleryError(c, op, err)
	}

	if locked != nil {
		return c.JSON(http.StatusOK, response.SuccessResponse(locked))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(view))
}

func (r *Routers) UnlockGallery(c echo.Context) error {
	const op = "http.routers.UnlockGallery"

	slug := c.Param("slug")

	var req dto.UnlockInput

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if _, err := r.GalleryService.Unlock(c.Request().Context(), slug, req.Pin); err != nil {
		return r.galleryError(c, op, err)
	}

	sess, _ := session.Get(gallerySession, c)
	sess.Values["unlocked:"+slug] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		r.log.Error("failed to save session", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "gallery unlocked"})
}

func (r *Routers) DownloadMedia(c echo.Context) error {
	const op = "http.routers.DownloadMedia"

	slug := c.Param("slug")

	mediaID, err := uuid.Parse(c.Param("media_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid media ID format"))
	}

	grant, err := r.DownloadService.RequestDownload(
		c.Request().Context(), slug, mediaID, r.galleryUnlocked(c, slug), visitorInfo(c))
	if err != nil {
		return r.galleryError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(grant))
}

// galleryError maps the gallery access sentinels onto HTTP statuses. Expired
// albums answer 410 so clients can distinguish "gone" from "never existed".
func (r *Routers) galleryError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrAlbumNotFound):
		return c.JSON(http.StatusNotFound, response.ErrAlbumNotFound)
	case errors.Is(err, storage.ErrMediaNotFound):
		return c.JSON(http.StatusNotFound, response.ErrMediaNotFound)
	case errors.Is(err, storage.ErrAlbumExpired):
		return c.JSON(http.StatusGone, response.ErrAlbumExpired)
	case errors.Is(err, storage.ErrPinRequired):
		return c.JSON(http.StatusUnauthorized, response.ErrPinRequired)
	case errors.Is(err, storage.ErrInvalidPin):
		return c.JSON(http.StatusUnauthorized, response.ErrInvalidPin)
	case errors.Is(err, storage.ErrDownloadsDisabled):
		return c.JSON(http.StatusForbidden, response.ErrDownloadsDisabled)
	}

	r.log.Error("gallery request failed", slog.String("op", op), sl.Err(err))

	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

// galleryUnlocked reports whether this visitor's session already holds an
// unlock for the slug.
func (r *Routers) galleryUnlocked(c echo.Context, slug string) bool {
	sess, err := session.Get(gallerySession, c)
	if err != nil {
		return false
	}

	unlocked, _ := sess.Values["unlocked:"+slug].(bool)

	return unlocked
}

func visitorInfo(c echo.Context) dto.VisitorInfo {
	return dto.VisitorInfo{
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// ownerID extracts the photographer ID from the verified JWT.
func ownerID(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return uuid.Nil, ErrNoIdentity
	}

	id, err := uuid.Parse(uid)
	if err != nil {
		return uuid.Nil, ErrNoIdentity
	}

	return id, nil
}
