package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"lensdrop/internal/domain/models"
	"lensdrop/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserService_RegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("password is stored hashed", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		newID := uuid.New()
		repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).Return(newID, nil)

		id, err := svc.RegisterUser(ctx, "Ann", "ann@example.com", "Ann Studio", "sup3r-secret")
		require.NoError(t, err)
		assert.Equal(t, newID, id)

		saved := repo.Calls[0].Arguments.Get(1).(models.User)
		assert.NotEqual(t, []byte("sup3r-secret"), saved.Password)
		require.NoError(t, bcrypt.CompareHashAndPassword(saved.Password, []byte("sup3r-secret")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		repo.On("SaveUser", ctx, mock.AnythingOfType("models.User")).
			Return(uuid.Nil, storage.ErrUserExists)

		_, err := svc.RegisterUser(ctx, "Ann", "ann@example.com", "", "sup3r-secret")
		require.ErrorIs(t, err, ErrUserExist)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("sup3r-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	account := models.User{
		ID:       uuid.New(),
		Email:    "ann@example.com",
		Password: hash,
	}

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		repo.On("UserByEmail", ctx, account.Email).Return(account, nil)

		user, err := svc.Login(ctx, account.Email, "sup3r-secret")
		require.NoError(t, err)
		assert.Equal(t, account.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		repo.On("UserByEmail", ctx, account.Email).Return(account, nil)

		_, err := svc.Login(ctx, account.Email, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		repo.On("UserByEmail", ctx, "ghost@example.com").
			Return(models.User{}, storage.ErrUserNotFound)

		_, err := svc.Login(ctx, "ghost@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_UserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		account := models.User{ID: uuid.New(), Email: "ann@example.com"}
		repo.On("GetUserById", ctx, account.ID).Return(account, nil)

		user, err := svc.UserByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account, user)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewUserService(testLogger(), repo)

		ghostID := uuid.New()
		repo.On("GetUserById", ctx, ghostID).Return(models.User{}, storage.ErrUserNotFound)

		_, err := svc.UserByID(ctx, ghostID)
		require.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}
