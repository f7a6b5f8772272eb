package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/repository"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/services"
)

const testSecret = "test-secret"

// --- Mock UserRepository --- //

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func newAuthService(t *testing.T) services.AuthService {
	t.Helper()
	s := services.NewAuthService(
		repository.NewMemoryUserRepository(),
		repository.NewMemorySessionRepository(),
		testSecret,
	)
	require.NoError(t, s.EnsureUser(context.Background(), "admin", "admin123"))
	return s
}

func TestAuthService_EnsureUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		mockSetup     func(repo *mockUserRepository)
		expectedError error
	}{
		{
			name: "Пользователь создается",
			mockSetup: func(repo *mockUserRepository) {
				repo.On("GetUserByUsername", ctx, "admin").Return(nil, repository.ErrUserNotFound).Once()
				repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(int64(1), nil).Once()
			},
		},
		{
			name: "Пользователь уже существует",
			mockSetup: func(repo *mockUserRepository) {
				repo.On("GetUserByUsername", ctx, "admin").Return(&models.User{ID: 1}, nil).Once()
			},
		},
		{
			name: "Гонка при создании",
			mockSetup: func(repo *mockUserRepository) {
				repo.On("GetUserByUsername", ctx, "admin").Return(nil, repository.ErrUserNotFound).Once()
				repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).
					Return(int64(0), repository.ErrUsernameTaken).Once()
			},
			expectedError: services.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			tt.mockSetup(repo)

			s := services.NewAuthService(repo, repository.NewMemorySessionRepository(), testSecret)
			err := s.EnsureUser(ctx, "admin", "admin123")

			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)

	t.Run("Успешный вход", func(t *testing.T) {
		res, err := s.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.NotEmpty(t, res.SessionID)
		assert.False(t, res.SessionExpiresAt.IsZero())
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		_, err := s.Login(ctx, "admin", "wrong")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("Неизвестный пользователь", func(t *testing.T) {
		_, err := s.Login(ctx, "ghost", "admin123")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("Ошибка репозитория", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("GetUserByUsername", ctx, "admin").Return(nil, errors.New("db down")).Once()
		broken := services.NewAuthService(repo, repository.NewMemorySessionRepository(), testSecret)

		_, err := broken.Login(ctx, "admin", "admin123")
		require.Error(t, err)
		require.NotErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)
	res, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	tests := []struct {
		name      string
		sessionID string
		bearer    string
		ok        bool
	}{
		{name: "Только cookie", sessionID: res.SessionID, ok: true},
		{name: "Только токен", bearer: res.Token, ok: true},
		{name: "Неизвестная сессия, валидный токен", sessionID: "nope", bearer: res.Token, ok: true},
		{name: "Ничего", ok: false},
		{name: "Мусорный токен", bearer: "garbage", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, ok := s.Authenticate(ctx, tt.sessionID, tt.bearer)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Positive(t, userID)
			}
		})
	}

	t.Run("Токен с другим секретом", func(t *testing.T) {
		other := services.NewAuthService(
			repository.NewMemoryUserRepository(),
			repository.NewMemorySessionRepository(),
			"other-secret",
		)
		_, ok := other.Authenticate(ctx, "", res.Token)
		assert.False(t, ok)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	s := newAuthService(t)
	res, err := s.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, res.SessionID))
	_, ok := s.Authenticate(ctx, res.SessionID, "")
	assert.False(t, ok, "сессия должна быть закрыта")

	require.NoError(t, s.Logout(ctx, ""))
	require.NoError(t, s.Logout(ctx, res.SessionID), "повторный выход не ошибка")
}
