package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/auth"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

// MockAPI - мок API для входа и проверки сессии.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *MockAPI) CheckAuth(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// blocked - хранилище, запрещенное окружением.
type blocked struct{}

func (blocked) Name() string               { return "blocked" }
func (blocked) Get(string) (string, error) { return "", errors.New("blocked") }
func (blocked) Set(string, string) error   { return errors.New("blocked") }
func (blocked) Remove(string) error        { return errors.New("blocked") }

// gatedAPI задерживает первую проверку сессии до закрытия release.
// Остальные проверки сразу подтверждают сессию.
type gatedAPI struct {
	entered chan struct{}
	release chan struct{}
	first   bool
	checks  atomic.Int32
}

func newGatedAPI(first bool) *gatedAPI {
	return &gatedAPI{entered: make(chan struct{}), release: make(chan struct{}), first: first}
}

func (g *gatedAPI) Login(context.Context, string, string) (*models.LoginResponse, error) {
	return &models.LoginResponse{Mensaje: "Login exitoso", Token: "new-jwt"}, nil
}

func (g *gatedAPI) CheckAuth(context.Context) (bool, error) {
	if g.checks.Add(1) == 1 {
		close(g.entered)
		<-g.release
		return g.first, nil
	}
	return true, nil
}

func newStore() *session.Store {
	return session.NewStore(session.NewMemoryBackend(), session.NewMemoryBackend(), session.NewMemoryBackend())
}

func TestVerifier_VerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("Без токена сеть не используется", func(t *testing.T) {
		m := &MockAPI{}
		v := auth.NewVerifier(newStore(), m)

		assert.False(t, v.VerifySession(ctx))
		m.AssertNotCalled(t, "CheckAuth", mock.Anything)
	})

	t.Run("Сервер подтвердил", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("tok"))
		m := &MockAPI{}
		m.On("CheckAuth", ctx).Return(true, nil).Once()

		assert.True(t, auth.NewVerifier(store, m).VerifySession(ctx))
		assert.True(t, store.IsAuthenticated())
		m.AssertExpectations(t)
	})

	negative := []struct {
		name string
		ok   bool
		err  error
	}{
		{"Устаревший токен", false, nil},
		{"Ответ 401", false, &api.StatusError{StatusCode: http.StatusUnauthorized}},
		{"Ошибка сервера", false, &api.StatusError{StatusCode: http.StatusInternalServerError}},
		{"Нет связи", false, fmt.Errorf("%w: dial", api.ErrTransport)},
	}
	for _, tc := range negative {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore()
			require.True(t, store.SetToken("stale"))
			require.True(t, store.SetUser(session.User{"username": "admin"}))
			m := &MockAPI{}
			m.On("CheckAuth", ctx).Return(tc.ok, tc.err).Once()

			assert.False(t, auth.NewVerifier(store, m).VerifySession(ctx))

			_, ok := store.GetToken()
			assert.False(t, ok, "токен должен быть удален")
			_, ok = store.GetUser()
			assert.False(t, ok, "пользователь должен быть удален")
		})
	}

	t.Run("Токен сменился во время проверки", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("old-jwt"))
		g := newGatedAPI(false)
		v := auth.NewVerifier(store, g)

		done := make(chan bool)
		go func() { done <- v.VerifySession(ctx) }()
		<-g.entered
		require.True(t, store.SetToken("new-jwt"))
		close(g.release)

		assert.False(t, <-done)
		token, ok := store.GetToken()
		require.True(t, ok, "новый токен не должен быть удален")
		assert.Equal(t, "new-jwt", token)
	})

	t.Run("Локальная метка тоже проверяется", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("admin_1700000000000"))
		m := &MockAPI{}
		m.On("CheckAuth", ctx).Return(false, nil).Once()

		assert.False(t, auth.NewVerifier(store, m).VerifySession(ctx))
		m.AssertExpectations(t)
	})
}

func TestGuard_Check(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	require.True(t, store.SetToken("tok"))
	m := &MockAPI{}
	m.On("CheckAuth", ctx).Return(true, nil).Once()
	m.On("CheckAuth", ctx).Return(false, nil).Once()
	guard := auth.NewGuard(auth.NewVerifier(store, m))

	assert.Equal(t, auth.DecisionRender, guard.Check(ctx))
	// Каждый переход проверяется заново
	assert.Equal(t, auth.DecisionRedirectLogin, guard.Check(ctx))
	assert.Equal(t, auth.DecisionRedirectLogin, guard.Check(ctx))
	m.AssertNumberOfCalls(t, "CheckAuth", 2)
}

func TestFlow_Submit(t *testing.T) {
	ctx := context.Background()
	creds := auth.Credentials{Username: "admin", Password: "admin123"}

	t.Run("Успешный вход", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Mensaje: "Login exitoso", Token: "jwt"}, nil).Once()
		m.On("CheckAuth", ctx).Return(true, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))
		require.Equal(t, auth.StateIdle, flow.State())

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)

		assert.Equal(t, auth.StateAuthenticated, outcome.State)
		assert.Equal(t, auth.FailureNone, outcome.Failure)
		assert.Empty(t, outcome.Message)
		assert.Equal(t, auth.StateAuthenticated, flow.State())
		token, ok := store.GetToken()
		require.True(t, ok)
		assert.Equal(t, "jwt", token)
		user, ok := store.GetUser()
		require.True(t, ok)
		assert.Equal(t, "admin", user.Username())
		m.AssertExpectations(t)
	})

	t.Run("Вход без токена в ответе", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Message: "Login exitoso"}, nil).Once()
		m.On("CheckAuth", ctx).Return(true, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateAuthenticated, outcome.State)
		token, ok := store.GetToken()
		require.True(t, ok)
		assert.Regexp(t, `^admin_\d+$`, token)
		m.AssertExpectations(t)
	})

	t.Run("Хранилище заблокировано", func(t *testing.T) {
		store := session.NewStore(blocked{}, blocked{}, blocked{})
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Mensaje: "Login exitoso", Token: "jwt"}, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateFailed, outcome.State)
		assert.Equal(t, auth.FailureStorage, outcome.Failure)
		assert.Equal(t, auth.MsgStorageBlocked, outcome.Message)
		m.AssertNotCalled(t, "CheckAuth", mock.Anything)
	})

	t.Run("Неверные учетные данные", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "admin123").Return(nil, &api.StatusError{
			StatusCode: http.StatusUnauthorized, ServerMessage: "Usuario o contraseña incorrectos",
		}).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateFailed, outcome.State)
		assert.Equal(t, auth.FailureGeneric, outcome.Failure)
		assert.Equal(t, "Usuario o contraseña incorrectos", outcome.Message)
		assert.False(t, store.IsAuthenticated())
	})

	t.Run("Проверка после сохранения не прошла", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Mensaje: "Login exitoso", Token: "jwt"}, nil).Once()
		m.On("CheckAuth", ctx).Return(false, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateFailed, outcome.State)
		assert.Equal(t, auth.FailureGeneric, outcome.Failure)
		assert.Equal(t, auth.MsgVerifyFailed, outcome.Message)
		assert.False(t, store.IsAuthenticated())
		_, ok := store.GetUser()
		assert.False(t, ok)
	})

	t.Run("Пустые поля", func(t *testing.T) {
		m := &MockAPI{}
		store := newStore()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, auth.Credentials{Username: "  "})
		require.NoError(t, err)
		assert.Equal(t, auth.MsgEmptyCredentials, outcome.Message)
		m.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Повторная попытка после ошибки", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		m.On("Login", ctx, "admin", "bad").Return(nil, &api.StatusError{StatusCode: http.StatusUnauthorized}).Once()
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Mensaje: "Login exitoso", Token: "jwt"}, nil).Once()
		m.On("CheckAuth", ctx).Return(true, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

		outcome, err := flow.Submit(ctx, auth.Credentials{Username: "admin", Password: "bad"})
		require.NoError(t, err)
		require.Equal(t, auth.StateFailed, outcome.State)
		assert.Equal(t, auth.MsgLoginFailed, outcome.Message)

		outcome, err = flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateAuthenticated, outcome.State)
	})

	t.Run("Повторная отправка во время отправки", func(t *testing.T) {
		store := newStore()
		m := &MockAPI{}
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))
		require.NoError(t, flow.Begin())

		_, err := flow.Submit(ctx, creds)
		require.ErrorIs(t, err, auth.ErrBusy)
		m.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Отправка при открытой сессии", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("jwt"))
		m := &MockAPI{}
		m.On("CheckAuth", ctx).Return(true, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))
		require.True(t, flow.OnMount(ctx))

		outcome, err := flow.Submit(ctx, creds)
		require.ErrorIs(t, err, auth.ErrAuthenticated)
		assert.Equal(t, auth.StateAuthenticated, outcome.State)
		m.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Отправка после выхода из открытой сессии", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("jwt"))
		m := &MockAPI{}
		m.On("CheckAuth", ctx).Return(true, nil).Twice()
		m.On("Login", ctx, "admin", "admin123").
			Return(&models.LoginResponse{Mensaje: "Login exitoso", Token: "jwt2"}, nil).Once()
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))
		require.True(t, flow.OnMount(ctx))
		store.Logout()

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, auth.StateAuthenticated, outcome.State)
		m.AssertExpectations(t)
	})
}

func TestFlow_OnMount(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	m := &MockAPI{}
	flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))

	assert.False(t, flow.OnMount(ctx))
	assert.Equal(t, auth.StateIdle, flow.State())

	require.True(t, store.SetToken("jwt"))
	m.On("CheckAuth", ctx).Return(true, nil).Once()
	assert.True(t, flow.OnMount(ctx))
	assert.Equal(t, auth.StateAuthenticated, flow.State())
}

func TestFlow_OnMountConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	creds := auth.Credentials{Username: "admin", Password: "admin123"}

	t.Run("Поздний отказ не стирает новый вход", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("old-jwt"))
		g := newGatedAPI(false)
		flow := auth.NewFlow(g, store, auth.NewVerifier(store, g))

		mounted := make(chan bool)
		go func() { mounted <- flow.OnMount(ctx) }()
		<-g.entered

		outcome, err := flow.Submit(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, auth.StateAuthenticated, outcome.State)

		close(g.release)
		assert.False(t, <-mounted)

		token, ok := store.GetToken()
		require.True(t, ok, "токен нового входа должен остаться")
		assert.Equal(t, "new-jwt", token)
		_, ok = store.GetUser()
		assert.True(t, ok)
		assert.Equal(t, auth.StateAuthenticated, flow.State())
	})

	t.Run("Позднее подтверждение не меняет состояние", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("old-jwt"))
		g := newGatedAPI(true)
		flow := auth.NewFlow(g, store, auth.NewVerifier(store, g))

		mounted := make(chan bool)
		go func() { mounted <- flow.OnMount(ctx) }()
		<-g.entered

		require.NoError(t, flow.Begin())
		close(g.release)
		assert.False(t, <-mounted)
		assert.Equal(t, auth.StateSubmitting, flow.State())
	})

	t.Run("Во время отправки проверка не выполняется", func(t *testing.T) {
		store := newStore()
		require.True(t, store.SetToken("jwt"))
		m := &MockAPI{}
		flow := auth.NewFlow(m, store, auth.NewVerifier(store, m))
		require.NoError(t, flow.Begin())

		assert.False(t, flow.OnMount(ctx))
		assert.Equal(t, auth.StateSubmitting, flow.State())
		m.AssertNotCalled(t, "CheckAuth", mock.Anything)
	})
}

func TestDescribeLoginError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Текст сервера", &api.StatusError{StatusCode: 400, ServerMessage: "Datos de login incompletos"}, "Datos de login incompletos"},
		{"Нет ответа", fmt.Errorf("%w: refused", api.ErrTransport), auth.MsgNoResponse},
		{"Запрос не сформирован", fmt.Errorf("%w: bad url", api.ErrRequest), auth.MsgRequestBuild},
		{"Нет подтверждения", api.ErrMissingConfirmation, auth.MsgNotConfirmed},
		{"Ошибка 5xx", &api.StatusError{StatusCode: 502}, auth.MsgServerError},
		{"Прочее", &api.StatusError{StatusCode: 401}, auth.MsgLoginFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.DescribeLoginError(tt.err))
		})
	}
}
