package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
)

// State - состояние процесса входа.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// FailureKind различает ошибку хранилища и все остальные.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureStorage - токен не удалось сохранить ни в одном хранилище.
	FailureStorage
	// FailureGeneric - отказ сервера, сеть или неподтвержденная сессия.
	FailureGeneric
)

var (
	// ErrBusy возвращается при попытке отправить форму во время текущей отправки.
	ErrBusy = errors.New("вход уже выполняется")
	// ErrAuthenticated - вход уже выполнен и токен сессии на месте.
	ErrAuthenticated = errors.New("сессия уже открыта")
)

// Пользовательские сообщения.
const (
	MsgStorageBlocked = "No se pudo guardar la sesión en este equipo. " +
		"Revisá los permisos del directorio de configuración e intentá de nuevo."
	MsgEmptyCredentials = "Ingresá usuario y contraseña"
	MsgNoResponse       = "No se pudo conectar con el servidor. Verificá tu conexión."
	MsgRequestBuild     = "No se pudo preparar la solicitud de inicio de sesión."
	MsgLoginFailed      = "Error al iniciar sesión"
	MsgNotConfirmed     = "El servidor no confirmó el inicio de sesión."
	MsgVerifyFailed     = "No se pudo verificar la sesión. Intentá nuevamente."
	MsgServerError      = "Error del servidor. Intentá más tarde."
)

// Credentials - данные формы входа.
type Credentials struct {
	Username string
	Password string
}

// Outcome - итог одной попытки входа.
type Outcome struct {
	State   State
	Failure FailureKind
	// Message - сообщение для пользователя, пустое при успехе.
	Message string
	User    session.User
}

// Flow - конечный автомат входа: idle -> submitting -> {authenticated, failed}.
type Flow struct {
	api      LoginAPI
	store    SessionStore
	verifier SessionVerifier

	mu    sync.Mutex
	state State
	// submits растет с каждой отправкой формы. По нему OnMount узнает,
	// что во время его проверки началась отправка.
	submits uint64
	now     func() time.Time
}

// NewFlow создает процесс входа в состоянии idle.
func NewFlow(loginAPI LoginAPI, store SessionStore, verifier SessionVerifier) *Flow {
	return &Flow{
		api:      loginAPI,
		store:    store,
		verifier: verifier,
		state:    StateIdle,
		now:      time.Now,
	}
}

// State возвращает текущее состояние.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// OnMount сообщает, можно ли сразу перейти в админку без формы входа.
// Во время отправки формы проверка не выполняется. Если отправка началась,
// пока шла проверка, ее результат отбрасывается и состояние не меняется.
func (f *Flow) OnMount(ctx context.Context) bool {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return false
	}
	started := f.submits
	f.mu.Unlock()

	ok := f.verifier.VerifySession(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submits != started {
		slog.Debug("Проверка при открытии формы устарела, результат отброшен")
		return false
	}
	if ok {
		f.state = StateAuthenticated
		return true
	}
	if f.state == StateAuthenticated {
		f.state = StateIdle
	}
	return false
}

// Begin переводит автомат в submitting. Разрешено из idle и failed.
// Из authenticated - только если токена в хранилище уже нет (выход или истекшая сессия).
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateSubmitting:
		return ErrBusy
	case StateAuthenticated:
		if _, ok := f.store.GetToken(); ok {
			return ErrAuthenticated
		}
	}
	f.submits++
	f.state = StateSubmitting
	return nil
}

// Submit выполняет вход строго последовательно:
// запрос на сервер, сохранение токена, сохранение пользователя, проверка сессии.
// Возвращает ErrBusy, если предыдущая отправка еще не завершена,
// и ErrAuthenticated, если сессия уже открыта.
func (f *Flow) Submit(ctx context.Context, creds Credentials) (Outcome, error) {
	if err := f.Begin(); err != nil {
		return Outcome{State: f.State()}, err
	}
	outcome := f.run(ctx, creds)
	f.setState(outcome.State)
	return outcome, nil
}

func (f *Flow) run(ctx context.Context, creds Credentials) Outcome {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		return failed(FailureGeneric, MsgEmptyCredentials)
	}

	resp, err := f.api.Login(ctx, username, creds.Password)
	if err != nil {
		slog.Warn("Вход отклонен", "username", username, "error", err)
		return failed(FailureGeneric, DescribeLoginError(err))
	}

	token := resp.Token
	if token == "" {
		// Сервер подтвердил вход без токена: работаем по cookie сессии,
		// локальная метка только отмечает факт входа и проверяется сервером.
		token = fmt.Sprintf("%s_%d", username, f.now().UnixMilli())
		slog.Debug("Сервер не вернул токен, используется локальная метка сессии")
	}

	if !f.store.SetToken(token) {
		return failed(FailureStorage, MsgStorageBlocked)
	}

	user := session.User{"username": username}
	if !f.store.SetUser(user) {
		slog.Warn("Не удалось сохранить данные пользователя", "username", username)
	}

	if !f.verifier.VerifySession(ctx) {
		f.store.Logout()
		return failed(FailureGeneric, MsgVerifyFailed)
	}

	slog.Info("Вход выполнен", "username", username)
	return Outcome{State: StateAuthenticated, User: user}
}

func failed(kind FailureKind, message string) Outcome {
	return Outcome{State: StateFailed, Failure: kind, Message: message}
}

// DescribeLoginError превращает ошибку входа в сообщение для пользователя.
// Текст сервера имеет приоритет над общими сообщениями.
func DescribeLoginError(err error) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrTransport):
		return MsgNoResponse
	case errors.Is(err, api.ErrRequest):
		return MsgRequestBuild
	case errors.Is(err, api.ErrMissingConfirmation), errors.Is(err, api.ErrDecode):
		return MsgNotConfirmed
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 500:
		return MsgServerError
	default:
		return MsgLoginFailed
	}
}
