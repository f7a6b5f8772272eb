// Package auth проверяет сессию на сервере и ведет процесс входа.
package auth

import (
	"context"
	"log/slog"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

// SessionStore - операции хранилища сессии, нужные этому пакету.
type SessionStore interface {
	GetToken() (string, bool)
	SetToken(token string) bool
	SetUser(user session.User) bool
	Logout()
}

// Checker спрашивает сервер о действительности сессии.
type Checker interface {
	CheckAuth(ctx context.Context) (bool, error)
}

// LoginAPI - операции API, нужные процессу входа.
type LoginAPI interface {
	Checker
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
}

// Verifier подтверждает сессию на сервере.
type Verifier struct {
	store   SessionStore
	checker Checker
}

// NewVerifier создает Verifier.
func NewVerifier(store SessionStore, checker Checker) *Verifier {
	return &Verifier{store: store, checker: checker}
}

// VerifySession возвращает true, только если сервер подтвердил сессию.
// Без токена запрос не выполняется. При любом отрицательном ответе
// локальная сессия очищается, чтобы устаревший токен не использовался повторно.
func (v *Verifier) VerifySession(ctx context.Context) bool {
	checked, ok := v.store.GetToken()
	if !ok {
		slog.Debug("Токен отсутствует, проверка на сервере не выполняется")
		return false
	}

	authenticated, err := v.checker.CheckAuth(ctx)
	if err != nil {
		slog.Warn("Проверка сессии не удалась", "error", err)
		v.logoutIfCurrent(checked)
		return false
	}
	if !authenticated {
		slog.Info("Сервер не подтвердил сессию")
		v.logoutIfCurrent(checked)
		return false
	}
	return true
}

// logoutIfCurrent очищает сессию, только если в хранилище все еще проверенный токен.
// Токен, сохраненный новым входом во время проверки, не трогается.
func (v *Verifier) logoutIfCurrent(checked string) {
	if current, ok := v.store.GetToken(); ok && current != checked {
		slog.Debug("Токен сменился во время проверки, сессия не очищается")
		return
	}
	v.store.Logout()
}

// Decision - результат проверки перед входом на защищенный экран.
type Decision int

const (
	// DecisionRender - экран можно показывать.
	DecisionRender Decision = iota
	// DecisionRedirectLogin - нужно перейти на экран входа.
	DecisionRedirectLogin
)

// SessionVerifier - то, что нужно Guard.
type SessionVerifier interface {
	VerifySession(ctx context.Context) bool
}

// Guard защищает экраны, требующие авторизации.
// Результат не кэшируется: каждый переход проверяется заново.
type Guard struct {
	verifier SessionVerifier
}

// NewGuard создает Guard.
func NewGuard(verifier SessionVerifier) *Guard {
	return &Guard{verifier: verifier}
}

// Check проверяет сессию перед показом защищенного экрана.
func (g *Guard) Check(ctx context.Context) Decision {
	if g.verifier.VerifySession(ctx) {
		return DecisionRender
	}
	return DecisionRedirectLogin
}
