package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// User - произвольные данные об авторизованном пользователе (минимум "username").
type User map[string]any

// Username возвращает имя пользователя, если оно есть.
func (u User) Username() string {
	name, _ := u["username"].(string)
	return name
}

// Store хранит токен и пользователя в цепочке хранилищ.
//
// Токен пишется в постоянное, сессионное и cookie хранилища,
// пользователь только в постоянное и сессионное.
// Отсутствующие (nil) хранилища пропускаются.
type Store struct {
	tokenChain []Backend
	userChain  []Backend
}

// NewStore собирает цепочку в порядке приоритета чтения.
func NewStore(persistent, sessionScoped, cookie Backend) *Store {
	return &Store{
		tokenChain: compact(persistent, sessionScoped, cookie),
		userChain:  compact(persistent, sessionScoped),
	}
}

func compact(backends ...Backend) []Backend {
	result := make([]Backend, 0, len(backends))
	for _, b := range backends {
		if b != nil {
			result = append(result, b)
		}
	}
	return result
}

// guard выполняет операцию хранилища, превращая панику в ошибку.
func guard(op func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errBackendPanic, r)
		}
	}()
	return op()
}

func getFrom(b Backend, key string) (value string, err error) {
	err = guard(func() error {
		var getErr error
		value, getErr = b.Get(key)
		return getErr
	})
	return value, err
}

// SetToken сохраняет токен во все хранилища цепочки.
// Ошибка одного хранилища не мешает записи в следующие.
// Возвращает true, если запись удалась хотя бы в одно.
func (s *Store) SetToken(token string) bool {
	if token == "" {
		slog.Warn("Попытка сохранить пустой токен")
		return false
	}
	stored := false
	for _, b := range s.tokenChain {
		if err := guard(func() error { return b.Set(TokenKey, token) }); err != nil {
			slog.Warn("Не удалось сохранить токен", "backend", b.Name(), "error", err)
			continue
		}
		stored = true
	}
	if !stored {
		slog.Error("Токен не сохранен ни в одном хранилище")
	}
	return stored
}

// SetUser сохраняет пользователя в постоянное и сессионное хранилища.
// Результат зависит только от сериализации: ошибки записи не фатальны.
func (s *Store) SetUser(user User) bool {
	if user == nil {
		return false
	}
	data, err := json.Marshal(user)
	if err != nil {
		slog.Warn("Ошибка сериализации пользователя", "error", err)
		return false
	}
	for _, b := range s.userChain {
		if err = guard(func() error { return b.Set(UserKey, string(data)) }); err != nil {
			slog.Warn("Не удалось сохранить пользователя", "backend", b.Name(), "error", err)
		}
	}
	return true
}

// GetToken возвращает первый непустой токен в порядке приоритета.
func (s *Store) GetToken() (string, bool) {
	for _, b := range s.tokenChain {
		value, err := getFrom(b, TokenKey)
		if err != nil {
			if !errors.Is(err, ErrKeyNotFound) {
				slog.Warn("Ошибка чтения токена", "backend", b.Name(), "error", err)
			}
			continue
		}
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// GetUser возвращает пользователя из первого хранилища, где он читается.
// Ошибки разбора JSON не передаются наружу.
func (s *Store) GetUser() (User, bool) {
	for _, b := range s.userChain {
		value, err := getFrom(b, UserKey)
		if err != nil || value == "" {
			continue
		}
		var user User
		if err = json.Unmarshal([]byte(value), &user); err != nil {
			slog.Warn("Поврежденные данные пользователя", "backend", b.Name(), "error", err)
			continue
		}
		if user != nil {
			return user, true
		}
	}
	return nil, false
}

// Logout удаляет токен и пользователя из всех хранилищ. Никогда не падает.
func (s *Store) Logout() {
	for _, b := range s.tokenChain {
		if err := guard(func() error { return b.Remove(TokenKey) }); err != nil {
			slog.Warn("Не удалось удалить токен", "backend", b.Name(), "error", err)
		}
	}
	for _, b := range s.userChain {
		if err := guard(func() error { return b.Remove(UserKey) }); err != nil {
			slog.Warn("Не удалось удалить пользователя", "backend", b.Name(), "error", err)
		}
	}
	slog.Info("Локальная сессия очищена")
}

// IsAuthenticated проверяет только наличие токена, без обращения к серверу.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.GetToken()
	return ok
}

// BackendStatus описывает наличие токена в одном хранилище.
type BackendStatus struct {
	Name     string
	HasToken bool
	Err      error
}

// Inspect возвращает состояние токена по каждому хранилищу цепочки.
func (s *Store) Inspect() []BackendStatus {
	statuses := make([]BackendStatus, 0, len(s.tokenChain))
	for _, b := range s.tokenChain {
		value, err := getFrom(b, TokenKey)
		status := BackendStatus{Name: b.Name(), HasToken: err == nil && value != ""}
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			status.Err = err
		}
		statuses = append(statuses, status)
	}
	return statuses
}
