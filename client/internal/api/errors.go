package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthorization сигнализирует об отказе в доступе (401/403).
	ErrAuthorization = errors.New("ошибка авторизации")
	// ErrNotFound - ресурс не найден (404).
	ErrNotFound = errors.New("ресурс не найден")
	// ErrTransport - ответ от сервера не получен.
	ErrTransport = errors.New("сервер не ответил")
	// ErrRequest - запрос не удалось сформировать.
	ErrRequest = errors.New("ошибка формирования запроса")
	// ErrDecode - сервер ответил телом, которое не удалось разобрать.
	ErrDecode = errors.New("ошибка декодирования ответа")
	// ErrMissingConfirmation - ответ на вход не содержит ни токена, ни подтверждения.
	ErrMissingConfirmation = errors.New("сервер не подтвердил вход")
)

// StatusError - ответ сервера с кодом вне диапазона 2xx.
type StatusError struct {
	StatusCode int
	// ServerMessage - текст из поля "error" тела ответа, если он был.
	ServerMessage string
}

func (e *StatusError) Error() string {
	if e.ServerMessage != "" {
		return fmt.Sprintf("статус %d: %s", e.StatusCode, e.ServerMessage)
	}
	return fmt.Sprintf("статус %d", e.StatusCode)
}

// Unwrap позволяет проверять StatusError через errors.Is(err, ErrAuthorization) и ErrNotFound.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthorization
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// ServerMessage извлекает текст ошибки сервера из цепочки ошибок.
func ServerMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.ServerMessage
	}
	return ""
}
