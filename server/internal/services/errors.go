package services

import "errors"

// Кастомные ошибки сервиса.
var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUsernameTaken      = errors.New("имя пользователя уже занято")
	ErrValidation         = errors.New("некорректные данные")
	ErrNotFound           = errors.New("объект не найден")
	ErrCategoryExists     = errors.New("категория уже существует")
	ErrCategoryInUse      = errors.New("категория используется продуктами")
)

// ValidationError описывает, какое поле не прошло проверку.
// Message отдается клиенту как есть.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
