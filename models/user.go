package models

import "time"

// User представляет администратора меню.
// Тэги `json` используются для (де)сериализации JSON.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Не отправляем хеш пароля в JSON
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse представляет тело ответа при успешном входе.
// Разные версии сервера отвечают полем `mensaje` или `message`,
// токен может отсутствовать.
type LoginResponse struct {
	Mensaje string `json:"mensaje,omitempty"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Confirmation возвращает текст подтверждения входа из любого из двух полей.
func (r LoginResponse) Confirmation() string {
	if r.Mensaje != "" {
		return r.Mensaje
	}
	return r.Message
}

// CheckResponse представляет ответ GET /auth/check.
type CheckResponse struct {
	Autenticado bool `json:"autenticado"`
}

// ErrorResponse - стандартное тело ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
}
