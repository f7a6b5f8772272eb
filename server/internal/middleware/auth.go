package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// Тип для ключа контекста.
type contextKey string

// Ключ для хранения ID пользователя в контексте.
const UserIDKey contextKey = "userID"

// SessionCookieName - имя cookie серверной сессии.
const SessionCookieName = "session_id"

// msgUnauthorized - тело ответа 401, его ожидает клиент.
const msgUnauthorized = "No autorizado"

// Authenticator проверяет идентификатор сессии или bearer токен.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID, bearer string) (int64, bool)
}

// Credentials извлекает cookie сессии и bearer токен из запроса.
// Отсутствующие значения возвращаются пустыми строками.
func Credentials(r *http.Request) (string, string) {
	var sessionID, bearer string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		sessionID = c.Value
	}

	// Проверяем формат "Bearer token"
	headerParts := strings.Fields(r.Header.Get("Authorization"))
	if len(headerParts) == 2 && strings.EqualFold(headerParts[0], "bearer") {
		bearer = headerParts[1]
	}
	return sessionID, bearer
}

// RequireAuth пропускает запрос дальше, только если есть действующая сессия или токен.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, bearer := Credentials(r)
			if sessionID == "" && bearer == "" {
				log.Println("[AuthMiddleware] Нет ни cookie сессии, ни токена")
				writeUnauthorized(w)
				return
			}

			userID, ok := auth.Authenticate(r.Context(), sessionID, bearer)
			if !ok {
				log.Println("[AuthMiddleware] Сессия или токен недействительны")
				writeUnauthorized(w)
				return
			}

			// Добавляем UserID в контекст запроса
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: msgUnauthorized})
}

// GetUserIDFromContext извлекает UserID из контекста запроса.
// Возвращает ID пользователя и true, если ID найден, иначе 0 и false.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
