package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/middleware"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/services"
)

const (
	msgLoginIncomplete = "Datos de login incompletos"
	msgLoginFailed     = "Usuario o contraseña incorrectos"
	msgLoginOK         = "Login exitoso"
	msgLogoutOK        = "Logout exitoso"
)

// AuthService определяет интерфейс для сервиса аутентификации.
// Это позволит нам легко подменять реализацию (например, для тестов).
type AuthService interface {
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID, bearer string) (int64, bool)
}

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService
	// secureCookie выставляет флаг Secure, нужен за HTTPS.
	secureCookie bool
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: s, secureCookie: secureCookie}
}

// Login проверяет учетные данные, выставляет cookie сессии и возвращает токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		log.Printf("[AuthHandler] Пустое имя пользователя или пароль при входе")
		writeError(w, http.StatusBadRequest, msgLoginIncomplete)
		return
	}

	log.Printf("[AuthHandler] Попытка входа пользователя: %s", req.Username)

	res, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgLoginFailed)
			return
		}
		log.Printf("[AuthHandler] Ошибка входа для %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.SessionID,
		Path:     "/",
		Expires:  res.SessionExpiresAt,
		MaxAge:   int(services.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, models.LoginResponse{Mensaje: msgLoginOK, Token: res.Token})
}

// Check сообщает, действительны ли cookie сессии или токен запроса.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	sessionID, bearer := middleware.Credentials(r)
	authenticated := false
	if sessionID != "" || bearer != "" {
		_, authenticated = h.service.Authenticate(r.Context(), sessionID, bearer)
	}
	writeJSON(w, http.StatusOK, models.CheckResponse{Autenticado: authenticated})
}

// Logout закрывает серверную сессию и стирает cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.Credentials(r)
	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		log.Printf("[AuthHandler] Ошибка закрытия сессии: %v", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, msgLogoutOK)
}
