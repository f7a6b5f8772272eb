package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasBurriel/arrivederci-menu/server/internal/middleware"
)

// stubAuthenticator принимает фиксированные сессию и токен.
type stubAuthenticator struct {
	sessionID string
	token     string
}

func (s stubAuthenticator) Authenticate(_ context.Context, sessionID, bearer string) (int64, bool) {
	if sessionID != "" && sessionID == s.sessionID {
		return 7, true
	}
	if bearer != "" && bearer == s.token {
		return 8, true
	}
	return 0, false
}

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		expectedID int64
		expectedOK bool
	}{
		{
			name:       "Контекст с UserID",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, int64(123)),
			expectedID: 123,
			expectedOK: true,
		},
		{
			name:       "Пустой контекст",
			ctx:        context.Background(),
			expectedID: 0,
			expectedOK: false,
		},
		{
			name:       "Контекст с UserID неверного типа",
			ctx:        context.WithValue(context.Background(), middleware.UserIDKey, "not-an-int64"),
			expectedID: 0,
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, ok := middleware.GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.expectedID, userID)
			assert.Equal(t, tt.expectedOK, ok)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	auth := stubAuthenticator{sessionID: "sess-1", token: "tok-1"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		_, _ = fmt.Fprintf(w, "user %d", userID)
	})
	handler := middleware.RequireAuth(auth)(next)

	tests := []struct {
		name           string
		cookie         string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Действующая cookie сессия",
			cookie:         "sess-1",
			expectedStatus: http.StatusOK,
			expectedBody:   "user 7",
		},
		{
			name:           "Действующий bearer токен",
			authHeader:     "Bearer tok-1",
			expectedStatus: http.StatusOK,
			expectedBody:   "user 8",
		},
		{
			name:           "Схема в нижнем регистре",
			authHeader:     "bearer tok-1",
			expectedStatus: http.StatusOK,
			expectedBody:   "user 8",
		},
		{
			name:           "Устаревшая cookie, но валидный токен",
			cookie:         "old",
			authHeader:     "Bearer tok-1",
			expectedStatus: http.StatusOK,
			expectedBody:   "user 8",
		},
		{
			name:           "Без учетных данных",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "No autorizado",
		},
		{
			name:           "Неверный формат заголовка",
			authHeader:     "Token tok-1",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "No autorizado",
		},
		{
			name:           "Неизвестная сессия",
			cookie:         "other",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "No autorizado",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/productos", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}
