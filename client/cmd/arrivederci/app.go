package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/config"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
)

// imageProbeTimeout ограничивает один запрос HEAD к изображению.
const imageProbeTimeout = 5 * time.Second

// app - собранные зависимости клиента.
type app struct {
	store       *session.Store
	client      api.Client
	imageClient *http.Client
}

// newApp собирает цепочку хранилищ сессии и API клиент.
// Cookie jar общий: в нем и cookie-хранилище токена, и cookie сессии сервера.
func newApp(cfg *config.Config) (*app, error) {
	jar, err := session.NewCookieJar()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cookie jar: %w", err)
	}

	store := session.NewStore(persistentBackend(cfg), session.NewMemoryBackend(), cookieBackend(jar, cfg.APIURL))
	return &app{
		store:       store,
		client:      api.NewHTTPClient(cfg.APIURL, jar, store),
		imageClient: &http.Client{Timeout: imageProbeTimeout},
	}, nil
}

// persistentBackend выбирает постоянное хранилище: зашифрованный KDBX файл,
// если задан пароль, иначе JSON файл. Недоступное хранилище пропускается,
// цепочка продолжает работать с оставшимися.
func persistentBackend(cfg *config.Config) session.Backend {
	if cfg.VaultPassword != "" {
		vault, err := session.NewVaultBackend(cfg.StorageDir, cfg.APIURL, cfg.VaultPassword)
		if err == nil {
			return vault
		}
		slog.Warn("Зашифрованное хранилище сессии недоступно", "error", err)
		return nil
	}
	file, err := session.NewFileBackend(cfg.StorageDir, cfg.APIURL)
	if err != nil {
		slog.Warn("Файловое хранилище сессии недоступно", "error", err)
		return nil
	}
	return file
}

func cookieBackend(jar http.CookieJar, apiURL string) session.Backend {
	cookie, err := session.NewCookieBackend(jar, apiURL)
	if err != nil {
		slog.Warn("Cookie хранилище сессии недоступно", "error", err)
		return nil
	}
	return cookie
}
