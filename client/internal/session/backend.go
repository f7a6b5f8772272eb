// Package session хранит токен и данные пользователя в цепочке хранилищ.
//
// Запись идет во все доступные хранилища независимо друг от друга,
// чтение возвращает первое непустое значение в порядке приоритета.
package session

import (
	"errors"
	"net/url"
	"strings"
)

// Ключи, под которыми хранятся токен и пользователь.
const (
	TokenKey = "authToken" //nolint:gosec // Это имя ключа, а не сам токен
	UserKey  = "authUser"
)

// ErrKeyNotFound возвращается хранилищем, если ключ отсутствует.
var ErrKeyNotFound = errors.New("ключ не найден")

// errBackendPanic оборачивает панику внутри хранилища.
var errBackendPanic = errors.New("паника в хранилище")

// Backend - одно хранилище ключ/значение.
// Реализации должны быть безопасны для конкурентного использования.
type Backend interface {
	// Name возвращает имя хранилища для логов и диагностики.
	Name() string
	// Get возвращает значение или ErrKeyNotFound.
	Get(key string) (string, error)
	// Set сохраняет значение.
	Set(key, value string) error
	// Remove удаляет ключ. Отсутствие ключа ошибкой не считается.
	Remove(key string) error
}

// OriginKey превращает базовый URL API в имя, пригодное для файла:
// "http://localhost:5000/api" -> "http_localhost_5000".
// Хранилища привязаны к источнику (схема + хост), а не к пути.
func OriginKey(apiURL string) string {
	origin := apiURL
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(origin) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	key := strings.Trim(b.String(), "_")
	if key == "" {
		return "default"
	}
	return key
}
