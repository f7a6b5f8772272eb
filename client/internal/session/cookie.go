package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// CookieLifetime - срок жизни cookie с токеном.
const CookieLifetime = 24 * time.Hour

// NewCookieJar создает cookie jar с правилами публичных суффиксов.
// Тот же jar передается HTTP клиенту API, поэтому cookie уходят с каждым запросом.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cookie jar: %w", err)
	}
	return jar, nil
}

// CookieBackend хранит значения как cookie источника API с путем "/".
type CookieBackend struct {
	jar    http.CookieJar
	origin *url.URL
	now    func() time.Time
}

// NewCookieBackend создает хранилище поверх jar для базового URL API.
func NewCookieBackend(jar http.CookieJar, apiURL string) (*CookieBackend, error) {
	if jar == nil {
		return nil, errors.New("cookie jar не задан")
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL API '%s': %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("в URL API '%s' нет хоста", apiURL)
	}
	return &CookieBackend{
		jar:    jar,
		origin: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		now:    time.Now,
	}, nil
}

func (c *CookieBackend) Name() string { return "cookie" }

func (c *CookieBackend) Get(key string) (string, error) {
	for _, cookie := range c.jar.Cookies(c.origin) {
		if cookie.Name != key {
			continue
		}
		value, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			return "", fmt.Errorf("некорректное значение cookie '%s': %w", key, err)
		}
		if value == "" {
			return "", ErrKeyNotFound
		}
		return value, nil
	}
	return "", ErrKeyNotFound
}

func (c *CookieBackend) Set(key, value string) error {
	c.jar.SetCookies(c.origin, []*http.Cookie{{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  c.now().Add(CookieLifetime),
		SameSite: http.SameSiteStrictMode,
	}})
	return nil
}

// Remove истекает cookie датой в прошлом.
func (c *CookieBackend) Remove(key string) error {
	c.jar.SetCookies(c.origin, []*http.Cookie{{
		Name:    key,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0).UTC(),
		MaxAge:  -1,
	}})
	return nil
}
