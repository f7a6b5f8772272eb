package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// maxErrorBody ограничивает чтение тела ответа с ошибкой.
const maxErrorBody = 64 << 10

// TokenSource отдает текущий токен для заголовка Authorization.
type TokenSource interface {
	GetToken() (string, bool)
}

// Client определяет интерфейс для взаимодействия с REST API меню.
type Client interface {
	// Login отправляет учетные данные. Успехом считается 2xx с токеном или подтверждением.
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	// CheckAuth спрашивает сервер, действительна ли текущая сессия.
	CheckAuth(ctx context.Context) (bool, error)
	// Logout завершает сессию на сервере.
	Logout(ctx context.Context) error
	// Ping проверяет доступность API.
	Ping(ctx context.Context) error
	// Probe выполняет OPTIONS запрос и возвращает CORS заголовки.
	Probe(ctx context.Context, origin string) (*ProbeResult, error)

	ListProducts(ctx context.Context) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// BaseURL возвращает базовый URL API.
	BaseURL() string
}

// ProbeResult - результат OPTIONS запроса к API.
type ProbeResult struct {
	StatusCode       int
	AllowOrigin      string
	AllowCredentials string
	AllowMethods     string
}

// httpClient реализует интерфейс Client по HTTP.
type httpClient struct {
	baseURL    string       // Базовый URL API, например "http://localhost:5000/api"
	httpClient *http.Client // HTTP клиент с общим cookie jar
	tokens     TokenSource  // Источник bearer токена, может быть nil
}

// NewHTTPClient создает новый экземпляр API клиента.
// jar передается всем запросам, чтобы cookie сессии уходили на сервер.
func NewHTTPClient(baseURL string, jar http.CookieJar, tokens TokenSource) Client {
	return &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Jar: jar},
		tokens:     tokens,
	}
}

func (c *httpClient) BaseURL() string { return c.baseURL }

// newRequest формирует запрос с JSON телом и заголовком авторизации.
func (c *httpClient) newRequest(ctx context.Context, method string, body any, elems ...string) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, elems...)
	if err != nil {
		return nil, fmt.Errorf("%w: URL %v: %w", ErrRequest, elems, err)
	}

	var reader io.Reader
	if body != nil {
		data, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, fmt.Errorf("%w: кодирование тела: %w", ErrRequest, marshalErr)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.GetToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do выполняет запрос и декодирует успешный ответ в out (если out не nil).
func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errBody models.ErrorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil {
			if json.Unmarshal(data, &errBody) == nil {
				statusErr.ServerMessage = errBody.Error
			}
		}
		slog.Debug("API вернул ошибку",
			"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "message", statusErr.ServerMessage)
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, req.Method, req.URL.Path, err)
	}
	return nil
}

// Login отправляет запрос на вход.
func (c *httpClient) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost,
		models.LoginRequest{Username: username, Password: password}, "auth", "login")
	if err != nil {
		return nil, err
	}

	var loginResponse models.LoginResponse
	if err = c.do(req, &loginResponse); err != nil {
		return nil, err
	}
	if loginResponse.Token == "" && loginResponse.Confirmation() == "" {
		return nil, ErrMissingConfirmation
	}
	return &loginResponse, nil
}

// CheckAuth возвращает значение поля "autenticado".
func (c *httpClient) CheckAuth(ctx context.Context) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, "auth", "check")
	if err != nil {
		return false, err
	}
	var check models.CheckResponse
	if err = c.do(req, &check); err != nil {
		return false, err
	}
	return check.Autenticado, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, nil, "auth", "logout")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *httpClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, nil, "ping")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *httpClient) Probe(ctx context.Context, origin string) (*ProbeResult, error) {
	req, err := c.newRequest(ctx, http.MethodOptions, nil, "productos")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: OPTIONS %s: %w", ErrTransport, req.URL.Path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return &ProbeResult{
		StatusCode:       resp.StatusCode,
		AllowOrigin:      resp.Header.Get("Access-Control-Allow-Origin"),
		AllowCredentials: resp.Header.Get("Access-Control-Allow-Credentials"),
		AllowMethods:     resp.Header.Get("Access-Control-Allow-Methods"),
	}, nil
}

func (c *httpClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, "productos")
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err = c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *httpClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil, "categorias")
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	if err = c.do(req, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *httpClient) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPost, in, "productos")
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err = c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	req, err := c.newRequest(ctx, http.MethodPut, in, "productos", strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err = c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *httpClient) DeleteProduct(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, nil, "productos", strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *httpClient) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	req, err := c.newRequest(ctx, http.MethodPost, in, "categorias")
	if err != nil {
		return nil, err
	}
	var category models.Category
	if err = c.do(req, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *httpClient) DeleteCategory(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, nil, "categorias", strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// IsTransport сообщает, что ответ от сервера не был получен.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
