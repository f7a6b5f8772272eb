package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/handlers"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/services"
)

// --- Mock CatalogService --- //

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(
	ctx context.Context,
	id int64,
	in models.ProductInput,
) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Tests --- //

func setupCatalogRouter(h *handlers.CatalogHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/productos", h.ListProducts)
	r.Post("/productos", h.CreateProduct)
	r.Put("/productos/{id}", h.UpdateProduct)
	r.Delete("/productos/{id}", h.DeleteProduct)
	r.Get("/categorias", h.ListCategories)
	r.Post("/categorias", h.CreateCategory)
	r.Delete("/categorias/{id}", h.DeleteCategory)
	return r
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCatalogHandler_ListProducts(t *testing.T) {
	t.Run("Список продуктов", func(t *testing.T) {
		svc := new(MockCatalogService)
		svc.On("ListProducts", mock.Anything).Return([]models.Product{
			{ID: 1, Nombre: "Espresso", Precio: 2.5, Categoria: "cafes", Disponible: true},
		}, nil).Once()

		rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), http.MethodGet, "/productos", "")

		require.Equal(t, http.StatusOK, rr.Code)
		var products []models.Product
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
		require.Len(t, products, 1)
		assert.Equal(t, "Espresso", products[0].Nombre)
		svc.AssertExpectations(t)
	})

	t.Run("Пустой каталог отдается как массив", func(t *testing.T) {
		svc := new(MockCatalogService)
		svc.On("ListProducts", mock.Anything).Return(nil, nil).Once()

		rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), http.MethodGet, "/productos", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("Ошибка хранилища", func(t *testing.T) {
		svc := new(MockCatalogService)
		svc.On("ListProducts", mock.Anything).Return(nil, errors.New("boom")).Once()

		rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), http.MethodGet, "/productos", "")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Error interno del servidor")
	})
}

func TestCatalogHandler_CreateProduct(t *testing.T) {
	in := models.ProductInput{Nombre: "Cannoli", Precio: 4, Categoria: "postres", Disponible: true}

	tests := []struct {
		name           string
		body           string
		mockSetup      func(m *MockCatalogService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Продукт создан",
			body: `{"nombre":"Cannoli","precio":4,"categoria":"postres","disponible":true}`,
			mockSetup: func(m *MockCatalogService) {
				p := &models.Product{ID: 5, Nombre: "Cannoli", Precio: 4, Categoria: "postres", Disponible: true}
				m.On("CreateProduct", mock.Anything, in).Return(p, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":5`,
		},
		{
			name: "Ошибка проверки",
			body: `{"nombre":"Cannoli","precio":4,"categoria":"postres","disponible":true}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("CreateProduct", mock.Anything, in).
					Return(nil, &services.ValidationError{Message: "La categoría no existe"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "La categoría no existe",
		},
		{
			name:           "Сломанный JSON",
			body:           `{"nombre":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Formato de solicitud inválido",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCatalogService)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}
			rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), http.MethodPost, "/productos", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestCatalogHandler_UpdateDeleteProduct(t *testing.T) {
	in := models.ProductInput{Nombre: "Latte", Precio: 3, Categoria: "cafes"}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		mockSetup      func(m *MockCatalogService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Обновление",
			method: http.MethodPut,
			path:   "/productos/3",
			body:   `{"nombre":"Latte","precio":3,"categoria":"cafes"}`,
			mockSetup: func(m *MockCatalogService) {
				p := &models.Product{ID: 3, Nombre: "Latte", Precio: 3, Categoria: "cafes"}
				m.On("UpdateProduct", mock.Anything, int64(3), in).Return(p, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"nombre":"Latte"`,
		},
		{
			name:   "Обновление несуществующего",
			method: http.MethodPut,
			path:   "/productos/9",
			body:   `{"nombre":"Latte","precio":3,"categoria":"cafes"}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("UpdateProduct", mock.Anything, int64(9), in).Return(nil, services.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Producto no encontrado",
		},
		{
			name:           "Нечисловой ID",
			method:         http.MethodDelete,
			path:           "/productos/abc",
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Producto no encontrado",
		},
		{
			name:   "Удаление",
			method: http.MethodDelete,
			path:   "/productos/3",
			mockSetup: func(m *MockCatalogService) {
				m.On("DeleteProduct", mock.Anything, int64(3)).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Producto eliminado exitosamente",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCatalogService)
			if tt.mockSetup != nil {
				tt.mockSetup(svc)
			}
			rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestCatalogHandler_Categories(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		mockSetup      func(m *MockCatalogService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Список категорий",
			method: http.MethodGet,
			path:   "/categorias",
			mockSetup: func(m *MockCatalogService) {
				m.On("ListCategories", mock.Anything).
					Return([]models.Category{{ID: 1, Nombre: "Postres", Valor: "postres"}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"valor":"postres"`,
		},
		{
			name:   "Создание",
			method: http.MethodPost,
			path:   "/categorias",
			body:   `{"nombre":"Bebidas","valor":"bebidas"}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("CreateCategory", mock.Anything, models.CategoryInput{Nombre: "Bebidas", Valor: "bebidas"}).
					Return(&models.Category{ID: 2, Nombre: "Bebidas", Valor: "bebidas"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":2`,
		},
		{
			name:   "Дубликат",
			method: http.MethodPost,
			path:   "/categorias",
			body:   `{"nombre":"Bebidas","valor":"bebidas"}`,
			mockSetup: func(m *MockCatalogService) {
				m.On("CreateCategory", mock.Anything, mock.Anything).Return(nil, services.ErrCategoryExists).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "La categoría ya existe",
		},
		{
			name:   "Удаление категории с продуктами",
			method: http.MethodDelete,
			path:   "/categorias/1",
			mockSetup: func(m *MockCatalogService) {
				m.On("DeleteCategory", mock.Anything, int64(1)).Return(services.ErrCategoryInUse).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "No se puede eliminar una categoría con productos",
		},
		{
			name:   "Удаление несуществующей",
			method: http.MethodDelete,
			path:   "/categorias/8",
			mockSetup: func(m *MockCatalogService) {
				m.On("DeleteCategory", mock.Anything, int64(8)).Return(services.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Categoría no encontrada",
		},
		{
			name:   "Удаление",
			method: http.MethodDelete,
			path:   "/categorias/2",
			mockSetup: func(m *MockCatalogService) {
				m.On("DeleteCategory", mock.Anything, int64(2)).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Categoría eliminada exitosamente",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCatalogService)
			tt.mockSetup(svc)
			rr := serve(setupCatalogRouter(handlers.NewCatalogHandler(svc)), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
