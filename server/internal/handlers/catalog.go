package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/services"
)

const (
	msgProductNotFound   = "Producto no encontrado"
	msgCategoryNotFound  = "Categoría no encontrada"
	msgCategoryExists    = "La categoría ya existe"
	msgCategoryInUse     = "No se puede eliminar una categoría con productos"
	msgProductDeleted    = "Producto eliminado exitosamente"
	msgCategoryDeleted   = "Categoría eliminada exitosamente"
	logPrefixCatalogHdlr = "[CatalogHandler]"
)

// CatalogService определяет операции с меню, нужные обработчикам.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// CatalogHandler обрабатывает запросы к продуктам и категориям.
type CatalogHandler struct {
	service CatalogService
}

// NewCatalogHandler создает новый экземпляр CatalogHandler.
func NewCatalogHandler(s CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// idParam читает {id} из пути. Нечисловой ID отвечает 404, как и отсутствующий объект.
func idParam(w http.ResponseWriter, r *http.Request, notFound string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, notFound)
		return 0, false
	}
	return id, true
}

// writeServiceError переводит ошибку сервиса в HTTP ответ.
func writeServiceError(w http.ResponseWriter, err error, notFound string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrCategoryExists):
		writeError(w, http.StatusBadRequest, msgCategoryExists)
	case errors.Is(err, services.ErrCategoryInUse):
		writeError(w, http.StatusBadRequest, msgCategoryInUse)
	default:
		log.Printf("%s Внутренняя ошибка: %v", logPrefixCatalogHdlr, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// ListProducts отдает все продукты, включая недоступные.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, err, msgProductNotFound)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgProductNotFound)
		return
	}
	log.Printf("%s Создан продукт %d '%s'", logPrefixCatalogHdlr, p.ID, p.Nombre)
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, msgProductNotFound)
	if !ok {
		return
	}
	var in models.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, msgProductNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, msgProductNotFound)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err, msgProductNotFound)
		return
	}
	log.Printf("%s Удален продукт %d", logPrefixCatalogHdlr, id)
	writeMessage(w, http.StatusOK, msgProductDeleted)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err, msgCategoryNotFound)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.service.CreateCategory(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, msgCategoryNotFound)
		return
	}
	log.Printf("%s Создана категория '%s'", logPrefixCatalogHdlr, c.Valor)
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, msgCategoryNotFound)
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err, msgCategoryNotFound)
		return
	}
	writeMessage(w, http.StatusOK, msgCategoryDeleted)
}
