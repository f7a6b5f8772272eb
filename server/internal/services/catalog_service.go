package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/LucasBurriel/arrivederci-menu/models"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/repository"
)

// Тексты ошибок проверки, отдаются клиенту.
const (
	msgNombreRequired    = "El nombre es obligatorio"
	msgCategoriaRequired = "La categoría es obligatoria"
	msgPrecioInvalid     = "El precio debe ser mayor o igual a 0"
	msgCategoriaUnknown  = "La categoría no existe"
	msgValorInvalid      = "El valor de la categoría no es válido"
)

// CatalogService определяет операции с меню.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

var _ CatalogService = (*catalogService)(nil)

type catalogService struct {
	repo repository.CatalogRepository
}

// NewCatalogService создает сервис меню.
func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// validateProduct нормализует и проверяет поля продукта.
func (s *catalogService) validateProduct(ctx context.Context, in models.ProductInput) (models.ProductInput, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	in.Categoria = strings.TrimSpace(in.Categoria)
	in.ImagenURL = strings.TrimSpace(in.ImagenURL)

	switch {
	case in.Nombre == "":
		return in, invalid(msgNombreRequired)
	case in.Categoria == "":
		return in, invalid(msgCategoriaRequired)
	case in.Precio < 0:
		return in, invalid(msgPrecioInvalid)
	}

	exists, err := s.repo.CategoryExists(ctx, in.Categoria)
	if err != nil {
		return in, fmt.Errorf("ошибка проверки категории: %w", err)
	}
	if !exists {
		return in, invalid(msgCategoriaUnknown)
	}
	return in, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	in, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateProduct(ctx, in)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return nil, mapRepoError(err)
	}
	in, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateProduct(ctx, id, in)
	return p, mapRepoError(err)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	return mapRepoError(s.repo.DeleteProduct(ctx, id))
}

// CreateCategory создает категорию. Ключ нормализуется так же, как на клиенте,
// пустой ключ выводится из названия.
func (s *catalogService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	if in.Nombre == "" {
		return nil, invalid(msgNombreRequired)
	}
	source := in.Valor
	if strings.TrimSpace(source) == "" {
		source = in.Nombre
	}
	in.Valor = models.CategoryKey(source)
	if in.Valor == "" {
		return nil, invalid(msgValorInvalid)
	}

	c, err := s.repo.CreateCategory(ctx, in)
	if errors.Is(err, repository.ErrCategoryExists) {
		log.Printf("[CatalogService] Категория '%s' уже существует", in.Valor)
		return nil, ErrCategoryExists
	}
	return c, err
}

// DeleteCategory удаляет категорию, если на нее не ссылается ни один продукт.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	n, err := s.repo.CountProductsByCategory(ctx, c.Valor)
	if err != nil {
		return fmt.Errorf("ошибка подсчета продуктов: %w", err)
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	return mapRepoError(s.repo.DeleteCategory(ctx, id))
}

// mapRepoError переводит ошибки "не найдено" репозитория в ошибку сервиса.
func mapRepoError(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) || errors.Is(err, repository.ErrCategoryNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
