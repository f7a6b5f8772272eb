package repository

import (
	"context"
	"log"
	"sync"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// CatalogRepository определяет методы для работы с продуктами и категориями.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CountProductsByCategory(ctx context.Context, valor string) (int, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CategoryExists(ctx context.Context, valor string) (bool, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// memoryCatalogRepository хранит каталог в памяти процесса.
// Порядок выдачи совпадает с порядком создания.
type memoryCatalogRepository struct {
	mu            sync.RWMutex
	nextProductID int64
	nextCatID     int64
	products      []models.Product
	categories    []models.Category
}

// NewMemoryCatalogRepository создает пустой каталог.
func NewMemoryCatalogRepository() CatalogRepository {
	return &memoryCatalogRepository{}
}

func (r *memoryCatalogRepository) ListProducts(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Product, len(r.products))
	copy(result, r.products)
	return result, nil
}

func (r *memoryCatalogRepository) productIndex(id int64) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryCatalogRepository) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.productIndex(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	p := r.products[i]
	return &p, nil
}

func (r *memoryCatalogRepository) CreateProduct(_ context.Context, in models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextProductID++
	p := productFromInput(r.nextProductID, in)
	r.products = append(r.products, p)
	log.Printf("[Repo] Продукт '%s' создан с ID %d", p.Nombre, p.ID)
	return &p, nil
}

func (r *memoryCatalogRepository) UpdateProduct(_ context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.productIndex(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	r.products[i] = productFromInput(id, in)
	p := r.products[i]
	return &p, nil
}

func (r *memoryCatalogRepository) DeleteProduct(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.productIndex(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *memoryCatalogRepository) CountProductsByCategory(_ context.Context, valor string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.products {
		if p.Categoria == valor {
			n++
		}
	}
	return n, nil
}

func (r *memoryCatalogRepository) ListCategories(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Category, len(r.categories))
	copy(result, r.categories)
	return result, nil
}

func (r *memoryCatalogRepository) categoryIndex(id int64) int {
	for i, c := range r.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryCatalogRepository) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.categoryIndex(id)
	if i < 0 {
		return nil, ErrCategoryNotFound
	}
	c := r.categories[i]
	return &c, nil
}

func (r *memoryCatalogRepository) CategoryExists(_ context.Context, valor string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.Valor == valor {
			return true, nil
		}
	}
	return false, nil
}

// CreateCategory сохраняет категорию. Название и ключ должны быть уникальны.
func (r *memoryCatalogRepository) CreateCategory(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Valor == in.Valor || c.Nombre == in.Nombre {
			return nil, ErrCategoryExists
		}
	}
	r.nextCatID++
	c := models.Category{ID: r.nextCatID, Nombre: in.Nombre, Valor: in.Valor}
	r.categories = append(r.categories, c)
	log.Printf("[Repo] Категория '%s' (%s) создана с ID %d", c.Nombre, c.Valor, c.ID)
	return &c, nil
}

func (r *memoryCatalogRepository) DeleteCategory(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.categoryIndex(id)
	if i < 0 {
		return ErrCategoryNotFound
	}
	r.categories = append(r.categories[:i], r.categories[i+1:]...)
	return nil
}

func productFromInput(id int64, in models.ProductInput) models.Product {
	return models.Product{
		ID:          id,
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Precio:      in.Precio,
		Categoria:   in.Categoria,
		Disponible:  in.Disponible,
		ImagenURL:   in.ImagenURL,
	}
}
