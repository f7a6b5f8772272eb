package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// defaultCategories создаются на пустом сервере.
var defaultCategories = []models.CategoryInput{
	{Nombre: "Cafetería", Valor: "cafeteria"},
	{Nombre: "Bebidas", Valor: "bebidas"},
	{Nombre: "Postres", Valor: "postres"},
	{Nombre: "Platos Principales", Valor: "platos_principales"},
}

// sampleCategories и sampleProducts - демонстрационное меню (флаг -seed).
var sampleCategories = []models.CategoryInput{
	{Nombre: "Cafés", Valor: "cafes"},
	{Nombre: "Postres", Valor: "postres"},
	{Nombre: "Bebidas", Valor: "bebidas"},
	{Nombre: "Sándwiches", Valor: "sandwiches"},
	{Nombre: "Desayunos", Valor: "desayunos"},
}

const unsplash = "https://images.unsplash.com/"

var sampleProducts = []models.ProductInput{
	{
		Nombre: "Espresso", Descripcion: "Café espresso italiano tradicional",
		Precio: 2.50, Categoria: "cafes", Disponible: true,
		ImagenURL: unsplash + "photo-1610889556528-9a770e32642f?w=500&auto=format",
	},
	{
		Nombre: "Cappuccino", Descripcion: "Espresso con leche espumada y cacao en polvo",
		Precio: 3.50, Categoria: "cafes", Disponible: true,
		ImagenURL: unsplash + "photo-1572442388796-11668a67e53d?w=500&auto=format",
	},
	{
		Nombre: "Tiramisú", Descripcion: "Postre italiano tradicional con café y mascarpone",
		Precio: 5.00, Categoria: "postres", Disponible: true,
		ImagenURL: unsplash + "photo-1571877227200-a0d98ea607e9?w=500&auto=format",
	},
	{
		Nombre: "Cannoli", Descripcion: "Dulce siciliano relleno de crema de ricotta",
		Precio: 4.00, Categoria: "postres", Disponible: true,
		ImagenURL: unsplash + "photo-1551504734-5ee1c4a1479b?w=500&auto=format",
	},
	{
		Nombre: "Limonada Casera", Descripcion: "Limonada fresca con menta",
		Precio: 3.00, Categoria: "bebidas", Disponible: true,
		ImagenURL: unsplash + "photo-1621263764928-df1444c5e859?w=500&auto=format",
	},
	{
		Nombre: "Panini Caprese", Descripcion: "Sándwich con mozzarella, tomate y albahaca",
		Precio: 6.50, Categoria: "sandwiches", Disponible: true,
		ImagenURL: unsplash + "photo-1528735602780-2552fd46c7af?w=500&auto=format",
	},
	{
		Nombre: "Desayuno Italiano", Descripcion: "Cappuccino, croissant y jugo de naranja",
		Precio: 8.50, Categoria: "desayunos", Disponible: true,
		ImagenURL: unsplash + "photo-1495214783159-3503fd1b572d?w=500&auto=format",
	},
	{
		Nombre: "Latte", Descripcion: "Café con leche cremosa",
		Precio: 3.00, Categoria: "cafes", Disponible: true,
		ImagenURL: unsplash + "photo-1561047029-3000c68339ca?w=500&auto=format",
	},
	{
		Nombre: "Mocaccino", Descripcion: "Café con chocolate y leche espumada",
		Precio: 4.00, Categoria: "cafes", Disponible: true,
		ImagenURL: unsplash + "photo-1534687941688-651ccaafbff8?w=500&auto=format",
	},
	{
		Nombre: "Panna Cotta", Descripcion: "Postre cremoso con salsa de frutos rojos",
		Precio: 4.50, Categoria: "postres", Disponible: true,
		ImagenURL: unsplash + "photo-1488477181946-6428a0291777?w=500&auto=format",
	},
}

// SeedOptions - параметры начального заполнения.
type SeedOptions struct {
	AdminUser     string
	AdminPassword string
	// Sample заменяет стандартные категории демонстрационным меню.
	Sample bool
}

// Seed создает администратора и начальные категории.
// Повторный вызов не создает дублей.
func Seed(ctx context.Context, auth AuthService, catalog CatalogService, opts SeedOptions) error {
	if opts.AdminUser != "" {
		if err := auth.EnsureUser(ctx, opts.AdminUser, opts.AdminPassword); err != nil {
			return fmt.Errorf("ошибка создания администратора: %w", err)
		}
	}

	categories := defaultCategories
	if opts.Sample {
		categories = sampleCategories
	}
	for _, c := range categories {
		if _, err := catalog.CreateCategory(ctx, c); err != nil && !errors.Is(err, ErrCategoryExists) {
			return fmt.Errorf("ошибка создания категории '%s': %w", c.Valor, err)
		}
	}
	if !opts.Sample {
		log.Printf("[Seed] Создано категорий: %d", len(categories))
		return nil
	}

	existing, err := catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range sampleProducts {
		if _, err = catalog.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("ошибка создания продукта '%s': %w", p.Nombre, err)
		}
	}
	log.Printf("[Seed] Демонстрационное меню: %d категорий, %d продуктов", len(categories), len(sampleProducts))
	return nil
}
