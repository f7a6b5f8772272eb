// Package catalog загружает каталог меню и готовит его к показу.
package catalog

import "github.com/LucasBurriel/arrivederci-menu/models"

// AllCategories - значение активной категории "все".
const AllCategories = "all"

// legacyAllCategories - прежнее имя вкладки "все".
const legacyAllCategories = "todos"

// Catalog - продукты и категории одной загрузки.
type Catalog struct {
	Products   []models.Product
	Categories []models.Category
}

// IsAll сообщает, означает ли active "все категории".
func IsAll(active string) bool {
	return active == AllCategories || active == legacyAllCategories || active == ""
}

// VisibleProducts возвращает доступные продукты активной категории
// в исходном порядке. Входной слайс не изменяется.
func VisibleProducts(products []models.Product, active string) []models.Product {
	all := IsAll(active)
	visible := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.Disponible {
			continue
		}
		if all || p.Categoria == active {
			visible = append(visible, p)
		}
	}
	return visible
}

// CategoryLabel возвращает название категории по ключу
// или сам ключ, если такой категории нет.
func CategoryLabel(categories []models.Category, valor string) string {
	for _, c := range categories {
		if c.Valor == valor {
			return c.Nombre
		}
	}
	return valor
}
