package models

// Product - позиция меню.
// Продукт ссылается на категорию по ее ключу (Category.Valor), а не по ID.
type Product struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Categoria   string  `json:"categoria"`
	Disponible  bool    `json:"disponible"`
	ImagenURL   string  `json:"imagen_url"`
}

// ProductInput - поля продукта без ID для создания и обновления.
type ProductInput struct {
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Categoria   string  `json:"categoria"`
	Disponible  bool    `json:"disponible"`
	ImagenURL   string  `json:"imagen_url"`
}

// Input возвращает редактируемые поля продукта.
func (p Product) Input() ProductInput {
	return ProductInput{
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Categoria:   p.Categoria,
		Disponible:  p.Disponible,
		ImagenURL:   p.ImagenURL,
	}
}

// Category - категория меню. Valor - стабильный ключ, производный от Nombre.
type Category struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Valor  string `json:"valor"`
}

// CategoryInput - тело запроса на создание категории.
type CategoryInput struct {
	Nombre string `json:"nombre"`
	Valor  string `json:"valor"`
}
