package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// Сообщения формы продукта.
const (
	msgMissingFields = "Completá los campos obligatorios: "
	msgInvalidPrecio = "El precio debe ser un número mayor o igual a 0."
	msgNoCategories  = "Primero creá al menos una categoría."
)

// productInputPtrs возвращает указатели на текстовые поля формы.
func (m *model) productInputPtrs() []*textinput.Model {
	ptrs := make([]*textinput.Model, len(m.productInputs))
	for i := range m.productInputs {
		ptrs[i] = &m.productInputs[i]
	}
	return ptrs
}

// inputForField возвращает индекс текстового поля для поля формы.
// Категория и доступность не являются текстовыми полями.
func inputForField(field int) int {
	switch field {
	case productFieldNombre:
		return productInputNombre
	case productFieldDescripcion:
		return productInputDescripcion
	case productFieldPrecio:
		return productInputPrecio
	case productFieldImagen:
		return productInputImagen
	default:
		return -1
	}
}

// openProductForm открывает форму. nil - новый продукт.
func (m *model) openProductForm(p *models.Product) tea.Cmd {
	m.formErr = ""
	m.formSaving = false
	m.productFocused = productFieldNombre
	m.productCategory = 0
	m.productDisponible = true
	m.editingProductID = 0
	for i := range m.productInputs {
		m.productInputs[i].SetValue("")
	}

	if p != nil {
		m.editingProductID = p.ID
		m.productInputs[productInputNombre].SetValue(p.Nombre)
		m.productInputs[productInputDescripcion].SetValue(p.Descripcion)
		m.productInputs[productInputPrecio].SetValue(strconv.FormatFloat(p.Precio, 'f', -1, 64))
		m.productInputs[productInputImagen].SetValue(p.ImagenURL)
		m.productDisponible = p.Disponible
		for i, c := range m.catalog.Categories {
			if c.Valor == p.Categoria {
				m.productCategory = i
				break
			}
		}
	}

	m.state = productFormScreen
	return focusOnly(m.productInputPtrs(), inputForField(m.productFocused))
}

// formCategory возвращает выбранную в форме категорию. После перезагрузки
// каталога индекс может выйти за границы, тогда выбирается первая.
func (m *model) formCategory() (models.Category, bool) {
	if len(m.catalog.Categories) == 0 {
		return models.Category{}, false
	}
	if m.productCategory < 0 || m.productCategory >= len(m.catalog.Categories) {
		m.productCategory = 0
	}
	return m.catalog.Categories[m.productCategory], true
}

// productFormInput проверяет форму и собирает данные продукта.
// Возвращает текст ошибки для пользователя, если форма заполнена неверно.
func (m *model) productFormInput() (models.ProductInput, string) {
	nombre := strings.TrimSpace(m.productInputs[productInputNombre].Value())
	descripcion := strings.TrimSpace(m.productInputs[productInputDescripcion].Value())
	precioText := strings.TrimSpace(m.productInputs[productInputPrecio].Value())

	var missing []string
	if nombre == "" {
		missing = append(missing, "nombre")
	}
	if descripcion == "" {
		missing = append(missing, "descripción")
	}
	if precioText == "" {
		missing = append(missing, "precio")
	}
	categoria, hasCategoria := m.formCategory()
	if !hasCategoria {
		missing = append(missing, "categoría")
	}
	if len(missing) > 0 {
		return models.ProductInput{}, msgMissingFields + strings.Join(missing, ", ")
	}

	precio, err := strconv.ParseFloat(strings.ReplaceAll(precioText, ",", "."), 64)
	if err != nil || precio < 0 {
		return models.ProductInput{}, msgInvalidPrecio
	}

	return models.ProductInput{
		Nombre:      nombre,
		Descripcion: descripcion,
		Precio:      precio,
		Categoria:   categoria.Valor,
		Disponible:  m.productDisponible,
		ImagenURL:   strings.TrimSpace(m.productInputs[productInputImagen].Value()),
	}, ""
}

// updateProductFormScreen обрабатывает сообщения для формы продукта.
func (m *model) updateProductFormScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	inputs := m.productInputPtrs()

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.formSaving {
			return m, nil
		}
		switch keyMsg.String() {
		case keyEsc:
			focusOnly(inputs, -1)
			m.state = adminScreen
			return m, nil
		case keyTab, keyDown:
			m.productFocused = cycleFocus(m.productFocused, 1, numProductFields)
			return m, focusOnly(inputs, inputForField(m.productFocused))
		case keyShiftTab, keyUp:
			m.productFocused = cycleFocus(m.productFocused, -1, numProductFields)
			return m, focusOnly(inputs, inputForField(m.productFocused))
		case keyEnter:
			in, problem := m.productFormInput()
			if problem != "" {
				m.formErr = problem
				return m, nil
			}
			m.formErr = ""
			m.formSaving = true
			return m, saveProductCmd(m.services.API, m.editingProductID, in)
		}

		switch m.productFocused {
		case productFieldCategoria:
			if n := len(m.catalog.Categories); n > 0 {
				switch keyMsg.String() {
				case keyLeft:
					m.productCategory = cycleFocus(m.productCategory, -1, n)
				case keyRight, keySpace:
					m.productCategory = cycleFocus(m.productCategory, 1, n)
				}
			}
			return m, nil
		case productFieldDisponible:
			switch keyMsg.String() {
			case keySpace, keyLeft, keyRight:
				m.productDisponible = !m.productDisponible
			}
			return m, nil
		}
	}

	return m, updateFocusedInput(inputs, inputForField(m.productFocused), msg)
}

// handleProductSaved применяет результат сохранения продукта.
func (m *model) handleProductSaved(msg productSavedMsg) (tea.Model, tea.Cmd) {
	m.formSaving = false
	if msg.err != nil {
		return m.handleAPIError("Error al guardar el producto", msg.err)
	}
	focusOnly(m.productInputPtrs(), -1)
	m.state = adminScreen
	text := "Producto actualizado"
	if msg.created {
		text = "Producto creado"
	}
	if msg.product != nil {
		text += ": " + msg.product.Nombre
	}
	_, statusCmd := m.setStatusMessage(text)
	return m, tea.Batch(m.reloadCatalog(), statusCmd)
}

// fieldLabel выделяет название поля с фокусом.
func (m *model) fieldLabel(field int, label string) string {
	if m.productFocused == field {
		return focusedStyle.Render("> " + label)
	}
	return "  " + label
}

// viewProductFormScreen отображает форму продукта.
func (m *model) viewProductFormScreen() string {
	var b strings.Builder
	title := "Nuevo producto"
	if m.editingProductID != 0 {
		title = fmt.Sprintf("Editar producto #%d", m.editingProductID)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	b.WriteString(m.fieldLabel(productFieldNombre, "Nombre") + "\n")
	b.WriteString("  " + m.productInputs[productInputNombre].View() + "\n")
	b.WriteString(m.fieldLabel(productFieldDescripcion, "Descripción") + "\n")
	b.WriteString("  " + m.productInputs[productInputDescripcion].View() + "\n")
	b.WriteString(m.fieldLabel(productFieldPrecio, "Precio") + "\n")
	b.WriteString("  " + m.productInputs[productInputPrecio].View() + "\n")

	categoria := msgNoCategories
	if c, ok := m.formCategory(); ok {
		categoria = "‹ " + c.Nombre + " ›"
	}
	b.WriteString(m.fieldLabel(productFieldCategoria, "Categoría") + "\n")
	b.WriteString("  " + categoria + "\n")
	b.WriteString(m.fieldLabel(productFieldImagen, "URL de imagen") + "\n")
	b.WriteString("  " + m.productInputs[productInputImagen].View() + "\n")

	disponible := "[ ]"
	if m.productDisponible {
		disponible = "[x]"
	}
	b.WriteString(m.fieldLabel(productFieldDisponible, "Disponible "+disponible) + "\n")

	if m.formSaving {
		b.WriteString("\nGuardando...\n")
	}
	if m.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.formErr) + "\n")
	}
	return b.String()
}
