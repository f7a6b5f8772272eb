package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// selectedProduct возвращает выбранный в админке продукт.
func (m *model) selectedProduct() (productItem, bool) {
	item, ok := m.adminList.SelectedItem().(productItem)
	return item, ok
}

// updateAdminScreen обрабатывает сообщения для списка продуктов админки.
func (m *model) updateAdminScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.adminList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.adminList, cmd = m.adminList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case "m", keyEsc:
		if m.adminList.FilterState() == list.FilterApplied {
			m.adminList.ResetFilter()
			return m, nil
		}
		m.state = menuScreen
		return m, nil
	case "n":
		return m, m.openProductForm(nil)
	case "e", keyEnter:
		if item, found := m.selectedProduct(); found {
			p := item.product
			return m, m.openProductForm(&p)
		}
		return m, nil
	case "d":
		if item, found := m.selectedProduct(); found {
			m.askDelete(deleteTarget{product: true, id: item.product.ID, name: item.product.Nombre, back: adminScreen})
		}
		return m, nil
	case "c":
		return m, m.navigateGuarded(categoriesScreen)
	case "r":
		return m, m.reloadCatalog()
	case "l":
		return m, logoutCmd(m.services.API, m.services.Store)
	}

	var cmd tea.Cmd
	m.adminList, cmd = m.adminList.Update(msg)
	return m, cmd
}

// viewAdminScreen отображает список продуктов админки.
func (m *model) viewAdminScreen() string {
	var b strings.Builder
	header := "Panel de administración"
	if user, ok := m.services.Store.GetUser(); ok && user.Username() != "" {
		header += " - " + user.Username()
	}
	b.WriteString(titleStyle.Render(header) + "\n\n")
	if m.catalogErr != "" {
		b.WriteString(bannerStyle.Render(m.catalogErr) + "\n\n")
	}
	if m.catalogLoading && len(m.catalog.Products) == 0 {
		b.WriteString("Cargando productos...")
		return b.String()
	}
	b.WriteString(m.adminList.View())
	return b.String()
}

// selectedCategory возвращает выбранную категорию.
func (m *model) selectedCategory() (categoryItem, bool) {
	item, ok := m.categoryList.SelectedItem().(categoryItem)
	return item, ok
}

// updateCategoriesScreen обрабатывает сообщения для списка категорий.
func (m *model) updateCategoriesScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.categoryList, cmd = m.categoryList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case keyEsc, "p":
		return m, m.navigateGuarded(adminScreen)
	case "n":
		m.categoryNombreInput.SetValue("")
		m.formErr = ""
		m.state = categoryFormScreen
		m.categoryNombreInput.Focus()
		return m, nil
	case "d":
		if item, found := m.selectedCategory(); found {
			m.askDelete(deleteTarget{id: item.category.ID, name: item.category.Nombre, back: categoriesScreen})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.categoryList, cmd = m.categoryList.Update(msg)
	return m, cmd
}

// viewCategoriesScreen отображает список категорий.
func (m *model) viewCategoriesScreen() string {
	if len(m.categoryList.Items()) == 0 {
		return titleStyle.Render("Categorías") + "\n\nNo hay categorías. Presioná n para crear una."
	}
	return m.categoryList.View()
}

// updateCategoryFormScreen обрабатывает ввод названия новой категории.
func (m *model) updateCategoryFormScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.formSaving {
		switch keyMsg.String() {
		case keyEsc:
			m.categoryNombreInput.Blur()
			m.state = categoriesScreen
			return m, nil
		case keyEnter:
			nombre := strings.TrimSpace(m.categoryNombreInput.Value())
			if nombre == "" {
				m.formErr = "El nombre de la categoría es obligatorio."
				return m, nil
			}
			m.formErr = ""
			m.formSaving = true
			return m, createCategoryCmd(m.services.API, nombre)
		}
	}

	var cmd tea.Cmd
	m.categoryNombreInput, cmd = m.categoryNombreInput.Update(msg)
	return m, cmd
}

// handleCategoryCreated применяет результат создания категории.
func (m *model) handleCategoryCreated(msg categoryCreatedMsg) (tea.Model, tea.Cmd) {
	m.formSaving = false
	if msg.err != nil {
		return m.handleAPIError("Error al crear la categoría", msg.err)
	}
	m.categoryNombreInput.Blur()
	m.state = categoriesScreen
	_, statusCmd := m.setStatusMessage(fmt.Sprintf("Categoría %q creada", msg.category.Nombre))
	return m, tea.Batch(m.reloadCatalog(), statusCmd)
}

// viewCategoryFormScreen отображает форму новой категории с вычисляемым ключом.
func (m *model) viewCategoryFormScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Nueva categoría") + "\n\n")
	b.WriteString(m.categoryNombreInput.View() + "\n\n")
	b.WriteString(helpStyle.Render("Valor: "+categoryKeyPreview(m.categoryNombreInput.Value())) + "\n")
	if m.formSaving {
		b.WriteString("\nGuardando...\n")
	}
	if m.formErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.formErr) + "\n")
	}
	return b.String()
}
