package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/catalog"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

// menuTab - вкладка категории в меню.
type menuTab struct {
	valor string
	label string
}

// menuTabs возвращает вкладки: "Todos" и затем категории в порядке сервера.
func (m *model) menuTabs() []menuTab {
	tabs := make([]menuTab, 0, len(m.catalog.Categories)+1)
	tabs = append(tabs, menuTab{valor: catalog.AllCategories, label: "Todos"})
	for _, c := range m.catalog.Categories {
		tabs = append(tabs, menuTab{valor: c.Valor, label: c.Nombre})
	}
	return tabs
}

// activeTabIndex возвращает индекс активной вкладки, 0 если категория исчезла.
func (m *model) activeTabIndex(tabs []menuTab) int {
	if catalog.IsAll(m.activeCategory) {
		return 0
	}
	for i, t := range tabs {
		if t.valor == m.activeCategory {
			return i
		}
	}
	return 0
}

// switchCategory сдвигает активную вкладку на delta с переходом по кругу.
func (m *model) switchCategory(delta int) {
	tabs := m.menuTabs()
	i := (m.activeTabIndex(tabs) + delta + len(tabs)) % len(tabs)
	m.activeCategory = tabs[i].valor
	m.refreshMenuList()
}

// productItems превращает продукты в элементы списка.
func (m *model) productItems(products []models.Product) []list.Item {
	items := make([]list.Item, 0, len(products))
	for _, p := range products {
		items = append(items, productItem{
			product: p,
			label:   catalog.CategoryLabel(m.catalog.Categories, p.Categoria),
			image:   m.images[p.ID],
		})
	}
	return items
}

// refreshMenuList пересобирает видимые продукты меню.
func (m *model) refreshMenuList() {
	visible := catalog.VisibleProducts(m.catalog.Products, m.activeCategory)
	m.menuList.SetItems(m.productItems(visible))
	m.menuList.ResetSelected()
}

// refreshLists пересобирает все списки из текущего каталога.
func (m *model) refreshLists() {
	m.refreshMenuList()

	m.adminList.SetItems(m.productItems(m.catalog.Products))

	items := make([]list.Item, 0, len(m.catalog.Categories))
	for _, c := range m.catalog.Categories {
		items = append(items, categoryItem{category: c})
	}
	m.categoryList.SetItems(items)
}

// updateMenuScreen обрабатывает сообщения для публичного меню.
func (m *model) updateMenuScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.menuList, cmd = m.menuList.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit:
		return m, tea.Quit
	case keyLeft, keyShiftTab:
		m.switchCategory(-1)
		return m, nil
	case keyRight, keyTab:
		m.switchCategory(1)
		return m, nil
	case "r":
		return m, m.reloadCatalog()
	case "a":
		return m, m.navigateGuarded(adminScreen)
	case keyEsc, "x":
		m.catalogErr = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.menuList, cmd = m.menuList.Update(msg)
	return m, cmd
}

// viewTabs отрисовывает строку вкладок категорий.
func (m *model) viewTabs() string {
	tabs := m.menuTabs()
	active := m.activeTabIndex(tabs)
	parts := make([]string, 0, len(tabs))
	for i, t := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return strings.Join(parts, " ")
}

// viewMenuScreen отображает публичное меню.
func (m *model) viewMenuScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Arrivederci - Menú"))
	b.WriteString("\n\n")
	if m.catalogErr != "" {
		b.WriteString(bannerStyle.Render(m.catalogErr + "  (esc para cerrar)"))
		b.WriteString("\n\n")
	}
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	switch {
	case m.catalogLoading && len(m.catalog.Products) == 0:
		b.WriteString("Cargando menú...")
	case len(m.menuList.Items()) == 0:
		b.WriteString("No hay productos disponibles en esta categoría.")
	default:
		b.WriteString(m.menuList.View())
	}
	return b.String()
}
