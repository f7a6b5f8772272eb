package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// askDelete открывает подтверждение удаления.
func (m *model) askDelete(target deleteTarget) {
	m.pendingDelete = &target
	m.state = confirmDeleteScreen
}

// updateConfirmDeleteScreen обрабатывает ответ на подтверждение.
func (m *model) updateConfirmDeleteScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.pendingDelete == nil {
		return m, nil
	}
	target := *m.pendingDelete

	switch keyMsg.String() {
	case "y", "s":
		m.pendingDelete = nil
		m.state = target.back
		return m, deleteCmd(m.services.API, target)
	case "n", keyEsc:
		m.pendingDelete = nil
		m.state = target.back
		return m, nil
	}
	return m, nil
}

// handleDeleted применяет результат удаления.
func (m *model) handleDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		action := "Error al eliminar la categoría"
		if msg.product {
			action = "Error al eliminar el producto"
		}
		return m.handleAPIError(action, msg.err)
	}
	text := "Categoría eliminada"
	if msg.product {
		text = "Producto eliminado"
	}
	_, statusCmd := m.setStatusMessage(text)
	return m, tea.Batch(m.reloadCatalog(), statusCmd)
}

// viewConfirmDeleteScreen отображает вопрос об удалении.
func (m *model) viewConfirmDeleteScreen() string {
	if m.pendingDelete == nil {
		return ""
	}
	question := "¿Estás seguro de que deseas eliminar esta categoría?"
	if m.pendingDelete.product {
		question = "¿Estás seguro de que deseas eliminar este producto?"
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s",
		titleStyle.Render("Confirmar eliminación"),
		question,
		errorStyle.Render(m.pendingDelete.name))
}

// categoryKeyPreview возвращает ключ категории для показа во время ввода.
func categoryKeyPreview(nombre string) string {
	if key := models.CategoryKey(nombre); key != "" {
		return key
	}
	return "-"
}
