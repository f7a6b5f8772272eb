package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	statusMessageTimeout   = 3 * time.Second // Время отображения статусных сообщений
	helpStatusHeightOffset = 4               // Высота строки помощи, статуса и вкладок
	inputWidthOffset       = 4
)

// Init - команда, выполняемая при запуске приложения.
func (m *model) Init() tea.Cmd {
	m.catalogLoading = true
	return loadCatalogCmd(m.services.Loader)
}

// setStatusMessage устанавливает статусное сообщение и запускает таймер для его очистки.
func (m *model) setStatusMessage(status string) (tea.Model, tea.Cmd) {
	m.statusMessage = status
	return m, clearStatusCmd(statusMessageTimeout)
}

// getMainContentView возвращает основное содержимое для текущего состояния.
func (m *model) getMainContentView() string {
	switch m.state {
	case menuScreen:
		return m.viewMenuScreen()
	case verifyingScreen:
		return m.viewVerifyingScreen()
	case loginScreen:
		return m.viewLoginScreen()
	case adminScreen:
		return m.viewAdminScreen()
	case productFormScreen:
		return m.viewProductFormScreen()
	case categoriesScreen:
		return m.viewCategoriesScreen()
	case categoryFormScreen:
		return m.viewCategoryFormScreen()
	case confirmDeleteScreen:
		return m.viewConfirmDeleteScreen()
	default:
		return "Неизвестное состояние!"
	}
}

// getDebugInfoString собирает отладочную информацию о сессии и каталоге.
func (m *model) getDebugInfoString() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(" [State: %s]\n", m.state.String()))
	b.WriteString(fmt.Sprintf(" [API: %s]\n", m.services.API.BaseURL()))
	b.WriteString(fmt.Sprintf(" [Login flow: %s]\n", m.services.Flow.State()))
	for _, st := range m.services.Store.Inspect() {
		errText := "-"
		if st.Err != nil {
			errText = st.Err.Error()
		}
		b.WriteString(fmt.Sprintf(" [Backend %s: token=%t err=%s]\n", st.Name, st.HasToken, errText))
	}
	b.WriteString(fmt.Sprintf(" [Catalog: %d productos, %d categorías, cargando=%t]\n",
		len(m.catalog.Products), len(m.catalog.Categories), m.catalogLoading))
	return b.String()
}

// View отрисовывает пользовательский интерфейс.
func (m *model) View() string {
	mainContent := m.getMainContentView()
	help, ok := m.helpTextMap[m.state]
	if !ok {
		help = fmt.Sprintf("State: %s", m.state.String())
	}

	var footer strings.Builder
	if m.statusMessage != "" {
		footer.WriteString("\n")
		footer.WriteString(statusStyle.Render(m.statusMessage))
	}
	if m.opts.Debug {
		footer.WriteString("\n\n---\nОтладка:\n")
		footer.WriteString(m.getDebugInfoString())
	}

	return fmt.Sprintf("%s\n%s%s", m.docStyle.Render(mainContent), helpStyle.Render(help), footer.String())
}

// Start запускает TUI приложение и блокируется до выхода из него.
func Start(services Services, opts Options) error {
	m := initModel(services, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("Ошибка при запуске TUI", "error", err)
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	services.Loader.Cancel()
	return nil
}
