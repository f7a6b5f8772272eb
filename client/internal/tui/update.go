package tui

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/auth"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/catalog"
)

// Сообщения админки.
const (
	msgSessionExpired  = "Tu sesión expiró. Iniciá sesión nuevamente."
	msgNotFound        = "El elemento ya no existe."
	msgOperationFailed = "No se pudo completar la operación."
)

// Update обрабатывает входящие сообщения.
//
//nolint:gocyclo // Роутинг по типам сообщений
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// == Глобальные сообщения (не зависят от экрана) ==
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil

	case spinner.TickMsg:
		if m.state != verifyingScreen && !m.loginSubmitting && !m.loginChecking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case imagesResolvedMsg:
		if msg.seq != m.imagesSeq {
			return m, nil
		}
		m.images = msg.images
		m.refreshLists()
		return m, nil

	case guardResultMsg:
		return m.handleGuardResult(msg)

	case loginMountMsg:
		return m.handleLoginMount(msg)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case productSavedMsg:
		return m.handleProductSaved(msg)

	case categoryCreatedMsg:
		return m.handleCategoryCreated(msg)

	case deletedMsg:
		return m.handleDeleted(msg)

	case logoutDoneMsg:
		cmd := m.enterLogin()
		_, statusCmd := m.setStatusMessage("Sesión cerrada")
		return m, tea.Batch(cmd, statusCmd)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m.updateScreen(msg)
}

// updateScreen передает сообщение обработчику текущего экрана.
func (m *model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case menuScreen:
		return m.updateMenuScreen(msg)
	case verifyingScreen:
		return m, nil
	case loginScreen:
		return m.updateLoginScreen(msg)
	case adminScreen:
		return m.updateAdminScreen(msg)
	case productFormScreen:
		return m.updateProductFormScreen(msg)
	case categoriesScreen:
		return m.updateCategoriesScreen(msg)
	case categoryFormScreen:
		return m.updateCategoryFormScreen(msg)
	case confirmDeleteScreen:
		return m.updateConfirmDeleteScreen(msg)
	default:
		return m, nil
	}
}

// resize обновляет размеры списков и полей ввода.
func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	h, v := m.docStyle.GetFrameSize()
	listWidth := width - h
	listHeight := height - v - helpStatusHeightOffset

	m.menuList.SetSize(listWidth, listHeight)
	m.adminList.SetSize(listWidth, listHeight)
	m.categoryList.SetSize(listWidth, listHeight)

	inputWidth := listWidth - inputWidthOffset
	m.loginUsernameInput.Width = inputWidth
	m.loginPasswordInput.Width = inputWidth
	m.categoryNombreInput.Width = inputWidth
	for i := range m.productInputs {
		m.productInputs[i].Width = inputWidth
	}
}

// handleCatalogLoaded применяет результат загрузки каталога.
func (m *model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, catalog.ErrSuperseded) {
		// Результат вытеснен более новой загрузкой
		return m, nil
	}
	m.catalogLoading = false
	if msg.err != nil {
		slog.Warn("Ошибка загрузки каталога", "kind", catalog.Classify(msg.err).String(), "error", msg.err)
		m.catalogErr = catalog.Describe(msg.err)
		return m, nil
	}

	m.catalogErr = ""
	m.catalog = msg.catalog
	m.imagesSeq++
	m.refreshLists()
	slog.Debug("Каталог загружен", "products", len(m.catalog.Products), "categories", len(m.catalog.Categories))

	if m.opts.ImageProbe && len(m.catalog.Products) > 0 {
		return m, resolveImagesCmd(m.opts.ImageClient, m.imagesSeq, m.catalog.Products)
	}
	return m, nil
}

// reloadCatalog запускает новую загрузку каталога. Незавершенная загрузка отменяется.
func (m *model) reloadCatalog() tea.Cmd {
	m.catalogLoading = true
	return loadCatalogCmd(m.services.Loader)
}

// navigateGuarded переходит на защищенный экран только после проверки сессии.
// Каждый переход проверяется заново.
func (m *model) navigateGuarded(target screenState) tea.Cmd {
	m.guardSeq++
	m.pendingTarget = target
	m.state = verifyingScreen
	return tea.Batch(verifyAccessCmd(m.services.Guard, m.guardSeq, target), m.spinner.Tick)
}

// handleGuardResult завершает переход, начатый navigateGuarded.
func (m *model) handleGuardResult(msg guardResultMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.guardSeq || m.state != verifyingScreen {
		slog.Debug("Устаревший результат проверки сессии проигнорирован", "seq", msg.seq)
		return m, nil
	}
	if msg.decision == auth.DecisionRedirectLogin {
		return m, m.enterLogin()
	}
	return m, m.enterScreen(msg.target)
}

// enterScreen показывает уже проверенный защищенный экран.
func (m *model) enterScreen(target screenState) tea.Cmd {
	m.state = target
	switch target {
	case adminScreen:
		m.refreshLists()
		return m.reloadCatalog()
	case categoriesScreen:
		m.refreshLists()
	}
	return nil
}

// handleAPIError обрабатывает ошибку операции админки. Отказ в доступе
// означает потерю сессии: локальная сессия очищается и открывается вход.
func (m *model) handleAPIError(action string, err error) (tea.Model, tea.Cmd) {
	slog.Warn("Ошибка операции админки", "action", action, "error", err)
	if errors.Is(err, api.ErrAuthorization) {
		m.services.Store.Logout()
		cmd := m.enterLogin()
		m.loginErr = msgSessionExpired
		return m, cmd
	}
	return m.setStatusMessage(action + ": " + describeAdminError(err))
}

// describeAdminError возвращает сообщение для пользователя.
// Текст сервера имеет приоритет.
func describeAdminError(err error) string {
	if text := api.ServerMessage(err); text != "" {
		return text
	}
	switch {
	case api.IsTransport(err):
		return auth.MsgNoResponse
	case errors.Is(err, api.ErrNotFound):
		return msgNotFound
	case catalog.Classify(err) == catalog.KindServer:
		return auth.MsgServerError
	default:
		return msgOperationFailed
	}
}
