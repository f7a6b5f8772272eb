package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/catalog"
)

// Константы, используемые при инициализации.
const (
	initUserCharLimit     = 128
	initUserWidth         = 30
	initPasswordCharLimit = 156
	initPasswordWidth     = 30
	initNombreCharLimit   = 100
	initTextCharLimit     = 500
	initURLCharLimit      = 1024
	initFieldWidth        = 50
	docStyleMargin        = 1
	docStyleMarginSide    = 2
)

// newListDelegate возвращает делегат списка с цветами, читаемыми в темном терминале.
func newListDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.
		Foreground(lipgloss.Color("252"))
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.
		Foreground(lipgloss.Color("245"))
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("214")).
		BorderLeftForeground(lipgloss.Color("214"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("180")).
		BorderLeftForeground(lipgloss.Color("214"))
	return delegate
}

// initProductList инициализирует список продуктов с заданным заголовком.
func initProductList(title string, filtering bool) list.Model {
	l := list.New([]list.Item{}, newListDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false) // Справка своя, внизу экрана
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(filtering)
	l.SetStatusBarItemName("producto", "productos")
	l.Styles.Title = list.DefaultStyles().Title.Bold(true)
	return l
}

// initCategoryList инициализирует список категорий админки.
func initCategoryList() list.Model {
	l := list.New([]list.Item{}, newListDelegate(), 0, 0)
	l.Title = "Categorías"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("categoría", "categorías")
	l.Styles.Title = list.DefaultStyles().Title.Bold(true)
	return l
}

// initLoginInputs инициализирует поля формы входа.
func initLoginInputs() (textinput.Model, textinput.Model) {
	username := textinput.New()
	username.Placeholder = "Usuario"
	username.CharLimit = initUserCharLimit
	username.Width = initUserWidth
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Contraseña"
	password.CharLimit = initPasswordCharLimit
	password.Width = initPasswordWidth
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return username, password
}

// initProductInputs инициализирует текстовые поля формы продукта.
func initProductInputs() []textinput.Model {
	inputs := make([]textinput.Model, numProductInputs)
	for i := range inputs {
		t := textinput.New()
		t.Width = initFieldWidth
		t.CharLimit = initTextCharLimit
		switch i {
		case productInputNombre:
			t.Placeholder = "Nombre"
			t.CharLimit = initNombreCharLimit
		case productInputDescripcion:
			t.Placeholder = "Descripción"
		case productInputPrecio:
			t.Placeholder = "0.00"
		case productInputImagen:
			t.Placeholder = "https://..."
			t.CharLimit = initURLCharLimit
		}
		inputs[i] = t
	}
	return inputs
}

// initCategoryInput инициализирует поле названия новой категории.
func initCategoryInput() textinput.Model {
	t := textinput.New()
	t.Placeholder = "Nombre de la categoría"
	t.CharLimit = initNombreCharLimit
	t.Width = initFieldWidth
	return t
}

// initSpinner инициализирует индикатор проверки сессии.
func initSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	return s
}

// initHelpTextMap возвращает строку справки для каждого экрана.
func initHelpTextMap() map[screenState]string {
	return map[screenState]string{
		menuScreen:          "(←/→ categoría, ↑/↓ navegar, r recargar, a admin, esc cerrar aviso, q salir)",
		verifyingScreen:     "(ctrl+c salir)",
		loginScreen:         "(Tab/Shift+Tab cambiar campo, Enter ingresar, Esc volver al menú)",
		adminScreen:         "(n nuevo, e/Enter editar, d eliminar, c categorías, r recargar, l cerrar sesión, m/Esc menú, q salir)",
		productFormScreen:   "(Tab/Shift+Tab campo, ←/→ categoría, Espacio disponible, Enter guardar, Esc cancelar)",
		categoriesScreen:    "(n nueva, d eliminar, p productos, Esc volver, q salir)",
		categoryFormScreen:  "(Enter guardar, Esc cancelar)",
		confirmDeleteScreen: "(y confirmar, n/Esc cancelar)",
	}
}

// initModel создает начальную модель приложения.
func initModel(services Services, opts Options) *model {
	username, password := initLoginInputs()
	return &model{
		state:               menuScreen,
		services:            services,
		opts:                opts,
		catalogLoading:      true,
		activeCategory:      catalog.AllCategories,
		menuList:            initProductList("Menú", false),
		adminList:           initProductList("Productos", true),
		categoryList:        initCategoryList(),
		spinner:             initSpinner(),
		loginUsernameInput:  username,
		loginPasswordInput:  password,
		productInputs:       initProductInputs(),
		categoryNombreInput: initCategoryInput(),
		helpTextMap:         initHelpTextMap(),
		docStyle:            lipgloss.NewStyle().Margin(docStyleMargin, docStyleMarginSide),
	}
}
