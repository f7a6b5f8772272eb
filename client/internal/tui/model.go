package tui

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/auth"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/catalog"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

// Состояния (экраны) приложения.
type screenState int

const (
	menuScreen          screenState = iota // Публичное меню
	verifyingScreen                        // Проверка сессии перед защищенным экраном
	loginScreen                            // Форма входа
	adminScreen                            // Продукты в админке
	productFormScreen                      // Создание/редактирование продукта
	categoriesScreen                       // Категории в админке
	categoryFormScreen                     // Создание категории
	confirmDeleteScreen                    // Подтверждение удаления
)

func (s screenState) String() string {
	switch s {
	case menuScreen:
		return "menu"
	case verifyingScreen:
		return "verifying"
	case loginScreen:
		return "login"
	case adminScreen:
		return "admin"
	case productFormScreen:
		return "product_form"
	case categoriesScreen:
		return "categories"
	case categoryFormScreen:
		return "category_form"
	case confirmDeleteScreen:
		return "confirm_delete"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Поля формы продукта в порядке переключения по tab.
const (
	productFieldNombre = iota
	productFieldDescripcion
	productFieldPrecio
	productFieldCategoria
	productFieldImagen
	productFieldDisponible
	numProductFields
)

// Индексы текстовых полей формы продукта в model.productInputs.
const (
	productInputNombre = iota
	productInputDescripcion
	productInputPrecio
	productInputImagen
	numProductInputs
)

// Константы для TUI.
const (
	keyEnter    = "enter"
	keyQuit     = "q"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyUp       = "up"
	keyDown     = "down"
	keyLeft     = "left"
	keyRight    = "right"
	keySpace    = " "
)

// Services - сервисы, с которыми работает TUI. Создаются один раз в main.
type Services struct {
	API      api.Client
	Store    *session.Store
	Verifier *auth.Verifier
	Guard    *auth.Guard
	Flow     *auth.Flow
	Loader   *catalog.Loader
}

// NewServices собирает сервисы вокруг API клиента и хранилища сессии.
func NewServices(client api.Client, store *session.Store, catalogTimeout time.Duration) Services {
	verifier := auth.NewVerifier(store, client)
	return Services{
		API:      client,
		Store:    store,
		Verifier: verifier,
		Guard:    auth.NewGuard(verifier),
		Flow:     auth.NewFlow(client, store, verifier),
		Loader:   catalog.NewLoader(client, catalogTimeout),
	}
}

// Options - настройки отображения.
type Options struct {
	Debug bool
	// ImageProbe включает проверку imagen_url запросами HEAD.
	ImageProbe  bool
	ImageClient *http.Client
}

// productItem - элемент списка продуктов. Реализует list.Item.
type productItem struct {
	product models.Product
	label   string // Название категории или сырой ключ
	image   string // Проверенный адрес изображения, пустой если проверки не было
}

func (i productItem) Title() string {
	return fmt.Sprintf("%s  $%.2f", i.product.Nombre, i.product.Precio)
}

func (i productItem) Description() string {
	desc := i.label
	if i.product.Descripcion != "" {
		desc += " | " + i.product.Descripcion
	}
	if !i.product.Disponible {
		desc += " | no disponible"
	}
	if i.image != "" {
		desc += " | " + i.image
	}
	return desc
}

func (i productItem) FilterValue() string { return i.product.Nombre }

// categoryItem - элемент списка категорий.
type categoryItem struct {
	category models.Category
}

func (i categoryItem) Title() string       { return i.category.Nombre }
func (i categoryItem) Description() string { return "valor: " + i.category.Valor }
func (i categoryItem) FilterValue() string { return i.category.Nombre }

// deleteTarget - то, что удаляется после подтверждения.
type deleteTarget struct {
	product bool // true - продукт, false - категория
	id      int64
	name    string
	back    screenState
}

// model представляет состояние TUI приложения.
type model struct {
	state    screenState
	services Services
	opts     Options

	// Каталог
	catalog        catalog.Catalog
	catalogLoading bool
	catalogErr     string // Текст баннера ошибки
	images         map[int64]string
	imagesSeq      int // Адреса от старых загрузок каталога игнорируются
	activeCategory string
	menuList       list.Model
	adminList      list.Model
	categoryList   list.Model

	// Проверка сессии перед защищенным экраном
	pendingTarget screenState
	guardSeq      int // Ответы старых проверок игнорируются
	spinner       spinner.Model

	// Вход
	loginUsernameInput textinput.Model
	loginPasswordInput textinput.Model
	loginFocusedField  int
	loginSubmitting    bool
	loginChecking      bool // Проверка сессии при открытии формы еще идет
	loginMountSeq      int
	loginErr           string
	loginFailure       auth.FailureKind
	adminVisits        int // Сколько раз выполнен переход в админку после входа

	// Форма продукта
	productInputs     []textinput.Model
	productFocused    int
	productCategory   int // Индекс в m.catalog.Categories
	productDisponible bool
	editingProductID  int64 // 0 - новый продукт
	formErr           string
	formSaving        bool

	// Форма категории
	categoryNombreInput textinput.Model

	pendingDelete *deleteTarget

	statusMessage string
	width         int
	height        int
	helpTextMap   map[screenState]string
	docStyle      lipgloss.Style
}

// Сообщение для очистки статуса.
type clearStatusMsg struct{}
