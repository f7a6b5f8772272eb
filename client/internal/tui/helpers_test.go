//nolint:testpackage // Это файл с вспомогательными функциями для тестов в том же пакете
package tui

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

const (
	// drainTimeout - сколько ждать одну команду. Команды с таймерами
	// (статус, мигание курсора, спиннер) за это время не завершаются и пропускаются.
	drainTimeout  = 50 * time.Millisecond
	maxDrainSteps = 50
	testTimeout   = time.Second
)

// mockAPIClient - мок для API клиента.
type mockAPIClient struct {
	mock.Mock
}

func (m *mockAPIClient) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAPIClient) CheckAuth(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockAPIClient) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAPIClient) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockAPIClient) Probe(ctx context.Context, origin string) (*api.ProbeResult, error) {
	args := m.Called(ctx, origin)
	res, _ := args.Get(0).(*api.ProbeResult)
	return res, args.Error(1)
}

func (m *mockAPIClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *mockAPIClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *mockAPIClient) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockAPIClient) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockAPIClient) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAPIClient) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*models.Category)
	return c, args.Error(1)
}

func (m *mockAPIClient) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAPIClient) BaseURL() string { return "http://localhost:5000/api" }

// testCategories и testProducts - каталог для тестов.
func testCategories() []models.Category {
	return []models.Category{
		{ID: 1, Nombre: "Cafetería", Valor: "cafeteria"},
		{ID: 2, Nombre: "Postres", Valor: "postres"},
	}
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 1, Nombre: "Espresso", Precio: 2.5, Categoria: "cafeteria", Disponible: true},
		{ID: 2, Nombre: "Tiramisú", Precio: 5, Categoria: "postres", Disponible: true},
		{ID: 3, Nombre: "Cannoli", Precio: 4, Categoria: "postres", Disponible: false},
	}
}

// expectCatalog настраивает мок на выдачу тестового каталога при каждой загрузке.
func expectCatalog(client *mockAPIClient) {
	client.On("ListProducts", mock.Anything).Return(testProducts(), nil).Maybe()
	client.On("ListCategories", mock.Anything).Return(testCategories(), nil).Maybe()
}

// newTestModel создает модель с хранилищем сессии в памяти.
func newTestModel(t *testing.T, client *mockAPIClient) (*model, *session.Store) {
	t.Helper()
	store := session.NewStore(session.NewMemoryBackend(), session.NewMemoryBackend(), nil)
	m := initModel(NewServices(client, store, testTimeout), Options{})
	m.resize(120, 40)
	return m, store
}

// runCmd выполняет команду, если она укладывается в drainTimeout.
func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(drainTimeout):
		return nil, false
	}
}

// drain выполняет команду и все порожденные ею команды, передавая сообщения в модель.
func drain(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, maxDrainSteps, "слишком много команд")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := runCmd(next)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg, clearStatusMsg, tea.QuitMsg:
			continue
		}
		_, c := m.Update(msg)
		queue = append(queue, c)
	}
}

// pressKey отправляет клавишу и выполняет результат.
func pressKey(t *testing.T, m *model, key tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(key)
	drain(t, m, cmd)
}

// runes возвращает нажатие обычной клавиши.
func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText вводит текст посимвольно. Команды мигания курсора не выполняются.
func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(runes(string(r)))
	}
}
