package tui

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/auth"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/catalog"
	"github.com/LucasBurriel/arrivederci-menu/models"
)

// requestTimeout ограничивает одну операцию админки.
const requestTimeout = 15 * time.Second

// imageProbeLimit - сколько изображений проверяется одновременно.
const imageProbeLimit = 4

// --- Сообщения ---

// catalogLoadedMsg - результат загрузки каталога.
type catalogLoadedMsg struct {
	catalog catalog.Catalog
	err     error
}

// imagesResolvedMsg - итоговые адреса изображений по ID продукта.
type imagesResolvedMsg struct {
	seq    int
	images map[int64]string
}

// guardResultMsg - решение проверки сессии перед переходом на экран target.
type guardResultMsg struct {
	seq      int
	target   screenState
	decision auth.Decision
}

// loginMountMsg - результат проверки сессии при открытии формы входа.
type loginMountMsg struct {
	seq           int
	authenticated bool
}

// loginResultMsg - итог отправки формы входа.
type loginResultMsg struct {
	outcome auth.Outcome
	err     error
}

// productSavedMsg - результат создания или обновления продукта.
type productSavedMsg struct {
	product *models.Product
	created bool
	err     error
}

// deletedMsg - результат удаления продукта или категории.
type deletedMsg struct {
	product bool
	id      int64
	err     error
}

// categoryCreatedMsg - результат создания категории.
type categoryCreatedMsg struct {
	category *models.Category
	err      error
}

// logoutDoneMsg - локальная сессия очищена.
type logoutDoneMsg struct{}

// --- Команды ---

// loadCatalogCmd загружает продукты и категории. Ограничение времени
// задает сам Loader.
func loadCatalogCmd(loader *catalog.Loader) tea.Cmd {
	return func() tea.Msg {
		c, err := loader.Load(context.Background())
		return catalogLoadedMsg{catalog: c, err: err}
	}
}

// resolveImagesCmd проверяет изображения продуктов.
func resolveImagesCmd(client *http.Client, seq int, products []models.Product) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return imagesResolvedMsg{seq: seq, images: catalog.ResolveImages(ctx, client, products, imageProbeLimit)}
	}
}

// verifyAccessCmd проверяет сессию перед переходом на защищенный экран.
func verifyAccessCmd(guard *auth.Guard, seq int, target screenState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return guardResultMsg{seq: seq, target: target, decision: guard.Check(ctx)}
	}
}

// loginMountCmd проверяет, есть ли уже действительная сессия.
func loginMountCmd(flow *auth.Flow, seq int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loginMountMsg{seq: seq, authenticated: flow.OnMount(ctx)}
	}
}

// submitLoginCmd выполняет вход. Повторная отправка во время текущей
// отклоняется самим Flow с auth.ErrBusy.
func submitLoginCmd(flow *auth.Flow, creds auth.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		outcome, err := flow.Submit(ctx, creds)
		return loginResultMsg{outcome: outcome, err: err}
	}
}

// saveProductCmd создает продукт (id == 0) или обновляет существующий.
func saveProductCmd(client api.Client, id int64, in models.ProductInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if id == 0 {
			p, err := client.CreateProduct(ctx, in)
			return productSavedMsg{product: p, created: true, err: err}
		}
		p, err := client.UpdateProduct(ctx, id, in)
		return productSavedMsg{product: p, err: err}
	}
}

// deleteCmd удаляет продукт или категорию.
func deleteCmd(client api.Client, target deleteTarget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if target.product {
			err = client.DeleteProduct(ctx, target.id)
		} else {
			err = client.DeleteCategory(ctx, target.id)
		}
		return deletedMsg{product: target.product, id: target.id, err: err}
	}
}

// createCategoryCmd создает категорию. valor вычисляется из названия.
func createCategoryCmd(client api.Client, nombre string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		in := models.CategoryInput{Nombre: nombre, Valor: models.CategoryKey(nombre)}
		c, err := client.CreateCategory(ctx, in)
		return categoryCreatedMsg{category: c, err: err}
	}
}

// logoutCmd завершает сессию на сервере и очищает локальную сессию
// независимо от ответа сервера.
func logoutCmd(client api.Client, store auth.SessionStore) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := client.Logout(ctx); err != nil {
			slog.Warn("Не удалось завершить сессию на сервере", "error", err)
		}
		store.Logout()
		return logoutDoneMsg{}
	}
}

// clearStatusCmd возвращает команду, которая отправит clearStatusMsg после задержки.
func clearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
