package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// DefaultTimeout - ограничение времени одной загрузки каталога.
const DefaultTimeout = 15 * time.Second

// Fetcher - операции API, нужные для загрузки каталога.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Loader загружает каталог. Новая загрузка отменяет предыдущую,
// и результат отмененной загрузки никогда не фиксируется.
type Loader struct {
	fetcher Fetcher
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	snapshot   Catalog
	loaded     bool
}

// NewLoader создает Loader. Нулевой timeout заменяется на DefaultTimeout.
func NewLoader(fetcher Fetcher, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{fetcher: fetcher, timeout: timeout}
}

// Load загружает продукты и категории параллельно.
// Возвращает ErrSuperseded, если во время загрузки была начата новая.
func (l *Loader) Load(ctx context.Context) (Catalog, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	generation := l.generation
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	var (
		products   []models.Product
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.fetcher.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("загрузка продуктов: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = l.fetcher.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("загрузка категорий: %w", err)
		}
		return nil
	})
	err := g.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		slog.Debug("Результат устаревшей загрузки каталога отброшен", "generation", generation)
		return Catalog{}, ErrSuperseded
	}
	l.cancel = nil

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		slog.Warn("Ошибка загрузки каталога", "error", err, "kind", Classify(err))
		return Catalog{}, err
	}

	if products == nil {
		products = []models.Product{}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	l.snapshot = Catalog{Products: products, Categories: categories}
	l.loaded = true
	slog.Debug("Каталог загружен", "products", len(products), "categories", len(categories))
	return l.snapshot, nil
}

// Snapshot возвращает последний зафиксированный каталог.
func (l *Loader) Snapshot() (Catalog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot, l.loaded
}

// Cancel отменяет текущую загрузку, если она есть.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.generation++
}
