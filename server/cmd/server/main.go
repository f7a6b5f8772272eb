package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/LucasBurriel/arrivederci-menu/server/internal/handlers"
	appmiddleware "github.com/LucasBurriel/arrivederci-menu/server/internal/middleware"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/repository"
	"github.com/LucasBurriel/arrivederci-menu/server/internal/services"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	corsMaxAge             = 300
)

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	authService    services.AuthService
	authHandler    *handlers.AuthHandler
	catalogHandler *handlers.CatalogHandler
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера Arrivederci...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      setupRouter(deps, cfg.CORSOrigin),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var serveErr error
		if cfg.TLSEnabled() {
			log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s)", cfg.Port, cfg.CertFile)
			serveErr = server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			log.Printf("Запуск HTTP-сервера на порту %s, CORS origin: %s", cfg.Port, cfg.CORSOrigin)
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", serveErr)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	// 1. Создание репозиториев
	userRepo := repository.NewMemoryUserRepository()
	sessionRepo := repository.NewMemorySessionRepository()
	catalogRepo := repository.NewMemoryCatalogRepository()

	// 2. Создание сервисов
	authService := services.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	catalogService := services.NewCatalogService(catalogRepo)

	// 3. Начальные данные
	err := services.Seed(ctx, authService, catalogService, services.SeedOptions{
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
		Sample:        cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	// 4. Создание обработчиков
	return &dependencies{
		authService:    authService,
		authHandler:    handlers.NewAuthHandler(authService, cfg.TLSEnabled()),
		catalogHandler: handlers.NewCatalogHandler(catalogService),
	}, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Браузерный клиент отправляет cookie сессии, поэтому origin задается явно
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	// --- Маршруты --- //
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("pong\n"))
		})

		// Публичные маршруты
		r.Post("/auth/login", deps.authHandler.Login)
		r.Post("/auth/logout", deps.authHandler.Logout)
		r.Get("/auth/check", deps.authHandler.Check)
		r.Get("/productos", deps.catalogHandler.ListProducts)
		r.Get("/categorias", deps.catalogHandler.ListCategories)

		// Приватные маршруты (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAuth(deps.authService))

			r.Post("/productos", deps.catalogHandler.CreateProduct)
			r.Put("/productos/{id}", deps.catalogHandler.UpdateProduct)
			r.Delete("/productos/{id}", deps.catalogHandler.DeleteProduct)
			r.Post("/categorias", deps.catalogHandler.CreateCategory)
			r.Delete("/categorias/{id}", deps.catalogHandler.DeleteCategory)
		})
	})
	return r
}
