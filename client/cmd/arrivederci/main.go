package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/config"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/tui"
)

const (
	logFileName        = "client.log"
	logFilePermissions = 0o600
	envFileName        = ".env"
	checkTimeout       = 10 * time.Second
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
var (
	version = "dev" // Значение по умолчанию, если не установлено при сборке
	//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
	buildDate = "unknown"
	//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
	commitHash = "N/A"
)

// setupLogging настраивает логирование в файл <dir>/client.log.
// TUI занимает терминал, поэтому в stdout ничего не пишется.
func setupLogging(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	logPath := filepath.Join(dir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, err
	}

	logHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))
	slog.Info("Логгер инициализирован", "path", logPath)
	return logFile, nil
}

// cliFlags - флаги командной строки.
type cliFlags struct {
	version      bool
	check        bool
	clearSession bool
	configFile   string
	apiURL       string
	storageDir   string
	logDir       string
	debug        bool
	imageProbe   bool
}

func parseFlags() (cliFlags, map[string]any) {
	var f cliFlags
	flag.BoolVar(&f.version, "version", false, "Показать версию и дату сборки")
	flag.BoolVar(&f.check, "check", false, "Проверить доступность API и состояние сессии и выйти")
	flag.BoolVar(&f.clearSession, "clear-session", false, "Удалить локальную сессию и выйти")
	flag.StringVar(&f.configFile, "config", "", "Путь к файлу конфигурации (YAML/JSON)")
	flag.StringVar(&f.apiURL, "api-url", config.DefaultAPIURL, "Базовый URL API (переопределяет ARRIVEDERCI_API_URL)")
	flag.StringVar(&f.storageDir, "storage-dir", "", "Каталог для файлов сессии")
	flag.StringVar(&f.logDir, "log-dir", "logs", "Каталог для лог-файла")
	flag.BoolVar(&f.debug, "debug", false, "Включить режим отладки TUI")
	flag.BoolVar(&f.imageProbe, "image-probe", false, "Проверять изображения продуктов запросами HEAD")
	flag.Parse()

	// Флаги переопределяют остальные источники, только если заданы явно
	overrides := make(map[string]any)
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "api-url":
			overrides[config.KeyAPIURL] = f.apiURL
		case "storage-dir":
			overrides[config.KeyStorageDir] = f.storageDir
		case "log-dir":
			overrides[config.KeyLogDir] = f.logDir
		case "debug":
			overrides[config.KeyDebug] = f.debug
		case "image-probe":
			overrides[config.KeyImageProbe] = f.imageProbe
		}
	})
	return f, overrides
}

func main() {
	flags, overrides := parseFlags()

	if flags.version {
		// Используем стандартный log для вывода в консоль, так как slog настроен на файл
		log.SetOutput(os.Stdout)
		log.SetFlags(0)
		log.Println("Arrivederci Menu Client")
		log.Printf("Version: %s", version)
		log.Printf("Build Date: %s", buildDate)
		log.Printf("Commit Hash: %s", commitHash)
		os.Exit(0)
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: flags.configFile,
		EnvFile:    envFileName,
		Overrides:  overrides,
	})
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Не удалось настроить логирование: %v", err)
	}
	defer logFile.Close()

	slog.Info("Запуск клиента",
		"api_url", cfg.APIURL,
		"storage_dir", cfg.StorageDir,
		"vault", cfg.VaultPassword != "",
		"debug_mode", cfg.Debug,
	)

	app, err := newApp(cfg)
	if err != nil {
		slog.Error("Ошибка инициализации", "error", err)
		log.Fatalf("Ошибка инициализации: %v", err)
	}

	switch {
	case flags.clearSession:
		app.store.Logout()
		log.SetOutput(os.Stdout)
		log.SetFlags(0)
		log.Println("Sesión local eliminada")
		return
	case flags.check:
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		if !runCheck(ctx, os.Stdout, app.client, app.store) {
			os.Exit(1)
		}
		return
	}

	services := tui.NewServices(app.client, app.store, cfg.CatalogTimeout)
	opts := tui.Options{
		Debug:       cfg.Debug,
		ImageProbe:  cfg.ImageProbe,
		ImageClient: app.imageClient,
	}
	if err = tui.Start(services, opts); err != nil {
		log.Fatalf("%v", err)
	}
}
