// Package config собирает настройки клиента из значений по умолчанию,
// файла конфигурации, .env, переменных окружения и флагов.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix - префикс переменных окружения клиента.
const EnvPrefix = "ARRIVEDERCI"

// Ключи настроек.
const (
	KeyAPIURL         = "api_url"
	KeyStorageDir     = "storage_dir"
	KeyVaultPassword  = "vault_password" //nolint:gosec // Это имя ключа, а не пароль
	KeyCatalogTimeout = "catalog_timeout"
	KeyImageProbe     = "image_probe"
	KeyDebug          = "debug"
	KeyLogDir         = "log_dir"
)

// DefaultAPIURL - адрес API по умолчанию.
const DefaultAPIURL = "http://localhost:5000/api"

// Config - итоговые настройки клиента.
type Config struct {
	APIURL         string        `mapstructure:"api_url"`
	StorageDir     string        `mapstructure:"storage_dir"`
	VaultPassword  string        `mapstructure:"vault_password"`
	CatalogTimeout time.Duration `mapstructure:"catalog_timeout"`
	ImageProbe     bool          `mapstructure:"image_probe"`
	Debug          bool          `mapstructure:"debug"`
	LogDir         string        `mapstructure:"log_dir"`
}

// Options задает источники настроек.
type Options struct {
	// ConfigFile - путь к YAML/JSON файлу, пустой - без файла.
	ConfigFile string
	// EnvFile - путь к .env файлу. Отсутствие файла не ошибка.
	EnvFile string
	// Overrides - значения явно заданных флагов, применяются последними.
	Overrides map[string]any
}

// DefaultStorageDir возвращает каталог для файлов сессии.
func DefaultStorageDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".arrivederci"
	}
	return filepath.Join(dir, "arrivederci")
}

// Load собирает настройки. Приоритет по возрастанию:
// значения по умолчанию, файл, .env, окружение, флаги.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		// godotenv не перезаписывает уже заданные переменные окружения
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ошибка чтения %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyStorageDir, DefaultStorageDir())
	v.SetDefault(KeyVaultPassword, "")
	v.SetDefault(KeyCatalogTimeout, "15s")
	v.SetDefault(KeyImageProbe, false)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogDir, "logs")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации '%s': %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Совместимость с прежней переменной фронтенда
	if err := v.BindEnv(KeyAPIURL, EnvPrefix+"_API_URL", "VITE_API_URL"); err != nil {
		return nil, fmt.Errorf("ошибка привязки переменной окружения: %w", err)
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("некорректный %s '%s': %w", KeyAPIURL, c.APIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("некорректный %s '%s': нужен http(s)://host", KeyAPIURL, c.APIURL)
	}
	if c.StorageDir == "" {
		return fmt.Errorf("%s не может быть пустым", KeyStorageDir)
	}
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("%s должен быть положительным", KeyCatalogTimeout)
	}
	return nil
}
