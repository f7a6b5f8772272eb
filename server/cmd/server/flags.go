package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
)

const (
	// Порт по умолчанию, его ожидает клиент.
	defaultServerPort = "5000"
	defaultCORSOrigin = "http://localhost:3000"
	defaultAdminUser  = "admin"
	defaultAdminPass  = "admin123"

	// Переменные окружения.
	envServerPort    = "SERVER_PORT"
	envTLSCertFile   = "TLS_CERT_FILE"
	envTLSKeyFile    = "TLS_KEY_FILE"
	envAdminUser     = "ADMIN_USER"
	envAdminPassword = "ADMIN_PASSWORD" //nolint:gosec // Ложное срабатывание, это имя переменной окружения
	envJWTSecret     = "JWT_SECRET"     //nolint:gosec // Ложное срабатывание, это имя переменной окружения
	envCORSOrigin    = "CORS_ORIGIN"
	envSeed          = "SEED_SAMPLE"
)

// config хранит конфигурацию сервера.
type config struct {
	Port          string
	CertFile      string
	KeyFile       string
	AdminUser     string
	AdminPassword string
	JWTSecret     string
	CORSOrigin    string
	Seed          bool
}

// TLSEnabled сообщает, заданы ли сертификат и ключ.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
func parseFlags() (*config, error) {
	cfg := &config{}

	// Определяем флаги
	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата, включает HTTPS (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.AdminUser, "admin-user", "",
		fmt.Sprintf("Имя администратора (env: %s, default: %s)", envAdminUser, defaultAdminUser))
	flag.StringVar(&cfg.AdminPassword, "admin-password", "",
		fmt.Sprintf("Пароль администратора (env: %s)", envAdminPassword))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Секрет подписи JWT (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.CORSOrigin, "cors-origin", "",
		fmt.Sprintf("Разрешенный Origin (env: %s, default: %s)", envCORSOrigin, defaultCORSOrigin))
	flag.BoolVar(&cfg.Seed, "seed", false,
		fmt.Sprintf("Заполнить демонстрационным меню (env: %s)", envSeed))

	// Парсим флаги
	flag.Parse()

	// Применяем переменные окружения, если флаги не заданы
	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.CertFile, envTLSCertFile, "")
	applyEnv(&cfg.KeyFile, envTLSKeyFile, "")
	applyEnv(&cfg.AdminUser, envAdminUser, defaultAdminUser)
	applyEnv(&cfg.AdminPassword, envAdminPassword, defaultAdminPass)
	applyEnv(&cfg.JWTSecret, envJWTSecret, "")
	applyEnv(&cfg.CORSOrigin, envCORSOrigin, defaultCORSOrigin)
	if !cfg.Seed {
		if value, ok := os.LookupEnv(envSeed); ok {
			seed, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("некорректное значение %s: %w", envSeed, err)
			}
			cfg.Seed = seed
		}
	}

	// Проверяем параметры
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("сертификат и ключ задаются только вместе (--cert-file и --key-file)")
	}
	if cfg.JWTSecret == "" {
		// Токены перестанут приниматься после перезапуска
		cfg.JWTSecret = uuid.NewString()
		log.Printf("Секрет JWT не задан (%s), сгенерирован случайный", envJWTSecret)
	}
	if cfg.AdminPassword == defaultAdminPass {
		log.Printf("Используется пароль администратора по умолчанию, задайте %s", envAdminPassword)
	}

	return cfg, nil
}

// applyEnv заполняет пустое значение флага из окружения или значением по умолчанию.
func applyEnv(dst *string, key, fallback string) {
	if *dst != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*dst = value
		return
	}
	*dst = fallback
}
