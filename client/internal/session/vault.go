package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/kdbx"
)

// VaultBackend хранит значения в зашифрованном KDBX файле.
// Используется вместо FileBackend, когда задан пароль хранилища.
type VaultBackend struct {
	path     string
	password string
	lock     *flock.Flock
	mu       sync.Mutex
}

// NewVaultBackend создает зашифрованное хранилище в каталоге dir для источника apiURL.
func NewVaultBackend(dir, apiURL, password string) (*VaultBackend, error) {
	if password == "" {
		return nil, errors.New("пароль хранилища не задан")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога сессии '%s': %w", dir, err)
	}
	path := filepath.Join(dir, OriginKey(apiURL)+".kdbx")
	return &VaultBackend{
		path:     path,
		password: password,
		lock:     flock.New(path + ".lock"),
	}, nil
}

func (v *VaultBackend) Name() string { return "vault" }

// Path возвращает путь к KDBX файлу.
func (v *VaultBackend) Path() string { return v.path }

func (v *VaultBackend) Get(key string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.lock.RLock(); err != nil {
		return "", fmt.Errorf("ошибка блокировки '%s': %w", v.path, err)
	}
	defer v.lock.Unlock() //nolint:errcheck // снятие блокировки при чтении

	db, err := kdbx.OpenOrCreate(v.path, v.password)
	if err != nil {
		return "", err
	}
	value, ok := kdbx.GetValue(db, key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (v *VaultBackend) Set(key, value string) error {
	return v.update(func(db *gokeepasslib.Database) (bool, error) {
		return true, kdbx.SetValue(db, key, value)
	})
}

func (v *VaultBackend) Remove(key string) error {
	return v.update(func(db *gokeepasslib.Database) (bool, error) {
		return kdbx.RemoveValue(db, key)
	})
}

// update открывает базу, применяет изменение и сохраняет файл,
// если изменение что-то поменяло.
func (v *VaultBackend) update(mutate func(*gokeepasslib.Database) (bool, error)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки '%s': %w", v.path, err)
	}
	defer v.lock.Unlock() //nolint:errcheck // ошибка записи важнее

	db, err := kdbx.OpenOrCreate(v.path, v.password)
	if err != nil {
		return err
	}
	changed, err := mutate(db)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return kdbx.SaveFile(db, v.path, v.password)
}
