package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// FileBackend хранит значения в JSON файле, по одному файлу на источник API.
// Доступ между процессами синхронизируется через файловую блокировку.
type FileBackend struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewFileBackend создает файловое хранилище в каталоге dir для источника apiURL.
func NewFileBackend(dir, apiURL string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога сессии '%s': %w", dir, err)
	}
	path := filepath.Join(dir, OriginKey(apiURL)+".json")
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (f *FileBackend) Name() string { return "file" }

// Path возвращает путь к файлу хранилища.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.RLock(); err != nil {
		return "", fmt.Errorf("ошибка блокировки '%s': %w", f.path, err)
	}
	defer f.lock.Unlock() //nolint:errcheck // снятие блокировки при чтении

	values, err := f.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (f *FileBackend) Set(key, value string) error {
	return f.update(func(values map[string]string) { values[key] = value })
}

func (f *FileBackend) Remove(key string) error {
	return f.update(func(values map[string]string) { delete(values, key) })
}

// update выполняет чтение-изменение-запись под эксклюзивной блокировкой.
func (f *FileBackend) update(mutate func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки '%s': %w", f.path, err)
	}
	defer f.lock.Unlock() //nolint:errcheck // ошибка записи важнее

	values, err := f.read()
	if err != nil {
		return err
	}
	mutate(values)
	return f.write(values)
}

func (f *FileBackend) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения '%s': %w", f.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err = json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("поврежден файл сессии '%s': %w", f.path, err)
	}
	return values, nil
}

func (f *FileBackend) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка кодирования сессии: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи сессии: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка установки прав на файл сессии: %w", err)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка замены файла сессии '%s': %w", f.path, err)
	}
	return nil
}
