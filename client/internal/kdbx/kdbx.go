package kdbx

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
)

// ErrNilDatabase возвращается при попытке работать с неинициализированной базой.
var ErrNilDatabase = errors.New("база данных не инициализирована (nil)")

// OpenFile открывает и дешифрует KDBX файл по указанному пути и паролю.
// Возвращает объект базы данных или ошибку.
func OpenFile(filePath string, password string) (*gokeepasslib.Database, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", filePath, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)

	if err = gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла '%s': %w", filePath, err)
	}

	// Разблокируем защищенные значения
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("ошибка разблокировки защищенных полей: %w", err)
	}

	return db, nil
}

// CreateDatabase создает новую пустую базу KDBX в памяти с корневой группой.
// Файл не создается, для записи используйте SaveFile.
func CreateDatabase(password string) (*gokeepasslib.Database, error) {
	if password == "" {
		return nil, errors.New("пароль не может быть пустым")
	}

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content = gokeepasslib.NewContent()
	db.Content.Meta.CustomData = []gokeepasslib.CustomData{}

	rootGroup := gokeepasslib.NewGroup()
	rootGroup.Name = "Arrivederci"
	rootGroup.UUID = gokeepasslib.NewUUID()
	db.Content.Root = &gokeepasslib.RootData{
		Groups: []gokeepasslib.Group{rootGroup},
	}

	return db, nil
}

// OpenOrCreate открывает существующий файл или создает новую базу, если файла нет.
func OpenOrCreate(filePath string, password string) (*gokeepasslib.Database, error) {
	db, err := OpenFile(filePath, password)
	if err == nil {
		return db, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	slog.Debug("Файл KDBX не найден, создаем новую базу", "path", filePath)
	return CreateDatabase(password)
}

// SaveFile кодирует и сохраняет базу данных KDBX в указанный файл.
// Запись идет во временный файл рядом с целевым, затем он переименовывается.
func SaveFile(db *gokeepasslib.Database, filePath string, password string) error {
	if db == nil {
		return ErrNilDatabase
	}

	if db.Credentials == nil {
		if password == "" {
			return errors.New("пароль не может быть пустым при сохранении")
		}
		db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return fmt.Errorf("ошибка создания каталога для '%s': %w", filePath, err)
	}

	// Перед сохранением нужно заблокировать защищенные поля
	if err := db.LockProtectedEntries(); err != nil {
		slog.Warn("Не удалось заблокировать поля перед сохранением", "error", err)
	}
	defer func() {
		if err := db.UnlockProtectedEntries(); err != nil {
			slog.Warn("Не удалось разблокировать поля после сохранения", "error", err)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания/открытия файла '%s' для записи: %w", filePath, err)
	}
	tmpName := tmp.Name()

	if encodeErr := gokeepasslib.NewEncoder(tmp).Encode(db); encodeErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка кодирования и записи БД в файл '%s': %w", filePath, encodeErr)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка замены файла '%s': %w", filePath, err)
	}

	return nil
}
