package kdbx

import (
	"log/slog"
	"time"

	"github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"
)

// setCustomDataValue обновляет или добавляет значение в слайс CustomData.
// Возвращает обновленный слайс и признак изменения.
func setCustomDataValue(
	customDataSlice []gokeepasslib.CustomData, key, value string,
) ([]gokeepasslib.CustomData, bool) {
	for i := range customDataSlice {
		if customDataSlice[i].Key == key {
			if customDataSlice[i].Value == value {
				return customDataSlice, false
			}
			customDataSlice[i].Value = value
			slog.Debug("Обновлено значение CustomData", "key", key)
			return customDataSlice, true
		}
	}
	slog.Debug("Добавлено новое значение CustomData", "key", key)
	return append(customDataSlice, gokeepasslib.CustomData{Key: key, Value: value}), true
}

// removeCustomDataValue удаляет значение из слайса CustomData по ключу.
// Возвращает обновленный слайс и признак удаления.
func removeCustomDataValue(
	customDataSlice []gokeepasslib.CustomData, key string,
) ([]gokeepasslib.CustomData, bool) {
	newSlice := make([]gokeepasslib.CustomData, 0, len(customDataSlice))
	removed := false
	for _, item := range customDataSlice {
		if item.Key == key {
			removed = true
			continue
		}
		newSlice = append(newSlice, item)
	}
	if removed {
		slog.Debug("Удалено значение из CustomData", "key", key)
	}
	return newSlice, removed
}

// touchRoot обновляет время модификации корневой группы.
func touchRoot(db *gokeepasslib.Database) {
	if db.Content.Root == nil || len(db.Content.Root.Groups) == 0 {
		slog.Warn("Не удалось обновить LastModificationTime: корневая группа отсутствует")
		return
	}
	modTime := wrappers.TimeWrapper{Time: time.Now().UTC()}
	db.Content.Root.Groups[0].Times.LastModificationTime = &modTime
}

func hasMeta(db *gokeepasslib.Database) bool {
	return db != nil && db.Content != nil && db.Content.Meta != nil
}

// SetValue сохраняет пару ключ/значение в метаданных базы.
func SetValue(db *gokeepasslib.Database, key, value string) error {
	if !hasMeta(db) {
		return ErrNilDatabase
	}
	var changed bool
	db.Content.Meta.CustomData, changed = setCustomDataValue(db.Content.Meta.CustomData, key, value)
	if changed {
		touchRoot(db)
	}
	return nil
}

// GetValue возвращает значение по ключу из метаданных базы.
func GetValue(db *gokeepasslib.Database, key string) (string, bool) {
	if !hasMeta(db) {
		return "", false
	}
	for _, item := range db.Content.Meta.CustomData {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// RemoveValue удаляет ключ из метаданных базы.
// Возвращает true, если ключ был найден.
func RemoveValue(db *gokeepasslib.Database, key string) (bool, error) {
	if !hasMeta(db) {
		return false, ErrNilDatabase
	}
	var removed bool
	db.Content.Meta.CustomData, removed = removeCustomDataValue(db.Content.Meta.CustomData, key)
	if removed {
		touchRoot(db)
	}
	return removed, nil
}
