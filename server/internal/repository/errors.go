package repository

import "errors"

// Кастомные ошибки репозитория.
var (
	ErrUserNotFound     = errors.New("пользователь не найден")
	ErrUsernameTaken    = errors.New("имя пользователя уже занято")
	ErrProductNotFound  = errors.New("продукт не найден")
	ErrCategoryNotFound = errors.New("категория не найдена")
	ErrCategoryExists   = errors.New("категория уже существует")
	ErrSessionNotFound  = errors.New("сессия не найдена")
)
