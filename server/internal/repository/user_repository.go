package repository

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// UserRepository определяет методы для работы с данными пользователей в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// memoryUserRepository хранит пользователей в памяти процесса.
type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.User
}

// NewMemoryUserRepository создает пустой репозиторий пользователей.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]models.User)}
}

// CreateUser сохраняет пользователя и возвращает его ID.
func (r *memoryUserRepository) CreateUser(_ context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		log.Printf("[Repo] Ошибка создания пользователя: имя пользователя '%s' уже занято", user.Username)
		return 0, ErrUsernameTaken
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	r.users[user.Username] = stored

	log.Printf("[Repo] Пользователь '%s' успешно создан с ID %d", user.Username, stored.ID)
	return stored.ID, nil
}

// GetUserByUsername находит пользователя по его имени.
func (r *memoryUserRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
