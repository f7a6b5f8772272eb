package repository

import (
	"context"
	"sync"
	"time"
)

// Session - серверная сессия, на которую указывает cookie.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

// SessionRepository хранит cookie сессии.
type SessionRepository interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionRepository создает хранилище сессий в памяти.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]Session), now: time.Now}
}

func (r *memorySessionRepository) Save(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

// Get возвращает действующую сессию. Истекшая сессия удаляется.
func (r *memorySessionRepository) Get(_ context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !r.now().Before(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
