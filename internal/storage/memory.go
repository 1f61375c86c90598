package storage

import (
	"context"
	"sync"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// MemoryStorage реализует Storage в памяти. Сессии живут до перезапуска процесса.
type MemoryStorage struct {
	sessions map[string]models.SessionRecord
	mu       sync.RWMutex
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]models.SessionRecord),
	}
}

// Init ничего не делает: хранилищу в памяти нечего готовить.
func (s *MemoryStorage) Init(context.Context) error {
	return nil
}

// SaveSession сохраняет копию сессии.
func (s *MemoryStorage) SaveSession(_ context.Context, rec *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[rec.ID] = *rec

	return nil
}

// GetSession возвращает копию сессии по ID.
func (s *MemoryStorage) GetSession(_ context.Context, id string) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &rec, nil
}

// DeleteSession удаляет сессию.
func (s *MemoryStorage) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)

	return nil
}

// Close ничего не делает.
func (s *MemoryStorage) Close() error {
	return nil
}
