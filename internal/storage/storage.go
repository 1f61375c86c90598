package storage

import (
	"context"
	"errors"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Storage определяет интерфейс долговременного хранилища сессий:
// токен доступа и пользователь, привязанные к cookie браузера.
type Storage interface {
	// Init готовит хранилище к работе (соединение, схема).
	Init(ctx context.Context) error

	// SaveSession сохраняет или перезаписывает сессию.
	SaveSession(ctx context.Context, s *models.SessionRecord) error

	// GetSession возвращает сессию по ID. Возвращает ErrNotFound, если сессии нет.
	GetSession(ctx context.Context, id string) (*models.SessionRecord, error)

	// DeleteSession удаляет сессию. Удаление отсутствующей сессии не ошибка.
	DeleteSession(ctx context.Context, id string) error

	// Close освобождает ресурсы хранилища.
	Close() error
}

// Ошибки хранилища
var ErrNotFound = errors.New("session not found")
