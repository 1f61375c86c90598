package auth

import (
	"context"
	"sync"
	"time"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Session хранит токен доступа и пользователя одного браузера.
// Меняется только через Manager и Auth; остальные компоненты только читают.
type Session struct {
	id        string
	token     string
	user      *models.User
	expiresAt time.Time
	cleared   bool
	mu        sync.RWMutex
}

// ID возвращает идентификатор сессии (значение cookie). Пусто для анонимной сессии.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// User возвращает копию текущего пользователя или nil.
func (s *Session) User() *models.User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token возвращает токен доступа или пустую строку.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated сообщает, что в сессии есть пользователь.
func (s *Session) Authenticated() bool {
	return s.User() != nil
}

// Cleared сообщает, что сессия была сброшена во время запроса
// (выход или ответ 401 от бэкенда).
func (s *Session) Cleared() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cleared
}

func (s *Session) set(rec *models.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := rec.User
	s.id = rec.ID
	s.token = rec.Token
	s.user = &user
	s.expiresAt = rec.ExpiresAt
	s.cleared = false
}

func (s *Session) clear() (id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.id
	s.id = ""
	s.token = ""
	s.user = nil
	s.expiresAt = time.Time{}
	s.cleared = s.cleared || id != ""
	return id
}

type sessionKey struct{}

// NewContext возвращает контекст с сессией s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext возвращает сессию из контекста или nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
