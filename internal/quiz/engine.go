package quiz

import (
	"context"
	"log/slog"
	"sync"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

type attemptKey struct {
	sessionID string
	testID    int
}

// Engine хранит активные попытки по сессии и тесту.
// У одной сессии одновременно живет не больше одной попытки.
type Engine struct {
	attempts  map[attemptKey]*Attempt
	bySession map[string]map[int]struct{}
	newTicker TickerFactory
	mu        sync.Mutex
}

// Option настраивает Engine.
type Option func(e *Engine)

// WithTicker подменяет источник секундных тиков.
func WithTicker(f TickerFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.newTicker = f
		}
	}
}

// NewEngine создаёт новый Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		attempts:  make(map[attemptKey]*Attempt),
		bySession: make(map[string]map[int]struct{}),
		newTicker: realTicker,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start начинает попытку теста для сессии. Остальные попытки сессии отменяются.
// Если попытка этого теста уже идет, возвращается она.
func (e *Engine) Start(ctx context.Context, sessionID string, test *models.Test, submit SubmitFunc) (*Attempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := attemptKey{sessionID: sessionID, testID: test.ID}
	if a, ok := e.attempts[key]; ok {
		switch a.Status() {
		case StatusActive, StatusSubmitting:
			return a, nil
		}
		e.removeLocked(key)
	}
	e.leaveLocked(sessionID, test.ID)

	a, err := newAttempt(ctx, test, submit, e.newTicker)
	if err != nil {
		return nil, err
	}

	e.attempts[key] = a
	if e.bySession[sessionID] == nil {
		e.bySession[sessionID] = make(map[int]struct{})
	}
	e.bySession[sessionID][test.ID] = struct{}{}

	slog.Debug("attempt started", "test_id", test.ID, "duration_minutes", test.DurationMinutes)

	return a, nil
}

// Get возвращает попытку сессии по тесту.
func (e *Engine) Get(sessionID string, testID int) (*Attempt, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.attempts[attemptKey{sessionID: sessionID, testID: testID}]
	return a, ok
}

// Remove отменяет и забывает попытку.
func (e *Engine) Remove(sessionID string, testID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(attemptKey{sessionID: sessionID, testID: testID})
}

// Leave отменяет попытки сессии, кроме попытки теста keepTestID.
// Вызывается, когда пользователь ушел со страницы теста.
func (e *Engine) Leave(sessionID string, keepTestID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.leaveLocked(sessionID, keepTestID)
}

// Drop отменяет все попытки сессии. Вызывается при завершении сессии.
func (e *Engine) Drop(sessionID string) {
	e.Leave(sessionID, 0)
}

// Active возвращает количество хранимых попыток.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.attempts)
}

// Close отменяет все попытки.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.attempts {
		e.removeLocked(key)
	}
}

func (e *Engine) leaveLocked(sessionID string, keepTestID int) {
	for testID := range e.bySession[sessionID] {
		if testID == keepTestID {
			continue
		}
		e.removeLocked(attemptKey{sessionID: sessionID, testID: testID})
	}
}

func (e *Engine) removeLocked(key attemptKey) {
	a, ok := e.attempts[key]
	if !ok {
		return
	}
	a.Cancel()

	delete(e.attempts, key)
	delete(e.bySession[key.sessionID], key.testID)
	if len(e.bySession[key.sessionID]) == 0 {
		delete(e.bySession, key.sessionID)
	}
}
