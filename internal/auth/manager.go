package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/storage"
)

// Manager владеет жизненным циклом сессий: восстановление из хранилища при старте,
// изменение только через вход, регистрацию, выход и обработчик 401.
// Manager реализует client.Hooks.
type Manager struct {
	store  storage.Storage
	loaded atomic.Bool
	now    func() time.Time
	onEnd  []func(sessionID string)
}

// NewManager создаёт менеджер поверх хранилища st.
func NewManager(st storage.Storage) *Manager {
	return &Manager{
		store: st,
		now:   time.Now,
	}
}

// OnEnd регистрирует функцию, вызываемую после завершения сессии (выход или 401).
// Регистрировать нужно до начала обработки запросов.
func (m *Manager) OnEnd(fn func(sessionID string)) {
	m.onEnd = append(m.onEnd, fn)
}

// Rehydrate готовит хранилище при старте приложения. Пока оно не завершилось,
// Loaded возвращает false.
func (m *Manager) Rehydrate(ctx context.Context) error {
	if err := m.store.Init(ctx); err != nil {
		return fmt.Errorf("failed to load session storage: %w", err)
	}
	m.loaded.Store(true)
	slog.Info("session storage loaded")

	return nil
}

// Loaded сообщает, что состояние авторизации загружено.
func (m *Manager) Loaded() bool {
	return m.loaded.Load()
}

// Open восстанавливает сессию по идентификатору из cookie.
// Для пустого, неизвестного или просроченного идентификатора возвращает анонимную сессию.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}
	if id == "" {
		return sess, nil
	}
	if !m.Loaded() {
		return sess, ErrNotLoaded
	}

	ctx, cancelFunc := context.WithTimeout(ctx, timeoutStore)
	defer cancelFunc()

	rec, err := m.store.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("failed to open session: %w", err)
	}

	if !rec.ExpiresAt.IsZero() && !m.now().Before(rec.ExpiresAt) {
		slog.Debug("session token expired", "session", id)
		sess.set(rec)
		m.end(ctx, sess)
		return sess, nil
	}

	sess.set(rec)
	return sess, nil
}

// Token отдает токен сессии из контекста запроса.
func (m *Manager) Token(ctx context.Context) string {
	return FromContext(ctx).Token()
}

// Unauthorized вызывается клиентом на любой ответ 401: сессия удаляется из
// хранилища и очищается в контексте запроса.
func (m *Manager) Unauthorized(ctx context.Context) {
	sess := FromContext(ctx)
	if sess == nil || sess.ID() == "" {
		return
	}
	slog.Info("backend rejected session token, signing out", "session", sess.ID())
	m.end(ctx, sess)
}

// start создает и сохраняет новую сессию для ответа на вход.
func (m *Manager) start(ctx context.Context, sess *Session, resp *models.AuthResponse) error {
	if !m.Loaded() {
		return ErrNotLoaded
	}

	rec := &models.SessionRecord{
		ID:        uuid.NewString(),
		Token:     resp.AccessToken,
		User:      resp.User,
		ExpiresAt: tokenExpiry(resp.AccessToken),
		CreatedAt: m.now().UTC(),
	}

	if old := sess.ID(); old != "" {
		m.end(ctx, sess)
	}

	ctx, cancelFunc := context.WithTimeout(context.WithoutCancel(ctx), timeoutStore)
	defer cancelFunc()

	if err := m.store.SaveSession(ctx, rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	sess.set(rec)

	return nil
}

// end удаляет сессию из хранилища и очищает ее.
func (m *Manager) end(ctx context.Context, sess *Session) {
	id := sess.clear()
	if id == "" {
		return
	}

	ctx, cancelFunc := context.WithTimeout(context.WithoutCancel(ctx), timeoutStore)
	defer cancelFunc()

	if err := m.store.DeleteSession(ctx, id); err != nil {
		slog.Error("failed to delete session", "session", id, "err", err)
	}
	for _, fn := range m.onEnd {
		fn(id)
	}
}

// tokenExpiry читает exp из JWT без проверки подписи. Для токена не в формате JWT возвращает нулевое время.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
