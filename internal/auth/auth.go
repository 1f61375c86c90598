package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Auth реализует операции входа, регистрации и выхода поверх Manager.
type Auth struct {
	manager *Manager
	api     API
}

// NewAuth создаёт Auth.
func NewAuth(m *Manager, api API) *Auth {
	return &Auth{
		manager: m,
		api:     api,
	}
}

// Manager возвращает менеджер сессий.
func (a *Auth) Manager() *Manager {
	return a.manager
}

// Login выполняет вход и сохраняет токен и пользователя в сессии из ctx.
// Отказ бэкенда со статусом 4xx оборачивается в ErrInvalidCredentials и сохраняет его текст.
func (a *Auth) Login(ctx context.Context, email, password string) (*models.User, error) {
	email, password, err := ParseCredentials(email, password)
	if err != nil {
		return nil, err
	}

	sess := FromContext(ctx)
	if sess == nil {
		return nil, errors.New("no session in context")
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		if rejected(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if err = a.manager.start(ctx, sess, resp); err != nil {
		return nil, err
	}
	slog.Info("user signed in", "user_id", resp.User.ID, "role", resp.User.Role)

	return sess.User(), nil
}

// Register создает учетную запись и возвращает созданного пользователя.
// После успешной регистрации выполняется вход с теми же данными.
func (a *Auth) Register(ctx context.Context, r Registration) (*models.User, error) {
	r, err := ParseRegistration(r)
	if err != nil {
		return nil, err
	}

	user, err := a.api.Register(ctx, r.Email, r.Password, r.FullName, r.Role)
	if err != nil {
		if rejected(err) {
			return nil, fmt.Errorf("%w: %w", ErrRegistration, err)
		}
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID, "role", user.Role)

	if _, err = a.Login(ctx, r.Email, r.Password); err != nil {
		return user, err
	}

	return user, nil
}

// Logout очищает сессию из ctx. Дальнейшие запросы идут без токена.
func (a *Auth) Logout(ctx context.Context) {
	sess := FromContext(ctx)
	if sess == nil {
		return
	}
	a.manager.end(ctx, sess)
}

// rejected сообщает, что бэкенд отклонил данные запроса.
func rejected(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError
}
