package auth

import (
	"context"
	"errors"
	"time"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// API определяет часть клиента бэкенда, нужную для авторизации.
type API interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, email, password, fullName string, role models.Role) (*models.User, error)
}

// Ошибки авторизации
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistration       = errors.New("registration failed")
	ErrNotLoaded          = errors.New("session storage is not loaded yet")
)

// Минимальная длина пароля
const minPasswordLength = 6

// Таймаут операций с хранилищем сессий
const timeoutStore = 2 * time.Second
