package auth

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Ошибки валидации форм. Все они оборачивают ErrValidation.
var (
	ErrEmailRequired    = fmt.Errorf("%w, email is required", ErrValidation)
	ErrEmailInvalid     = fmt.Errorf("%w, invalid email", ErrValidation)
	ErrFullNameRequired = fmt.Errorf("%w, full name is required", ErrValidation)
	ErrPasswordShort    = fmt.Errorf("%w, password must have at least %d characters", ErrValidation, minPasswordLength)
	ErrPasswordRequired = fmt.Errorf("%w, password is required", ErrValidation)
	ErrRoleInvalid      = fmt.Errorf("%w, unknown role", ErrValidation)
)

// Registration содержит данные формы регистрации.
type Registration struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

// ParseRegistration валидирует форму регистрации и отдает нормализованные данные.
func ParseRegistration(r Registration) (Registration, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.Join(strings.Fields(r.FullName), " ")
	r.Role = models.Role(strings.ToLower(strings.TrimSpace(string(r.Role))))

	if r.Email == "" {
		return r, ErrEmailRequired
	}

	if _, err := mail.ParseAddress(r.Email); err != nil {
		return r, ErrEmailInvalid
	}

	if r.FullName == "" {
		return r, ErrFullNameRequired
	}

	if utf8.RuneCountInString(r.Password) < minPasswordLength {
		return r, ErrPasswordShort
	}

	if !r.Role.Valid() {
		return r, ErrRoleInvalid
	}

	return r, nil
}

// ParseCredentials валидирует форму входа.
func ParseCredentials(email, password string) (string, string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", ErrEmailRequired
	}

	if password == "" {
		return "", "", ErrPasswordRequired
	}

	return email, password, nil
}
