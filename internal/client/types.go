package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Client определяет интерфейс клиента REST бэкенда.
// Каждый метод соответствует одному эндпоинту и выполняет ровно один запрос.
type Client interface {
	// Login выполняет вход по email и паролю.
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)

	// Register создает учетную запись.
	Register(ctx context.Context, email, password, fullName string, role models.Role) (*models.User, error)

	// Me возвращает текущего пользователя.
	Me(ctx context.Context) (*models.User, error)

	// ListTests возвращает тесты, при activeOnly только активные.
	ListTests(ctx context.Context, activeOnly bool) ([]models.Test, error)

	// MyTests возвращает тесты текущего преподавателя.
	MyTests(ctx context.Context) ([]models.Test, error)

	// GetTest возвращает тест с вопросами.
	GetTest(ctx context.Context, id int) (*models.Test, error)

	// CreateTest создает тест.
	CreateTest(ctx context.Context, in models.TestInput) (*models.Test, error)

	// UpdateTest изменяет тест.
	UpdateTest(ctx context.Context, id int, in models.TestInput) (*models.Test, error)

	// DeleteTest удаляет тест.
	DeleteTest(ctx context.Context, id int) error

	// CreateQuestion создает вопрос.
	CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error)

	// UpdateQuestion изменяет вопрос.
	UpdateQuestion(ctx context.Context, id int, in models.QuestionInput) (*models.Question, error)

	// DeleteQuestion удаляет вопрос.
	DeleteQuestion(ctx context.Context, id int) error

	// SubmitTest отправляет ответы на проверку.
	SubmitTest(ctx context.Context, req models.SubmitRequest) (*models.TestResult, error)

	// MyResults возвращает результаты текущего студента.
	MyResults(ctx context.Context) ([]models.TestResult, error)

	// TestResults возвращает все результаты теста.
	TestResults(ctx context.Context, testID int) ([]models.TestResult, error)

	// TestStatistics возвращает статистику теста.
	TestStatistics(ctx context.Context, testID int) (*models.Statistics, error)

	// ResultDetail возвращает результат с разбором по вопросам.
	ResultDetail(ctx context.Context, resultID int) (*models.TestResultDetail, error)
}

// Hooks регистрируется один раз при создании клиента.
// Token отдает токен для запроса, Unauthorized вызывается на любой ответ 401.
type Hooks interface {
	Token(ctx context.Context) string
	Unauthorized(ctx context.Context)
}

// Ошибки клиента
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("backend unreachable")
)

// APIError — ответ бэкенда со статусом не из 2xx.
// Detail содержит текст ошибки бэкенда без изменений, если он был.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("client api error: status %d", e.Status)
	}
	return fmt.Sprintf("client api error: status %d: %s", e.Status, e.Detail)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized).
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Detail возвращает текст ошибки бэкенда из err, если он есть.
func Detail(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

// Option настраивает HTTPClient.
type Option func(c *HTTPClient)

// WithHooks задает источник токена и обработчик 401.
func WithHooks(h Hooks) Option {
	return func(c *HTTPClient) {
		c.hooks = h
	}
}

// WithTimeout задает таймаут одного запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit ограничивает частоту исходящих запросов. rps <= 0 отключает ограничение.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient подменяет http.Client (используется в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// Таймауты
const (
	defaultTimeout = 10 * time.Second
)

type noHooks struct{}

func (noHooks) Token(context.Context) string { return "" }
func (noHooks) Unauthorized(context.Context) {}
