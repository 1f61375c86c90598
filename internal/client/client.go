package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// HTTPClient реализует Client через REST API бэкенда.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	hooks      Hooks
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewHTTPClient создаёт клиента бэкенда по базовому адресу API (например, http://localhost:8000/api).
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		hooks:      noHooks{},
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hooks == nil {
		c.hooks = noHooks{}
	}

	return c
}

// Login выполняет вход. Возвращает токен и пользователя в случае успеха.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	params := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var resp models.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", nil, params, &resp, false); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Register создает учетную запись. Возвращает созданного пользователя.
func (c *HTTPClient) Register(
	ctx context.Context,
	email, password, fullName string,
	role models.Role,
) (*models.User, error) {
	params := map[string]interface{}{
		"email":     email,
		"password":  password,
		"full_name": fullName,
		"role":      role,
	}

	var user models.User
	if err := c.send(ctx, http.MethodPost, "/auth/register", nil, params, &user, false); err != nil {
		return nil, err
	}

	return &user, nil
}

// Me возвращает текущего пользователя по токену.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// ListTests возвращает список тестов.
func (c *HTTPClient) ListTests(ctx context.Context, activeOnly bool) ([]models.Test, error) {
	query := url.Values{"active_only": {strconv.FormatBool(activeOnly)}}

	var tests []models.Test
	if err := c.doRequest(ctx, http.MethodGet, "/tests", query, nil, &tests); err != nil {
		return nil, err
	}

	return tests, nil
}

// MyTests возвращает тесты текущего преподавателя.
func (c *HTTPClient) MyTests(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	if err := c.doRequest(ctx, http.MethodGet, "/tests/my", nil, nil, &tests); err != nil {
		return nil, err
	}

	return tests, nil
}

// GetTest возвращает тест с вопросами.
func (c *HTTPClient) GetTest(ctx context.Context, id int) (*models.Test, error) {
	var test models.Test
	if err := c.doRequest(ctx, http.MethodGet, "/tests/"+strconv.Itoa(id), nil, nil, &test); err != nil {
		return nil, err
	}

	return &test, nil
}

// CreateTest создает тест без вопросов.
func (c *HTTPClient) CreateTest(ctx context.Context, in models.TestInput) (*models.Test, error) {
	var test models.Test
	if err := c.doRequest(ctx, http.MethodPost, "/tests", nil, in, &test); err != nil {
		return nil, err
	}

	return &test, nil
}

// UpdateTest изменяет поля теста.
func (c *HTTPClient) UpdateTest(ctx context.Context, id int, in models.TestInput) (*models.Test, error) {
	var test models.Test
	if err := c.doRequest(ctx, http.MethodPut, "/tests/"+strconv.Itoa(id), nil, in, &test); err != nil {
		return nil, err
	}

	return &test, nil
}

// DeleteTest удаляет тест вместе с вопросами.
func (c *HTTPClient) DeleteTest(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, "/tests/"+strconv.Itoa(id), nil, nil, nil)
}

// CreateQuestion создает вопрос в тесте in.TestID.
func (c *HTTPClient) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error) {
	var question models.Question
	if err := c.doRequest(ctx, http.MethodPost, "/questions", nil, in, &question); err != nil {
		return nil, err
	}

	return &question, nil
}

// UpdateQuestion изменяет вопрос.
func (c *HTTPClient) UpdateQuestion(ctx context.Context, id int, in models.QuestionInput) (*models.Question, error) {
	in.TestID = 0

	var question models.Question
	if err := c.doRequest(ctx, http.MethodPut, "/questions/"+strconv.Itoa(id), nil, in, &question); err != nil {
		return nil, err
	}

	return &question, nil
}

// DeleteQuestion удаляет вопрос.
func (c *HTTPClient) DeleteQuestion(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, "/questions/"+strconv.Itoa(id), nil, nil, nil)
}

// SubmitTest отправляет ответы. Возвращает созданный результат.
func (c *HTTPClient) SubmitTest(ctx context.Context, req models.SubmitRequest) (*models.TestResult, error) {
	if req.Answers == nil {
		req.Answers = models.Answers{}
	}

	var result models.TestResult
	if err := c.doRequest(ctx, http.MethodPost, "/results/submit", nil, req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// MyResults возвращает результаты текущего студента.
func (c *HTTPClient) MyResults(ctx context.Context) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := c.doRequest(ctx, http.MethodGet, "/results/my", nil, nil, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// TestResults возвращает все результаты теста.
func (c *HTTPClient) TestResults(ctx context.Context, testID int) ([]models.TestResult, error) {
	var results []models.TestResult
	path := "/results/test/" + strconv.Itoa(testID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// TestStatistics возвращает статистику теста.
func (c *HTTPClient) TestStatistics(ctx context.Context, testID int) (*models.Statistics, error) {
	var stats models.Statistics
	path := "/results/statistics/" + strconv.Itoa(testID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// ResultDetail возвращает результат с разбором по вопросам.
func (c *HTTPClient) ResultDetail(ctx context.Context, resultID int) (*models.TestResultDetail, error) {
	var detail models.TestResultDetail
	if err := c.doRequest(ctx, http.MethodGet, "/results/"+strconv.Itoa(resultID), nil, nil, &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}

// doRequest выполняет запрос к бэкенду от имени сессии и декодирует тело ответа в out.
// Ответ 401 передается в hooks.Unauthorized до возврата ошибки.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	params interface{},
	out interface{},
) error {
	return c.send(ctx, method, path, query, params, out, true)
}

// send выполняет запрос. Без signed токен не передается и hooks.Unauthorized не вызывается.
func (c *HTTPClient) send(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	params interface{},
	out interface{},
	signed bool,
) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	ctx, cancelFunc := context.WithTimeout(ctx, c.timeout)
	defer cancelFunc()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	if params != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if signed {
		if token := c.hooks.Token(ctx); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: parseDetail(data)}
		if signed && resp.StatusCode == http.StatusUnauthorized {
			slog.Debug("backend rejected token", "method", method, "path", path)
			c.hooks.Unauthorized(ctx)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}

	return nil
}

// parseDetail достает текст ошибки из тела ответа.
// Поле detail бывает строкой или списком ошибок валидации с полем msg.
func parseDetail(data []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
