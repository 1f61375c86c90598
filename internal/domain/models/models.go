package models

import (
	"time"
)

// Файл с моделями, которые отдает и принимает REST бэкенд.
// Клиент API заполняет их из JSON, обработчики страниц только читают.

// Role определяет роль пользователя. Роль задается при регистрации и не меняется.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// QuestionType определяет тип вопроса.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionText     QuestionType = "text"
)

// Valid сообщает, является ли тип одним из известных.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionText:
		return true
	}
	return false
}

// User определяет модель пользователя
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// AuthResponse — ответ бэкенда на вход в систему.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Test определяет модель теста с упорядоченными вопросами.
type Test struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes"`
	IsActive        bool       `json:"is_active"`
	CreatorID       int        `json:"creator_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	QuestionCount   int        `json:"question_count,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
}

// TestInput — тело запросов создания и изменения теста.
type TestInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	IsActive        bool   `json:"is_active"`
}

// Question определяет модель вопроса. Для типа text списки Options и CorrectAnswers пусты.
type Question struct {
	ID             int          `json:"id"`
	TestID         int          `json:"test_id"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []string     `json:"options"`
	CorrectAnswers []string     `json:"correct_answers"`
	Points         int          `json:"points"`
	OrderNumber    int          `json:"order_number"`
}

// QuestionInput — тело запросов создания и изменения вопроса.
// TestID передается только при создании.
type QuestionInput struct {
	TestID         int          `json:"test_id,omitempty"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []string     `json:"options"`
	CorrectAnswers []string     `json:"correct_answers"`
	Points         int          `json:"points"`
	OrderNumber    int          `json:"order_number"`
}

// Answers — ответы по идентификатору вопроса.
type Answers map[int][]string

// SubmitRequest — тело запроса отправки теста.
type SubmitRequest struct {
	TestID           int     `json:"test_id"`
	Answers          Answers `json:"answers"`
	TimeSpentMinutes *int    `json:"time_spent_minutes,omitempty"`
}

// TestResult определяет модель результата одной попытки.
type TestResult struct {
	ID               int       `json:"id"`
	TestID           int       `json:"test_id"`
	UserID           int       `json:"user_id"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	Percentage       float64   `json:"percentage"`
	Passed           bool      `json:"passed"`
	Answers          Answers   `json:"answers"`
	TimeSpentMinutes *int      `json:"time_spent_minutes"`
	CompletedAt      time.Time `json:"completed_at"`
	TestTitle        string    `json:"test_title,omitempty"`
	UserName         string    `json:"user_name,omitempty"`
}

// QuestionResultDetail — разбор одного вопроса в результате.
// IsCorrect равен nil, пока текстовый ответ ждет ручной проверки.
type QuestionResultDetail struct {
	QuestionID      int          `json:"question_id"`
	QuestionText    string       `json:"question_text"`
	QuestionType    QuestionType `json:"question_type"`
	Options         []string     `json:"options"`
	CorrectAnswers  []string     `json:"correct_answers"`
	SelectedAnswers []string     `json:"selected_answers"`
	IsCorrect       *bool        `json:"is_correct"`
	Points          int          `json:"points"`
	EarnedPoints    int          `json:"earned_points"`
}

// Pending сообщает, что ответ ждет ручной проверки.
func (d QuestionResultDetail) Pending() bool {
	return d.QuestionType == QuestionText || d.IsCorrect == nil
}

// TestResultDetail — результат с разбором по вопросам.
type TestResultDetail struct {
	TestResult
	Questions []QuestionResultDetail `json:"questions"`
}

// Statistics — агрегаты по всем результатам одного теста.
type Statistics struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PassRate      float64 `json:"pass_rate"`
	MinScore      float64 `json:"min_score"`
	MaxScore      float64 `json:"max_score"`
}

// SessionRecord определяет модель для хранилища сессий:
// токен доступа и пользователь, привязанные к cookie браузера.
type SessionRecord struct {
	ID        string
	Token     string
	User      User
	ExpiresAt time.Time
	CreatedAt time.Time
}
