package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// SubmitFunc отправляет ответы на бэкенд.
type SubmitFunc func(ctx context.Context, req models.SubmitRequest) (*models.TestResult, error)

// TickerFactory создает источник тиков с периодом d и функцию его остановки.
type TickerFactory func(d time.Duration) (<-chan time.Time, func())

// Status — состояние попытки.
type Status string

const (
	StatusActive     Status = "active"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
	StatusCancelled  Status = "cancelled"
)

// Пороги оставшегося времени в секундах
const (
	// LowTimeThreshold — ниже него показывается предупреждение.
	LowTimeThreshold = 120
	// CriticalTimeThreshold — ниже него таймер подсвечивается.
	CriticalTimeThreshold = 60
)

// Ошибки попытки
var (
	ErrNoQuestions      = errors.New("test has no questions")
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrUnknownOption    = errors.New("unknown option")
	ErrWrongType        = errors.New("answer does not match question type")
	ErrNotActive        = errors.New("attempt is not active")
	ErrSubmitting       = errors.New("submission is already in flight")
	ErrAlreadySubmitted = errors.New("attempt is already submitted")
)

// View — снимок попытки для отрисовки страницы.
type View struct {
	TestID        int
	TestTitle     string
	Index         int
	Total         int
	Question      models.Question
	Selected      []string
	Remaining     int
	Status        Status
	Answered      int
	AutoSubmitted bool
	LastErr       error
	Result        *models.TestResult
}

// First сообщает, что текущий вопрос первый.
func (v View) First() bool {
	return v.Index == 0
}

// Last сообщает, что текущий вопрос последний.
func (v View) Last() bool {
	return v.Index == v.Total-1
}

// Number возвращает номер текущего вопроса, начиная с единицы.
func (v View) Number() int {
	return v.Index + 1
}

// LowTime сообщает, что времени осталось мало. На отправку не влияет.
func (v View) LowTime() bool {
	return v.Remaining < LowTimeThreshold
}

// Critical сообщает, что времени осталось критически мало.
func (v View) Critical() bool {
	return v.Remaining < CriticalTimeThreshold
}

// Progress возвращает процент пройденных вопросов.
func (v View) Progress() int {
	if v.Total == 0 {
		return 0
	}
	return v.Number() * 100 / v.Total
}

// Clock форматирует оставшееся время как м:сс.
func (v View) Clock() string {
	return FormatClock(v.Remaining)
}

// IsSelected сообщает, выбран ли вариант option.
func (v View) IsSelected(option string) bool {
	for _, s := range v.Selected {
		if s == option {
			return true
		}
	}
	return false
}

// Text возвращает текстовый ответ на текущий вопрос.
func (v View) Text() string {
	if len(v.Selected) == 0 {
		return ""
	}
	return v.Selected[0]
}
