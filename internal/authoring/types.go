package authoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// API — методы бэкенда, которые нужны для сохранения теста.
type API interface {
	CreateTest(ctx context.Context, in models.TestInput) (*models.Test, error)
	UpdateTest(ctx context.Context, id int, in models.TestInput) (*models.Test, error)
	CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id int, in models.QuestionInput) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id int) error
}

// Ошибки редактора
var (
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrUnknownOption    = errors.New("unknown option")
	ErrUnknownType      = errors.New("unknown question type")
	ErrTextHasNoOptions = errors.New("text question has no options")
	ErrValidation       = errors.New("draft is invalid")
	ErrSaveFailed       = errors.New("save failed")
)

// Code — код ошибки проверки черновика. Текст для пользователя подбирает веб-слой.
type Code string

const (
	CodeTitleRequired   Code = "title_required"
	CodeDurationInvalid Code = "duration_invalid"
	CodeNoQuestions     Code = "no_questions"
	CodeTextRequired    Code = "question_text_required"
	CodePointsInvalid   Code = "points_invalid"
	CodeTooFewOptions   Code = "too_few_options"
	CodeEmptyOption     Code = "empty_option"
	CodeDuplicateOption Code = "duplicate_option"
	CodeNoCorrect       Code = "no_correct_answer"
)

// ValidationError описывает первую найденную ошибку черновика.
// Question — номер вопроса с единицы, ноль для полей теста.
type ValidationError struct {
	Question int
	Code     Code
}

func (e *ValidationError) Error() string {
	if e.Question == 0 {
		return fmt.Sprintf("invalid test: %s", e.Code)
	}
	return fmt.Sprintf("invalid question %d: %s", e.Question, e.Code)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
