package authoring

import (
	"strings"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// minOptions — минимальное количество вариантов у вопроса с выбором.
const minOptions = 2

// Validate проверяет черновик перед сохранением и возвращает первую ошибку.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Code: CodeTitleRequired}
	}
	if d.DurationMinutes < 1 {
		return &ValidationError{Code: CodeDurationInvalid}
	}
	if len(d.Questions) == 0 {
		return &ValidationError{Code: CodeNoQuestions}
	}

	for i, q := range d.Questions {
		if code := q.validate(); code != "" {
			return &ValidationError{Question: i + 1, Code: code}
		}
	}

	return nil
}

func (q *DraftQuestion) validate() Code {
	if strings.TrimSpace(q.Text) == "" {
		return CodeTextRequired
	}
	if q.Points <= 0 {
		return CodePointsInvalid
	}
	if q.Type == models.QuestionText {
		return ""
	}

	if len(q.Options) < minOptions {
		return CodeTooFewOptions
	}

	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			return CodeEmptyOption
		}
		if _, ok := seen[text]; ok {
			return CodeDuplicateOption
		}
		seen[text] = struct{}{}
	}

	if len(q.CorrectValues()) == 0 {
		return CodeNoCorrect
	}

	return ""
}
