package authoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Значения нового черновика
const (
	defaultDuration = 30
	defaultPoints   = 1
	seedOptions     = 2
)

// Option — вариант ответа со стабильным идентификатором.
// Правильность хранится по ID, поэтому правка текста ее не теряет.
type Option struct {
	ID   string
	Text string
}

// DraftQuestion — вопрос в редактируемом тесте.
// ID равен нулю, пока вопрос не сохранен на бэкенде.
type DraftQuestion struct {
	Key     string
	ID      int
	Text    string
	Type    models.QuestionType
	Options []Option
	Points  int
	correct map[string]struct{}
}

// Draft — тест в процессе создания или редактирования.
type Draft struct {
	TestID          int
	Title           string
	Description     string
	DurationMinutes int
	IsActive        bool
	Questions       []*DraftQuestion
	Removed         []int
}

// NewDraft создает пустой черновик теста.
func NewDraft() *Draft {
	return &Draft{
		DurationMinutes: defaultDuration,
		IsActive:        true,
	}
}

// FromTest создает черновик из сохраненного теста.
// Правильные ответы сопоставляются с вариантами по тексту.
func FromTest(test *models.Test) *Draft {
	d := &Draft{
		TestID:          test.ID,
		Title:           test.Title,
		Description:     test.Description,
		DurationMinutes: test.DurationMinutes,
		IsActive:        test.IsActive,
	}

	questions := make([]models.Question, len(test.Questions))
	copy(questions, test.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderNumber < questions[j].OrderNumber
	})

	for _, q := range questions {
		dq := &DraftQuestion{
			Key:     uuid.NewString(),
			ID:      q.ID,
			Text:    q.QuestionText,
			Type:    q.QuestionType,
			Points:  q.Points,
			correct: make(map[string]struct{}),
		}

		for _, text := range q.Options {
			dq.Options = append(dq.Options, Option{ID: uuid.NewString(), Text: text})
		}

		for _, value := range q.CorrectAnswers {
			for _, o := range dq.Options {
				if o.Text == value {
					dq.correct[o.ID] = struct{}{}
					break
				}
			}
		}

		d.Questions = append(d.Questions, dq)
	}

	return d
}

// AddQuestion добавляет в конец вопрос single с двумя пустыми вариантами.
func (d *Draft) AddQuestion() *DraftQuestion {
	q := &DraftQuestion{
		Key:     uuid.NewString(),
		Type:    models.QuestionSingle,
		Points:  defaultPoints,
		correct: make(map[string]struct{}),
	}
	q.seedOptions()

	d.Questions = append(d.Questions, q)

	return q
}

// Question возвращает вопрос по ключу.
func (d *Draft) Question(key string) (*DraftQuestion, error) {
	for _, q := range d.Questions {
		if q.Key == key {
			return q, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
}

// RemoveQuestion удаляет вопрос. Сохраненный вопрос запоминается для удаления на бэкенде.
func (d *Draft) RemoveQuestion(key string) error {
	for i, q := range d.Questions {
		if q.Key != key {
			continue
		}
		if q.ID != 0 {
			d.Removed = append(d.Removed, q.ID)
		}
		d.Questions = append(d.Questions[:i], d.Questions[i+1:]...)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
}

// OrderNumber возвращает номер вопроса в тесте, начиная с единицы.
func (d *Draft) OrderNumber(key string) int {
	for i, q := range d.Questions {
		if q.Key == key {
			return i + 1
		}
	}

	return 0
}

// SetType меняет тип вопроса.
// Для text варианты удаляются, при уходе с text создаются два пустых варианта.
// При переходе на single остается только первый правильный вариант.
func (q *DraftQuestion) SetType(t models.QuestionType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if t == q.Type {
		return nil
	}

	switch {
	case t == models.QuestionText:
		q.Options = nil
		q.correct = make(map[string]struct{})
	case q.Type == models.QuestionText:
		q.seedOptions()
	case t == models.QuestionSingle:
		first := ""
		for _, o := range q.Options {
			if q.IsCorrect(o.ID) {
				first = o.ID
				break
			}
		}
		q.correct = make(map[string]struct{})
		if first != "" {
			q.correct[first] = struct{}{}
		}
	}

	q.Type = t

	return nil
}

// SetPoints задает количество баллов за вопрос.
func (q *DraftQuestion) SetPoints(points int) {
	q.Points = points
}

// AddOption добавляет пустой вариант ответа.
func (q *DraftQuestion) AddOption() (Option, error) {
	if q.Type == models.QuestionText {
		return Option{}, ErrTextHasNoOptions
	}

	o := Option{ID: uuid.NewString()}
	q.Options = append(q.Options, o)

	return o, nil
}

// EditOption меняет текст варианта. Правильность варианта сохраняется.
func (q *DraftQuestion) EditOption(id, text string) error {
	for i := range q.Options {
		if q.Options[i].ID == id {
			q.Options[i].Text = text
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownOption, id)
}

// RemoveOption удаляет вариант вместе с его отметкой правильности.
func (q *DraftQuestion) RemoveOption(id string) error {
	for i := range q.Options {
		if q.Options[i].ID == id {
			q.Options = append(q.Options[:i], q.Options[i+1:]...)
			delete(q.correct, id)
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownOption, id)
}

// ToggleCorrect переключает правильность варианта.
// Для single выбранный вариант становится единственным правильным.
func (q *DraftQuestion) ToggleCorrect(id string) error {
	if !q.hasOption(id) {
		return fmt.Errorf("%w: %s", ErrUnknownOption, id)
	}

	if q.Type == models.QuestionSingle {
		q.correct = map[string]struct{}{id: {}}
		return nil
	}

	if _, ok := q.correct[id]; ok {
		delete(q.correct, id)
		return nil
	}
	if q.correct == nil {
		q.correct = make(map[string]struct{})
	}
	q.correct[id] = struct{}{}

	return nil
}

// SetCorrect заменяет набор правильных вариантов.
// Для single учитывается только первый ID.
func (q *DraftQuestion) SetCorrect(ids ...string) error {
	correct := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if !q.hasOption(id) {
			return fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
		correct[id] = struct{}{}
		if q.Type == models.QuestionSingle {
			break
		}
	}
	q.correct = correct

	return nil
}

// IsCorrect сообщает, отмечен ли вариант правильным.
func (q *DraftQuestion) IsCorrect(id string) bool {
	_, ok := q.correct[id]
	return ok
}

// CorrectValues возвращает тексты правильных вариантов в порядке вариантов.
func (q *DraftQuestion) CorrectValues() []string {
	values := make([]string, 0, len(q.correct))
	for _, o := range q.Options {
		if q.IsCorrect(o.ID) {
			values = append(values, o.Text)
		}
	}

	return values
}

// Choice сообщает, что у вопроса есть варианты ответа.
func (q *DraftQuestion) Choice() bool {
	return q.Type != models.QuestionText
}

func (q *DraftQuestion) hasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}

	return false
}

func (q *DraftQuestion) seedOptions() {
	q.Options = make([]Option, 0, seedOptions)
	for i := 0; i < seedOptions; i++ {
		q.Options = append(q.Options, Option{ID: uuid.NewString()})
	}
	q.correct = make(map[string]struct{})
}

// TestInput возвращает тело запроса создания или изменения теста.
func (d *Draft) TestInput() models.TestInput {
	return models.TestInput{
		Title:           strings.TrimSpace(d.Title),
		Description:     strings.TrimSpace(d.Description),
		DurationMinutes: d.DurationMinutes,
		IsActive:        d.IsActive,
	}
}

// QuestionInputs возвращает тела запросов вопросов.
// Номера идут подряд с единицы, правильные ответы передаются текстом.
func (d *Draft) QuestionInputs() []models.QuestionInput {
	inputs := make([]models.QuestionInput, 0, len(d.Questions))
	for i, q := range d.Questions {
		options := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, strings.TrimSpace(o.Text))
		}

		correct := q.CorrectValues()
		for j := range correct {
			correct[j] = strings.TrimSpace(correct[j])
		}

		inputs = append(inputs, models.QuestionInput{
			TestID:         d.TestID,
			QuestionText:   strings.TrimSpace(q.Text),
			QuestionType:   q.Type,
			Options:        options,
			CorrectAnswers: correct,
			Points:         q.Points,
			OrderNumber:    i + 1,
		})
	}

	return inputs
}
