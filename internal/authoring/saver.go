package authoring

import (
	"context"
	"fmt"
	"log/slog"
)

// StepKind — вид шага сохранения.
type StepKind string

const (
	StepCreateTest     StepKind = "create_test"
	StepUpdateTest     StepKind = "update_test"
	StepCreateQuestion StepKind = "create_question"
	StepUpdateQuestion StepKind = "update_question"
	StepDeleteQuestion StepKind = "delete_question"
)

// StepStatus — исход шага сохранения.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// Step — один запрос к бэкенду при сохранении.
// Question — номер вопроса в черновике, для удаления и шагов теста ноль.
type Step struct {
	Kind       StepKind
	Question   int
	QuestionID int
	Status     StepStatus
	Err        error
}

// Report перечисляет шаги сохранения с их исходами.
type Report struct {
	TestID int
	Steps  []Step
}

// OK сообщает, что все шаги выполнены.
func (r *Report) OK() bool {
	for _, s := range r.Steps {
		if s.Status != StepDone {
			return false
		}
	}

	return true
}

// Done возвращает выполненные шаги.
func (r *Report) Done() []Step {
	return r.filter(StepDone)
}

// Skipped возвращает шаги, до которых сохранение не дошло.
func (r *Report) Skipped() []Step {
	return r.filter(StepSkipped)
}

// Failed возвращает шаг, на котором сохранение остановилось.
func (r *Report) Failed() (Step, bool) {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s, true
		}
	}

	return Step{}, false
}

func (r *Report) filter(status StepStatus) []Step {
	var steps []Step
	for _, s := range r.Steps {
		if s.Status == status {
			steps = append(steps, s)
		}
	}

	return steps
}

// Saver сохраняет черновик последовательностью запросов.
// Сохранение не транзакционно: при ошибке выполненные шаги не откатываются.
type Saver struct {
	api API
}

// NewSaver создает Saver поверх API бэкенда.
func NewSaver(api API) *Saver {
	return &Saver{api: api}
}

// Save проверяет черновик и сохраняет его: сначала тест, затем вопросы по порядку,
// затем удаления. Останавливается на первой ошибке.
// ID созданных записей записываются в черновик, поэтому повторное сохранение
// изменяет их, а не создает заново.
func (s *Saver) Save(ctx context.Context, d *Draft) (*Report, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Steps: plan(d)}

	for i := range report.Steps {
		step := &report.Steps[i]

		if err := s.run(ctx, d, step); err != nil {
			step.Status = StepFailed
			step.Err = err
			report.TestID = d.TestID

			slog.Warn("test save stopped",
				"test_id", d.TestID,
				"step", step.Kind,
				"question", step.Question,
				"done", i,
				"err", err,
			)

			return report, fmt.Errorf("%w: %s: %w", ErrSaveFailed, step.Kind, err)
		}

		step.Status = StepDone
	}

	d.Removed = nil
	report.TestID = d.TestID

	slog.Info("test saved", "test_id", d.TestID, "steps", len(report.Steps))

	return report, nil
}

func plan(d *Draft) []Step {
	steps := make([]Step, 0, 1+len(d.Questions)+len(d.Removed))

	if d.TestID == 0 {
		steps = append(steps, Step{Kind: StepCreateTest, Status: StepSkipped})
	} else {
		steps = append(steps, Step{Kind: StepUpdateTest, Status: StepSkipped})
	}

	for i, q := range d.Questions {
		kind := StepUpdateQuestion
		if q.ID == 0 {
			kind = StepCreateQuestion
		}
		steps = append(steps, Step{Kind: kind, Question: i + 1, QuestionID: q.ID, Status: StepSkipped})
	}

	for _, id := range d.Removed {
		steps = append(steps, Step{Kind: StepDeleteQuestion, QuestionID: id, Status: StepSkipped})
	}

	return steps
}

func (s *Saver) run(ctx context.Context, d *Draft, step *Step) error {
	switch step.Kind {
	case StepCreateTest:
		test, err := s.api.CreateTest(ctx, d.TestInput())
		if err != nil {
			return err
		}
		d.TestID = test.ID
		return nil

	case StepUpdateTest:
		_, err := s.api.UpdateTest(ctx, d.TestID, d.TestInput())
		return err

	case StepCreateQuestion, StepUpdateQuestion:
		q := d.Questions[step.Question-1]
		in := d.QuestionInputs()[step.Question-1]
		in.TestID = d.TestID

		if step.Kind == StepUpdateQuestion {
			_, err := s.api.UpdateQuestion(ctx, q.ID, in)
			return err
		}

		created, err := s.api.CreateQuestion(ctx, in)
		if err != nil {
			return err
		}
		q.ID = created.ID
		step.QuestionID = created.ID
		return nil

	case StepDeleteQuestion:
		if err := s.api.DeleteQuestion(ctx, step.QuestionID); err != nil {
			return err
		}
		d.Removed = removeID(d.Removed, step.QuestionID)
		return nil
	}

	return fmt.Errorf("unknown step %q", step.Kind)
}

func removeID(ids []int, id int) []int {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}

	return kept
}
