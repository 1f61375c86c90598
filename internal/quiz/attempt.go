package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Attempt — одна попытка прохождения теста студентом.
// Ответы хранятся по ID вопроса как список строк: для single и text
// в списке один элемент, для multiple любое количество.
type Attempt struct {
	test      models.Test
	questions []models.Question
	byID      map[int]models.Question

	index         int
	answers       models.Answers
	total         int
	remaining     int
	status        Status
	result        *models.TestResult
	lastErr       error
	autoSubmitted bool
	left          bool

	submit    SubmitFunc
	newTicker TickerFactory
	baseCtx   context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	mu sync.Mutex
}

// newAttempt создает попытку и запускает обратный отсчет.
// ctx используется для автоотправки и должен нести сессию пользователя.
func newAttempt(ctx context.Context, test *models.Test, submit SubmitFunc, newTicker TickerFactory) (*Attempt, error) {
	if len(test.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	questions := make([]models.Question, len(test.Questions))
	copy(questions, test.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderNumber < questions[j].OrderNumber
	})

	byID := make(map[int]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	total := test.DurationMinutes * 60

	a := &Attempt{
		test:      *test,
		questions: questions,
		byID:      byID,
		answers:   make(models.Answers),
		total:     total,
		remaining: total,
		status:    StatusActive,
		submit:    submit,
		newTicker: newTicker,
		baseCtx:   context.WithoutCancel(ctx),
	}

	a.mu.Lock()
	a.startCountdown()
	a.mu.Unlock()

	return a, nil
}

// TestID возвращает ID теста попытки.
func (a *Attempt) TestID() int {
	return a.test.ID
}

// Status возвращает текущее состояние попытки.
func (a *Attempt) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.status
}

// Remaining возвращает оставшееся время в секундах.
func (a *Attempt) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.remaining
}

// Result возвращает результат, если попытка отправлена.
func (a *Attempt) Result() *models.TestResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.result
}

// Answers возвращает копию текущих ответов.
func (a *Attempt) Answers() models.Answers {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.snapshotAnswers()
}

// View возвращает снимок попытки для отрисовки.
func (a *Attempt) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	q := a.questions[a.index]
	selected := append([]string(nil), a.answers[q.ID]...)

	return View{
		TestID:        a.test.ID,
		TestTitle:     a.test.Title,
		Index:         a.index,
		Total:         len(a.questions),
		Question:      q,
		Selected:      selected,
		Remaining:     a.remaining,
		Status:        a.status,
		Answered:      a.answeredCount(),
		AutoSubmitted: a.autoSubmitted,
		LastErr:       a.lastErr,
		Result:        a.result,
	}
}

// Summary возвращает количество вопросов с ответом и общее количество вопросов.
func (a *Attempt) Summary() (answered, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.answeredCount(), len(a.questions)
}

// Choose записывает единственный выбранный вариант вопроса single.
func (a *Attempt) Choose(questionID int, option string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.answerable(questionID, models.QuestionSingle)
	if err != nil {
		return err
	}
	if !hasOption(q, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	a.answers[questionID] = []string{option}

	return nil
}

// Toggle добавляет или убирает вариант вопроса multiple.
// Повторная отметка уже выбранного варианта ничего не меняет.
func (a *Attempt) Toggle(questionID int, option string, checked bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.answerable(questionID, models.QuestionMultiple)
	if err != nil {
		return err
	}
	if !hasOption(q, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	current := a.answers[questionID]
	if checked {
		for _, s := range current {
			if s == option {
				return nil
			}
		}
		a.answers[questionID] = append(current, option)
		return nil
	}

	kept := make([]string, 0, len(current))
	for _, s := range current {
		if s != option {
			kept = append(kept, s)
		}
	}
	a.answers[questionID] = kept

	return nil
}

// Select заменяет весь набор отмеченных вариантов вопроса multiple.
// Используется при отправке формы, в которой приходят все отмеченные флажки.
func (a *Attempt) Select(questionID int, options []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, err := a.answerable(questionID, models.QuestionMultiple)
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		if !hasOption(q, option) {
			return fmt.Errorf("%w: %q", ErrUnknownOption, option)
		}
		if _, ok := seen[option]; ok {
			continue
		}
		seen[option] = struct{}{}
		kept = append(kept, option)
	}
	a.answers[questionID] = kept

	return nil
}

// Write записывает свободный ответ на вопрос text.
func (a *Attempt) Write(questionID int, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.answerable(questionID, models.QuestionText); err != nil {
		return err
	}

	a.answers[questionID] = []string{text}

	return nil
}

// Next переходит к следующему вопросу. На последнем вопросе ничего не делает.
func (a *Attempt) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index < len(a.questions)-1 {
		a.index++
	}

	return a.index
}

// Prev переходит к предыдущему вопросу. На первом вопросе ничего не делает.
func (a *Attempt) Prev() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index > 0 {
		a.index--
	}

	return a.index
}

// Submit отправляет ответы вручную. Обратный отсчет останавливается до запроса.
// При ошибке попытка снова становится активной и отсчет продолжается.
func (a *Attempt) Submit(ctx context.Context) (*models.TestResult, error) {
	a.stopCountdown()

	result, err := a.send(ctx, false)
	if err != nil {
		a.mu.Lock()
		if a.status == StatusActive && a.remaining > 0 && a.cancel == nil {
			a.startCountdown()
		}
		a.mu.Unlock()
		return nil, err
	}

	return result, nil
}

// Cancel останавливает отсчет без отправки.
// Уже начатая автоотправка завершается.
func (a *Attempt) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.left = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.status == StatusActive {
		a.status = StatusCancelled
	}
}

// Wait ждет завершения горутины обратного отсчета.
func (a *Attempt) Wait() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

// startCountdown запускает горутину отсчета. Вызывается под a.mu.
func (a *Attempt) startCountdown() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	tick, stop := a.newTicker(time.Second)

	a.cancel = cancel
	a.done = done

	go a.countdown(ctx, tick, stop, done)
}

// stopCountdown останавливает отсчет и ждет его горутину.
// Если автоотправка уже идет, ждет ее завершения.
func (a *Attempt) stopCountdown() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (a *Attempt) countdown(ctx context.Context, tick <-chan time.Time, stop func(), done chan struct{}) {
	defer close(done)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			if !a.tick() {
				continue
			}
			slog.Debug("time is up, submitting attempt", "test_id", a.test.ID)
			if _, err := a.send(a.baseCtx, true); err != nil {
				slog.Warn("auto submit failed", "test_id", a.test.ID, "err", err)
			}
			return
		}
	}
}

// tick уменьшает оставшееся время. Возвращает true, когда время вышло.
func (a *Attempt) tick() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != StatusActive {
		return false
	}
	if a.remaining > 0 {
		a.remaining--
	}

	return a.remaining == 0
}

// send выполняет отправку ответов. Одновременно идет не больше одной отправки.
func (a *Attempt) send(ctx context.Context, auto bool) (*models.TestResult, error) {
	a.mu.Lock()
	switch a.status {
	case StatusSubmitted:
		a.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case StatusSubmitting:
		a.mu.Unlock()
		return nil, ErrSubmitting
	case StatusCancelled:
		a.mu.Unlock()
		return nil, ErrNotActive
	}

	a.status = StatusSubmitting
	a.lastErr = nil
	minutes := a.spentMinutes()
	req := models.SubmitRequest{
		TestID:           a.test.ID,
		Answers:          a.snapshotAnswers(),
		TimeSpentMinutes: &minutes,
	}
	a.mu.Unlock()

	result, err := a.submit(ctx, req)

	a.mu.Lock()
	if err != nil {
		a.status = StatusActive
		if a.left {
			a.status = StatusCancelled
		}
		a.lastErr = err
		a.mu.Unlock()
		return nil, err
	}

	a.status = StatusSubmitted
	a.result = result
	a.autoSubmitted = auto
	a.mu.Unlock()

	slog.Info("attempt submitted", "test_id", a.test.ID, "auto", auto, "time_spent_minutes", minutes)

	return result, nil
}

// answerable проверяет, что на вопрос можно ответить. Вызывается под a.mu.
func (a *Attempt) answerable(questionID int, qtype models.QuestionType) (models.Question, error) {
	if a.status != StatusActive {
		return models.Question{}, ErrNotActive
	}

	q, ok := a.byID[questionID]
	if !ok {
		return models.Question{}, fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if q.QuestionType != qtype {
		return models.Question{}, fmt.Errorf("%w: question %d is %s", ErrWrongType, questionID, q.QuestionType)
	}

	return q, nil
}

func (a *Attempt) answeredCount() int {
	count := 0
	for _, q := range a.questions {
		for _, s := range a.answers[q.ID] {
			if s != "" {
				count++
				break
			}
		}
	}

	return count
}

func (a *Attempt) snapshotAnswers() models.Answers {
	out := make(models.Answers, len(a.answers))
	for id, values := range a.answers {
		out[id] = append([]string{}, values...)
	}

	return out
}

// spentMinutes округляет прошедшее время вверх до минут.
func (a *Attempt) spentMinutes() int {
	elapsed := a.total - a.remaining
	if elapsed <= 0 {
		return 0
	}

	return (elapsed + 59) / 60
}

func hasOption(q models.Question, option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}

	return false
}

// FormatClock форматирует секунды как м:сс.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
