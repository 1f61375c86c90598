package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// manualClock отдает тики только по команде теста.
type manualClock struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (c *manualClock) factory(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)

	c.mu.Lock()
	c.chans = append(c.chans, ch)
	c.mu.Unlock()

	return ch, func() {}
}

// advance отправляет n тиков в последний запущенный отсчет.
func (c *manualClock) advance(t *testing.T, n int) {
	t.Helper()

	c.mu.Lock()
	require.NotEmpty(t, c.chans)
	ch := c.chans[len(c.chans)-1]
	c.mu.Unlock()

	for i := 0; i < n; i++ {
		select {
		case ch <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("countdown stopped after %d ticks", i)
		}
	}
}

func (c *manualClock) started() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.chans)
}

// recorder запоминает отправленные запросы.
type recorder struct {
	mu       sync.Mutex
	requests []models.SubmitRequest
	fail     error
	sent     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{sent: make(chan struct{}, 10)}
}

func (r *recorder) submit(_ context.Context, req models.SubmitRequest) (*models.TestResult, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	id := len(r.requests)
	fail := r.fail
	r.mu.Unlock()

	defer func() { r.sent <- struct{}{} }()

	if fail != nil {
		return nil, fail
	}

	return &models.TestResult{ID: id, TestID: req.TestID, Score: 1, MaxScore: 2}, nil
}

func (r *recorder) setFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

func (r *recorder) last() models.SubmitRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.requests[len(r.requests)-1]
}

func (r *recorder) waitSent(t *testing.T) {
	t.Helper()

	select {
	case <-r.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("submission was not sent")
	}
}

func sampleTest(minutes int) *models.Test {
	return &models.Test{
		ID:              7,
		Title:           "География",
		DurationMinutes: minutes,
		Questions: []models.Question{
			{ID: 12, QuestionText: "Столицы Европы", QuestionType: models.QuestionMultiple, Options: []string{"Париж", "Лондон", "Сидней"}, OrderNumber: 2},
			{ID: 11, QuestionText: "Столица Франции", QuestionType: models.QuestionSingle, Options: []string{"Париж", "Лондон"}, OrderNumber: 1},
			{ID: 13, QuestionText: "Почему?", QuestionType: models.QuestionText, OrderNumber: 3},
		},
	}
}

func startAttempt(t *testing.T, minutes int) (*Engine, *Attempt, *manualClock, *recorder) {
	t.Helper()

	clock := &manualClock{}
	rec := newRecorder()
	engine := NewEngine(WithTicker(clock.factory))
	t.Cleanup(engine.Close)

	a, err := engine.Start(context.Background(), "sess", sampleTest(minutes), rec.submit)
	require.NoError(t, err)

	return engine, a, clock, rec
}

func TestStart_OrdersQuestionsAndSetsClock(t *testing.T) {
	_, a, _, _ := startAttempt(t, 1)

	v := a.View()
	assert.Equal(t, 11, v.Question.ID)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 60, v.Remaining)
	assert.Equal(t, "1:00", v.Clock())
	assert.Equal(t, StatusActive, v.Status)
	assert.True(t, v.First())
	assert.False(t, v.Last())
}

func TestStart_NoQuestions(t *testing.T) {
	engine := NewEngine(WithTicker((&manualClock{}).factory))

	_, err := engine.Start(context.Background(), "sess", &models.Test{ID: 1, DurationMinutes: 5}, newRecorder().submit)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Zero(t, engine.Active())
}

func TestAutoSubmit_WhenTimeRunsOut(t *testing.T) {
	_, a, clock, rec := startAttempt(t, 1)

	require.NoError(t, a.Choose(11, "Париж"))

	clock.advance(t, 59)
	require.Eventually(t, func() bool { return a.Remaining() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, rec.count())

	clock.advance(t, 1)
	rec.waitSent(t)
	a.Wait()

	assert.Equal(t, 1, rec.count())
	req := rec.last()
	assert.Equal(t, 7, req.TestID)
	assert.Equal(t, models.Answers{11: {"Париж"}}, req.Answers)
	require.NotNil(t, req.TimeSpentMinutes)
	assert.Equal(t, 1, *req.TimeSpentMinutes)

	v := a.View()
	assert.Equal(t, StatusSubmitted, v.Status)
	assert.True(t, v.AutoSubmitted)
	require.NotNil(t, v.Result)
	assert.Equal(t, 1, v.Result.ID)
}

func TestAutoSubmit_EmptyAnswers(t *testing.T) {
	_, a, clock, rec := startAttempt(t, 1)

	clock.advance(t, 60)
	rec.waitSent(t)
	a.Wait()

	assert.Empty(t, rec.last().Answers)
	assert.Equal(t, StatusSubmitted, a.Status())
}

func TestManualSubmit_StopsCountdown(t *testing.T) {
	_, a, clock, rec := startAttempt(t, 2)

	clock.advance(t, 30)
	require.NoError(t, a.Write(13, "потому что"))

	result, err := a.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	req := rec.last()
	require.NotNil(t, req.TimeSpentMinutes)
	assert.Equal(t, 1, *req.TimeSpentMinutes)
	assert.Equal(t, []string{"потому что"}, req.Answers[13])

	c := clock.chans[clock.started()-1]
	select {
	case c <- time.Now():
		t.Fatal("countdown still running after submit")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, rec.count())

	_, err = a.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, 1, rec.count())
}

func TestSubmitFailure_AllowsRetry(t *testing.T) {
	_, a, clock, rec := startAttempt(t, 1)
	boom := errors.New("backend down")
	rec.setFail(boom)

	_, err := a.Submit(context.Background())
	require.ErrorIs(t, err, boom)
	rec.waitSent(t)

	v := a.View()
	assert.Equal(t, StatusActive, v.Status)
	assert.ErrorIs(t, v.LastErr, boom)
	assert.Equal(t, 2, clock.started())

	require.NoError(t, a.Choose(11, "Лондон"))

	rec.setFail(nil)
	result, err := a.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 2, rec.count())
	assert.Nil(t, a.View().LastErr)
}

func TestAutoSubmitFailure_ManualRetry(t *testing.T) {
	_, a, clock, rec := startAttempt(t, 1)
	rec.setFail(errors.New("timeout"))

	clock.advance(t, 60)
	rec.waitSent(t)
	a.Wait()

	assert.Equal(t, StatusActive, a.Status())
	assert.Zero(t, a.Remaining())

	rec.setFail(nil)
	_, err := a.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, a.Status())
	assert.Equal(t, 1, clock.started())
}

func TestAnswers(t *testing.T) {
	_, a, _, _ := startAttempt(t, 5)

	require.NoError(t, a.Choose(11, "Париж"))
	require.NoError(t, a.Choose(11, "Лондон"))

	require.NoError(t, a.Toggle(12, "Париж", true))
	require.NoError(t, a.Toggle(12, "Лондон", true))
	require.NoError(t, a.Toggle(12, "Париж", true))
	require.NoError(t, a.Toggle(12, "Лондон", false))

	require.NoError(t, a.Write(13, "первый"))
	require.NoError(t, a.Write(13, "второй"))

	assert.Equal(t, models.Answers{
		11: {"Лондон"},
		12: {"Париж"},
		13: {"второй"},
	}, a.Answers())

	answered, total := a.Summary()
	assert.Equal(t, 3, answered)
	assert.Equal(t, 3, total)
}

func TestAnswers_Rejected(t *testing.T) {
	_, a, _, _ := startAttempt(t, 5)

	testCases := []struct {
		name string
		fn   func() error
		err  error
	}{
		{name: "unknown question", fn: func() error { return a.Choose(99, "Париж") }, err: ErrUnknownQuestion},
		{name: "unknown option", fn: func() error { return a.Choose(11, "Берлин") }, err: ErrUnknownOption},
		{name: "toggle on single", fn: func() error { return a.Toggle(11, "Париж", true) }, err: ErrWrongType},
		{name: "write on multiple", fn: func() error { return a.Write(12, "x") }, err: ErrWrongType},
		{name: "select unknown", fn: func() error { return a.Select(12, []string{"Рим"}) }, err: ErrUnknownOption},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.fn(), tc.err)
		})
	}

	assert.Empty(t, a.Answers())
}

func TestSelect_ReplacesSet(t *testing.T) {
	_, a, _, _ := startAttempt(t, 5)

	require.NoError(t, a.Toggle(12, "Сидней", true))
	require.NoError(t, a.Select(12, []string{"Париж", "Лондон", "Париж"}))
	assert.Equal(t, []string{"Париж", "Лондон"}, a.Answers()[12])

	require.NoError(t, a.Select(12, nil))
	answered, _ := a.Summary()
	assert.Zero(t, answered)
}

func TestNavigation_Clamped(t *testing.T) {
	_, a, _, _ := startAttempt(t, 5)

	assert.Equal(t, 0, a.Prev())
	assert.Equal(t, 1, a.Next())
	assert.Equal(t, 2, a.Next())
	assert.Equal(t, 2, a.Next())
	assert.True(t, a.View().Last())
	assert.Equal(t, 13, a.View().Question.ID)
	assert.Equal(t, 1, a.Prev())
}

func TestLowTime(t *testing.T) {
	_, a, clock, _ := startAttempt(t, 3)

	assert.False(t, a.View().LowTime())

	clock.advance(t, 61)
	require.Eventually(t, func() bool { return a.Remaining() == 119 }, time.Second, time.Millisecond)
	v := a.View()
	assert.True(t, v.LowTime())
	assert.False(t, v.Critical())
	assert.Equal(t, "1:59", v.Clock())

	clock.advance(t, 60)
	require.Eventually(t, func() bool { return a.View().Critical() }, time.Second, time.Millisecond)
	assert.Equal(t, StatusActive, a.Status())
}

func TestEngine_StartReturnsRunningAttempt(t *testing.T) {
	engine, a, _, rec := startAttempt(t, 5)

	again, err := engine.Start(context.Background(), "sess", sampleTest(5), rec.submit)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, engine.Active())
}

func TestEngine_StartAfterSubmitIsFresh(t *testing.T) {
	engine, a, _, rec := startAttempt(t, 5)

	_, err := a.Submit(context.Background())
	require.NoError(t, err)

	fresh, err := engine.Start(context.Background(), "sess", sampleTest(5), rec.submit)
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
	assert.Equal(t, StatusActive, fresh.Status())
}

func TestEngine_LeaveCancelsWithoutSubmit(t *testing.T) {
	engine, a, clock, rec := startAttempt(t, 1)

	engine.Leave("sess", 0)
	a.Wait()

	assert.Equal(t, StatusCancelled, a.Status())
	_, ok := engine.Get("sess", 7)
	assert.False(t, ok)

	c := clock.chans[0]
	select {
	case c <- time.Now():
		t.Fatal("countdown still running after leave")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Zero(t, rec.count())

	_, err := a.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotActive)
	assert.ErrorIs(t, a.Choose(11, "Париж"), ErrNotActive)
}

func TestEngine_LeaveKeepsCurrentTest(t *testing.T) {
	engine, a, _, _ := startAttempt(t, 5)

	engine.Leave("sess", 7)
	got, ok := engine.Get("sess", 7)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, StatusActive, a.Status())
}

func TestEngine_OneAttemptPerSession(t *testing.T) {
	engine, first, _, rec := startAttempt(t, 5)

	other := sampleTest(5)
	other.ID = 8
	second, err := engine.Start(context.Background(), "sess", other, rec.submit)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, first.Status())
	assert.Equal(t, StatusActive, second.Status())
	assert.Equal(t, 1, engine.Active())

	_, err = engine.Start(context.Background(), "other", sampleTest(5), rec.submit)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.Active())

	engine.Drop("sess")
	assert.Equal(t, 1, engine.Active())
	assert.Equal(t, StatusCancelled, second.Status())
}

func TestFormatClock(t *testing.T) {
	testCases := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 59, want: "0:59"},
		{seconds: 600, want: "10:00"},
		{seconds: -3, want: "0:00"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, FormatClock(tc.seconds))
	}
}
