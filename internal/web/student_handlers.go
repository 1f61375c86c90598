package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/letsssgooo/knowledgeQuest/internal/auth"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/quiz"
)

const studentHome = "/student/dashboard"

// StudentStats содержит сводку по результатам студента.
type StudentStats struct {
	Completed int
	Average   int
	PassRate  int
}

func newStudentStats(results []models.TestResult) StudentStats {
	stats := StudentStats{Completed: len(results)}
	if len(results) == 0 {
		return stats
	}

	var passed int
	var total float64
	for _, r := range results {
		if r.Passed {
			passed++
		}
		total += r.Percentage
	}

	stats.Average = int(math.Round(total / float64(len(results))))
	stats.PassRate = int(math.Round(float64(passed) * 100 / float64(len(results))))

	return stats
}

// studentDashboard загружает активные тесты и результаты параллельно.
// Ошибка одного запроса не мешает показать данные другого.
func (s *Server) studentDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		tests      []models.Test
		results    []models.TestResult
		testsErr   error
		resultsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		tests, testsErr = s.api.ListTests(ctx, true)
		return nil
	})
	g.Go(func() error {
		results, resultsErr = s.api.MyResults(ctx)
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{testsErr, resultsErr} {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		if err != nil {
			slog.Warn("failed to load student dashboard", "err", err)
		}
	}

	return s.render(c, "student/dashboard", fiber.Map{
		"Tests":       tests,
		"Results":     results,
		"Stats":       newStudentStats(results),
		"TestsFailed": testsErr != nil,
		"ResultsFail": resultsErr != nil,
	})
}

func (s *Server) resultDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.ErrNotFound
	}

	detail, err := s.api.ResultDetail(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Warn("failed to load result", "result_id", id, "err", err)

		return s.render(c, "student/result", fiber.Map{
			"Title":  s.msgs.T("result.load_failed"),
			"Failed": true,
		})
	}

	return s.render(c, "student/result", fiber.Map{
		"Title":  s.msgs.T("result.title", detail.TestTitle),
		"Result": detail,
	})
}

// takeTest показывает текущий вопрос попытки. Попытка начинается при первом заходе на страницу.
func (s *Server) takeTest(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}
	sess := sessionFrom(c)

	if a, ok := s.engine.Get(sess.ID(), testID); ok {
		switch a.Status() {
		case quiz.StatusSubmitted:
			return s.finishAttempt(c, sess.ID(), a)
		case quiz.StatusActive, quiz.StatusSubmitting:
			return s.renderAttempt(c, a)
		}
	}

	test, err := s.api.GetTest(c.UserContext(), testID)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Warn("failed to load test", "test_id", testID, "err", err)
		s.flash(c, flashError, s.msgs.T("take.load_failed"))
		return c.Redirect(studentHome, fiber.StatusSeeOther)
	}

	// автоотправка идет вне запроса, но с токеном этой сессии
	ctx := auth.NewContext(context.Background(), sess)

	a, err := s.engine.Start(ctx, sess.ID(), test, s.api.SubmitTest)
	if errors.Is(err, quiz.ErrNoQuestions) {
		s.flash(c, flashError, s.msgs.T("take.no_questions"))
		return c.Redirect(studentHome, fiber.StatusSeeOther)
	}
	if err != nil {
		return err
	}

	return s.renderAttempt(c, a)
}

// answerTest сохраняет ответ на текущий вопрос и выполняет действие формы.
func (s *Server) answerTest(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}
	sess := sessionFrom(c)
	self := testURL(testID)

	a, ok := s.engine.Get(sess.ID(), testID)
	if !ok {
		return c.Redirect(self, fiber.StatusSeeOther)
	}
	if a.Status() == quiz.StatusSubmitted {
		return s.finishAttempt(c, sess.ID(), a)
	}

	if err = s.saveAnswer(c, a); err != nil {
		slog.Debug("answer rejected", "test_id", testID, "err", err)
	}

	switch c.FormValue("action") {
	case "next":
		a.Next()
	case "prev":
		a.Prev()
	case "confirm":
		return c.Redirect(self+"?confirm=1", fiber.StatusSeeOther)
	case "submit":
		return s.submitAttempt(c, sess.ID(), a)
	}

	return c.Redirect(self, fiber.StatusSeeOther)
}

func (s *Server) saveAnswer(c *fiber.Ctx, a *quiz.Attempt) error {
	qid, err := strconv.Atoi(c.FormValue("question_id"))
	if err != nil {
		return nil
	}

	// ответ из устаревшей формы не записывается
	q := a.View().Question
	if q.ID != qid {
		return nil
	}

	switch q.QuestionType {
	case models.QuestionSingle:
		if answer := c.FormValue("answer"); answer != "" {
			return a.Choose(qid, answer)
		}
		return nil
	case models.QuestionMultiple:
		var options []string
		for _, v := range c.Request().PostArgs().PeekMulti("answer") {
			options = append(options, string(v))
		}
		return a.Select(qid, options)
	case models.QuestionText:
		return a.Write(qid, c.FormValue("text"))
	}

	return nil
}

func (s *Server) submitAttempt(c *fiber.Ctx, sessionID string, a *quiz.Attempt) error {
	result, err := a.Submit(c.UserContext())
	switch {
	case err == nil:
		s.engine.Remove(sessionID, a.TestID())
		s.flash(c, flashSuccess, s.msgs.T("take.sent"))
		return c.Redirect(resultURL(result.ID), fiber.StatusSeeOther)

	case errors.Is(err, quiz.ErrAlreadySubmitted):
		return s.finishAttempt(c, sessionID, a)

	case errors.Is(err, client.ErrUnauthorized):
		return err

	case errors.Is(err, quiz.ErrSubmitting):
		return c.Redirect(testURL(a.TestID()), fiber.StatusSeeOther)
	}

	s.flash(c, flashError, s.sendError(err))
	return c.Redirect(testURL(a.TestID()), fiber.StatusSeeOther)
}

// finishAttempt забывает отправленную попытку и открывает ее результат.
func (s *Server) finishAttempt(c *fiber.Ctx, sessionID string, a *quiz.Attempt) error {
	v := a.View()
	s.engine.Remove(sessionID, a.TestID())

	if v.AutoSubmitted {
		s.flash(c, flashSuccess, s.msgs.T("result.auto"))
	} else {
		s.flash(c, flashSuccess, s.msgs.T("take.sent"))
	}

	if v.Result == nil {
		return c.Redirect(studentHome, fiber.StatusSeeOther)
	}

	return c.Redirect(resultURL(v.Result.ID), fiber.StatusSeeOther)
}

func (s *Server) renderAttempt(c *fiber.Ctx, a *quiz.Attempt) error {
	v := a.View()

	var sendErr string
	if v.LastErr != nil {
		sendErr = s.sendError(v.LastErr)
	}

	return s.render(c, "test/take", fiber.Map{
		"Title":   v.TestTitle,
		"View":    v,
		"Confirm": c.Query("confirm") == "1" && v.Status == quiz.StatusActive,
		"SendErr": sendErr,
		"Action":  testURL(v.TestID),
	})
}

func (s *Server) sendError(err error) string {
	if detail, ok := client.Detail(err); ok {
		return s.msgs.T("take.send_failed") + ": " + detail
	}
	return s.msgs.T("take.send_failed")
}

func testURL(id int) string {
	return fmt.Sprintf("/test/%d", id)
}

func resultURL(id int) string {
	return fmt.Sprintf("/student/result/%d", id)
}
