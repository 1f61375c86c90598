package web

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/letsssgooo/knowledgeQuest/internal/authoring"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

const (
	teacherHome = "/teacher/dashboard"
	draftNew    = "new"
)

func (s *Server) teacherDashboard(c *fiber.Ctx) error {
	tests, err := s.api.MyTests(c.UserContext())
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if err != nil {
		slog.Warn("failed to load teacher tests", "err", err)
	}

	return s.render(c, "teacher/dashboard", fiber.Map{
		"Tests":  tests,
		"Failed": err != nil,
	})
}

// deleteTestPage просит подтвердить удаление теста.
func (s *Server) deleteTestPage(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	data := fiber.Map{
		"Title":  s.msgs.T("delete.title"),
		"TestID": testID,
	}

	test, err := s.api.GetTest(c.UserContext(), testID)
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if err == nil {
		data["Test"] = test
	}

	return s.render(c, "teacher/delete", data)
}

func (s *Server) deleteTest(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	if err = s.api.DeleteTest(c.UserContext(), testID); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Warn("failed to delete test", "test_id", testID, "err", err)
		s.flash(c, flashError, s.withDetail("delete.failed", err))
		return c.Redirect(teacherHome, fiber.StatusSeeOther)
	}

	s.workspace.Discard(sessionFrom(c).ID(), strconv.Itoa(testID))
	slog.Info("test deleted", "test_id", testID)

	s.flash(c, flashSuccess, s.msgs.T("delete.done"))
	return c.Redirect(teacherHome, fiber.StatusSeeOther)
}

func (s *Server) createTestPage(c *fiber.Ctx) error {
	return s.editorPage(c, draftNew, newDraft)
}

func (s *Server) createTest(c *fiber.Ctx) error {
	return s.editorSubmit(c, draftNew, newDraft)
}

func (s *Server) editTestPage(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	return s.editorPage(c, strconv.Itoa(testID), s.loadDraft(c, testID))
}

func (s *Server) editTest(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	return s.editorSubmit(c, strconv.Itoa(testID), s.loadDraft(c, testID))
}

func newDraft() (*authoring.Draft, error) {
	return authoring.NewDraft(), nil
}

func (s *Server) loadDraft(c *fiber.Ctx, testID int) func() (*authoring.Draft, error) {
	return func() (*authoring.Draft, error) {
		test, err := s.api.GetTest(c.UserContext(), testID)
		if err != nil {
			return nil, err
		}
		return authoring.FromTest(test), nil
	}
}

// editorPage показывает черновик сессии. Черновик создается при первом заходе.
func (s *Server) editorPage(c *fiber.Ctx, name string, load func() (*authoring.Draft, error)) error {
	err := s.workspace.Edit(sessionFrom(c).ID(), name, load, func(d *authoring.Draft) error {
		return s.renderEditor(c, name, d, "")
	})

	return s.editorLoadError(c, name, err)
}

// editorSubmit переносит поля формы в черновик и выполняет действие формы.
func (s *Server) editorSubmit(c *fiber.Ctx, name string, load func() (*authoring.Draft, error)) error {
	sessionID := sessionFrom(c).ID()
	action, arg, _ := strings.Cut(c.FormValue("action"), ":")

	var (
		report   *authoring.Report
		saveErr  error
		rendered bool
		created  bool
	)

	err := s.workspace.Edit(sessionID, name, load, func(d *authoring.Draft) error {
		applyForm(c, d)
		created = d.TestID == 0

		switch action {
		case "add_question":
			d.AddQuestion()
		case "remove_question":
			return d.RemoveQuestion(arg)
		case "add_option":
			q, err := d.Question(arg)
			if err != nil {
				return err
			}
			_, err = q.AddOption()
			return err
		case "remove_option":
			key, optionID, _ := strings.Cut(arg, ":")
			q, err := d.Question(key)
			if err != nil {
				return err
			}
			return q.RemoveOption(optionID)
		case "save":
			report, saveErr = s.saver.Save(c.UserContext(), d)

			var verr *authoring.ValidationError
			if errors.As(saveErr, &verr) {
				rendered = true
				c.Status(fiber.StatusUnprocessableEntity)
				return s.renderEditor(c, name, d, s.msgs.Validation(verr))
			}
		}

		return nil
	})
	if err != nil {
		if rendered {
			return err
		}
		if errors.Is(err, authoring.ErrUnknownQuestion) || errors.Is(err, authoring.ErrUnknownOption) ||
			errors.Is(err, authoring.ErrTextHasNoOptions) {
			slog.Debug("stale editor form", "draft", name, "err", err)
			return c.Redirect(editorURL(name), fiber.StatusSeeOther)
		}
		return s.editorLoadError(c, name, err)
	}
	if rendered {
		return nil
	}

	switch {
	case action == "discard":
		s.workspace.Discard(sessionID, name)
		return c.Redirect(editorURL(name), fiber.StatusSeeOther)

	case action != "save":
		return c.Redirect(editorURL(name), fiber.StatusSeeOther)

	case errors.Is(saveErr, client.ErrUnauthorized):
		return saveErr

	case saveErr != nil:
		s.flash(c, flashError, s.partialMessage(report, saveErr))
		return c.Redirect(editorURL(name), fiber.StatusSeeOther)
	}

	s.workspace.Discard(sessionID, name)

	if created {
		s.flash(c, flashSuccess, s.msgs.T("editor.created"))
	} else {
		s.flash(c, flashSuccess, s.msgs.T("editor.updated"))
	}

	return c.Redirect(teacherHome, fiber.StatusSeeOther)
}

func (s *Server) editorLoadError(c *fiber.Ctx, name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	slog.Warn("failed to load test for editing", "draft", name, "err", err)
	s.flash(c, flashError, s.withDetail("editor.load_failed", err))
	return c.Redirect(teacherHome, fiber.StatusSeeOther)
}

func (s *Server) renderEditor(c *fiber.Ctx, name string, d *authoring.Draft, validation string) error {
	title := s.msgs.T("editor.edit_title")
	if name == draftNew {
		title = s.msgs.T("editor.create_title")
	}

	return s.render(c, "teacher/editor", fiber.Map{
		"Title":      title,
		"Create":     name == draftNew,
		"Action":     editorURL(name),
		"Draft":      d,
		"Validation": validation,
		"Types": []models.QuestionType{
			models.QuestionSingle,
			models.QuestionMultiple,
			models.QuestionText,
		},
	})
}

// applyForm переносит поля формы в черновик. Тип вопроса меняется последним,
// чтобы правка вариантов относилась к типу, с которым форма была показана.
func applyForm(c *fiber.Ctx, d *authoring.Draft) {
	form := c.Request().PostArgs()

	if form.Has("title") {
		d.Title = c.FormValue("title")
		d.Description = c.FormValue("description")
		d.IsActive = c.FormValue("is_active") != ""

		d.DurationMinutes, _ = strconv.Atoi(strings.TrimSpace(c.FormValue("duration")))
	}

	var types []func()
	for _, q := range d.Questions {
		prefix := "q." + q.Key + "."
		if !form.Has(prefix + "text") {
			continue
		}

		q.Text = c.FormValue(prefix + "text")

		points, _ := strconv.Atoi(strings.TrimSpace(c.FormValue(prefix + "points")))
		q.SetPoints(points)

		for _, o := range q.Options {
			if form.Has(prefix + "opt." + o.ID) {
				_ = q.EditOption(o.ID, c.FormValue(prefix+"opt."+o.ID))
			}
		}

		if q.Choice() {
			var ids []string
			for _, v := range form.PeekMulti(prefix + "correct") {
				ids = append(ids, string(v))
			}
			if err := q.SetCorrect(ids...); err != nil {
				slog.Debug("stale correct answers", "question", q.Key, "err", err)
			}
		}

		if t := models.QuestionType(c.FormValue(prefix + "type")); t != "" && t != q.Type {
			types = append(types, func() {
				if err := q.SetType(t); err != nil {
					slog.Debug("unknown question type", "question", q.Key, "err", err)
				}
			})
		}
	}

	for _, apply := range types {
		apply()
	}
}

// partialMessage описывает, докуда дошло сохранение.
func (s *Server) partialMessage(report *authoring.Report, err error) string {
	if report == nil {
		return s.withDetail("editor.save_failed", err)
	}

	failed, ok := report.Failed()
	if !ok {
		return s.withDetail("editor.save_failed", err)
	}

	msg := s.msgs.T("editor.partial", len(report.Done()), len(report.Steps), s.stepLabel(failed))
	if detail, ok := client.Detail(failed.Err); ok {
		msg += ": " + detail
	}

	return msg
}

func (s *Server) stepLabel(step authoring.Step) string {
	switch step.Kind {
	case authoring.StepCreateQuestion, authoring.StepUpdateQuestion:
		return s.msgs.T("step."+string(step.Kind), step.Question)
	case authoring.StepDeleteQuestion:
		return s.msgs.T("step."+string(step.Kind), step.QuestionID)
	}

	return s.msgs.T("step." + string(step.Kind))
}

// statistics загружает тест, его результаты и статистику параллельно.
func (s *Server) statistics(c *fiber.Ctx) error {
	testID, err := c.ParamsInt("id")
	if err != nil || testID <= 0 {
		return fiber.ErrNotFound
	}

	var (
		test    *models.Test
		results []models.TestResult
		stats   *models.Statistics
	)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		var err error
		test, err = s.api.GetTest(ctx, testID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.api.TestResults(ctx, testID)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.api.TestStatistics(ctx, testID)
		return err
	})

	if err = g.Wait(); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return err
		}
		slog.Warn("failed to load statistics", "test_id", testID, "err", err)

		return s.render(c, "teacher/statistics", fiber.Map{
			"Title":  s.msgs.T("stats.subtitle"),
			"TestID": testID,
			"Failed": true,
		})
	}

	return s.render(c, "teacher/statistics", fiber.Map{
		"Title":   test.Title,
		"TestID":  testID,
		"Test":    test,
		"Stats":   stats,
		"Results": rankResults(results),
		"Export":  statisticsURL(testID) + "/export.csv",
	})
}

// withDetail добавляет к тексту ошибку бэкенда, если она есть.
func (s *Server) withDetail(key string, err error) string {
	if detail, ok := client.Detail(err); ok {
		return s.msgs.T(key) + ": " + detail
	}
	if errors.Is(err, client.ErrTransport) {
		return s.msgs.T(key) + ": " + s.msgs.T("error.backend")
	}
	return s.msgs.T(key)
}

func editorURL(name string) string {
	if name == draftNew {
		return "/teacher/test/create"
	}
	return fmt.Sprintf("/teacher/test/%s/edit", name)
}

func statisticsURL(testID int) string {
	return fmt.Sprintf("/teacher/test/%d/statistics", testID)
}
