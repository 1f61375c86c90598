package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/guard"
)

// errorHandler обрабатывает ошибки всех страниц.
// 401 от бэкенда уже очистил сессию через хук клиента, здесь остается только перенаправить на вход.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		s.flash(c, flashError, s.msgs.T("session.expired"))
		return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return s.notFound(c)
		}
		c.Status(fe.Code)
		return s.render(c, "errors/error", fiber.Map{
			"Title":   s.msgs.T("error.generic"),
			"Message": s.msgs.T("error.generic"),
		})
	}

	message := s.msgs.T("error.generic")
	status := fiber.StatusInternalServerError
	if errors.Is(err, client.ErrTransport) {
		message = s.msgs.T("error.backend")
		status = fiber.StatusBadGateway
	}

	slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)

	c.Status(status)
	return s.render(c, "errors/error", fiber.Map{
		"Title":   message,
		"Message": message,
	})
}

func (s *Server) notFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return s.render(c, "errors/404", fiber.Map{
		"Title": s.msgs.T("error.not_found"),
	})
}

// loadingPage отвечает, пока хранилище сессий не загружено. Страница обновляется сама.
func (s *Server) loadingPage(c *fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, "1")
	c.Status(fiber.StatusServiceUnavailable)
	return s.render(c, "loading", fiber.Map{
		"Title":   s.msgs.T("app.loading"),
		"Refresh": c.OriginalURL(),
	})
}
