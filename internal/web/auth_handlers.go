package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/knowledgeQuest/internal/auth"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/guard"
)

// dashboardPath возвращает главную страницу роли.
func dashboardPath(role models.Role) string {
	if role == models.RoleTeacher {
		return "/teacher/dashboard"
	}
	return "/student/dashboard"
}

func (s *Server) index(c *fiber.Ctx) error {
	if user := sessionFrom(c).User(); user != nil {
		return c.Redirect(dashboardPath(user.Role), fiber.StatusSeeOther)
	}

	return s.render(c, "index", nil)
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	if user := sessionFrom(c).User(); user != nil {
		return c.Redirect(dashboardPath(user.Role), fiber.StatusSeeOther)
	}

	return s.render(c, "auth/login", fiber.Map{
		"Title": s.msgs.T("login.title"),
		"Email": "",
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))

	user, err := s.auth.Login(c.UserContext(), email, c.FormValue("password"))
	if err != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return s.render(c, "auth/login", fiber.Map{
			"Title": s.msgs.T("login.title"),
			"Email": email,
			"Error": s.authError(err, "login.failed"),
		})
	}

	s.flash(c, flashSuccess, s.msgs.T("login.success"))
	return c.Redirect(dashboardPath(user.Role), fiber.StatusSeeOther)
}

func (s *Server) registerPage(c *fiber.Ctx) error {
	if user := sessionFrom(c).User(); user != nil {
		return c.Redirect(dashboardPath(user.Role), fiber.StatusSeeOther)
	}

	return s.render(c, "auth/register", fiber.Map{
		"Title":    s.msgs.T("register.title"),
		"Email":    "",
		"FullName": "",
		"Role":     string(models.RoleStudent),
	})
}

func (s *Server) register(c *fiber.Ctx) error {
	r := auth.Registration{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		FullName: c.FormValue("full_name"),
		Role:     models.Role(c.FormValue("role")),
	}

	user, err := s.auth.Register(c.UserContext(), r)
	switch {
	case err == nil:
		s.flash(c, flashSuccess, s.msgs.T("register.success"))
		return c.Redirect(dashboardPath(user.Role), fiber.StatusSeeOther)

	case user != nil:
		// учетная запись создана, но вход не удался
		s.flash(c, flashSuccess, s.msgs.T("register.success"))
		return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
	}

	c.Status(fiber.StatusUnprocessableEntity)
	return s.render(c, "auth/register", fiber.Map{
		"Title":    s.msgs.T("register.title"),
		"Email":    strings.TrimSpace(r.Email),
		"FullName": strings.TrimSpace(r.FullName),
		"Role":     string(r.Role),
		"Error":    s.authError(err, "register.failed"),
	})
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.auth.Logout(c.UserContext())

	s.flash(c, flashSuccess, s.msgs.T("logout.success"))
	return c.Redirect(guard.LoginPath, fiber.StatusSeeOther)
}

// authError возвращает текст ошибки входа или регистрации.
// Текст бэкенда показывается без изменений, иначе используется fallback.
func (s *Server) authError(err error, fallback string) string {
	switch {
	case errors.Is(err, auth.ErrEmailRequired):
		return s.msgs.T("auth.email_required")
	case errors.Is(err, auth.ErrEmailInvalid):
		return s.msgs.T("auth.email_invalid")
	case errors.Is(err, auth.ErrFullNameRequired):
		return s.msgs.T("auth.full_name_required")
	case errors.Is(err, auth.ErrPasswordShort):
		return s.msgs.T("auth.password_short")
	case errors.Is(err, auth.ErrPasswordRequired):
		return s.msgs.T("auth.password_required")
	case errors.Is(err, auth.ErrRoleInvalid):
		return s.msgs.T("auth.role_invalid")
	case errors.Is(err, client.ErrTransport):
		return s.msgs.T("error.backend")
	}

	if detail, ok := client.Detail(err); ok {
		return detail
	}

	return s.msgs.T(fallback)
}
