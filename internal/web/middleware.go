package web

import (
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/letsssgooo/knowledgeQuest/internal/auth"
)

// Cookies
const (
	sessionCookie = "kq_session"
	flashCookie   = "kq_flash"
	sessionMaxAge = 7 * 24 * time.Hour
)

const localsSession = "session"

// Виды уведомлений
const (
	flashSuccess = "success"
	flashError   = "error"
)

// Flash хранит одноразовое уведомление для следующей страницы.
type Flash struct {
	Kind string
	Text string
}

var (
	testPath   = regexp.MustCompile(`^/test/(\d+)/?$`)
	editorPath = regexp.MustCompile(`^/teacher/test/(?:(create)|(\d+)/edit)/?$`)
)

// requestLogger пишет в лог каждый запрос с идентификатором, статусом и временем ответа.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	requestID := c.Get(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, requestID)

	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	attrs := []any{
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", time.Since(start).Round(time.Microsecond),
	}
	if status >= fiber.StatusInternalServerError {
		slog.Error("request", attrs...)
	} else {
		slog.Debug("request", attrs...)
	}

	return nil
}

// withSession восстанавливает сессию по cookie и кладет ее в контекст запроса.
// После обработки cookie приводится в соответствие с сессией.
func (s *Server) withSession(c *fiber.Ctx) error {
	id := c.Cookies(sessionCookie)

	sess, openErr := s.auth.Manager().Open(c.UserContext(), id)
	if openErr != nil && !errors.Is(openErr, auth.ErrNotLoaded) {
		slog.Warn("failed to open session", "err", openErr)
	}

	c.SetUserContext(auth.NewContext(c.UserContext(), sess))
	c.Locals(localsSession, sess)

	err := c.Next()

	// cookie не трогаем, если хранилище не ответило
	switch current := sess.ID(); {
	case current != "" && current != id:
		s.setCookie(c, sessionCookie, current, sessionMaxAge)
	case current == "" && id != "" && (sess.Cleared() || openErr == nil):
		s.clearCookie(c, sessionCookie)
	}

	return err
}

// trackNavigation отменяет попытки сессии, когда пользователь ушел со страницы теста,
// и забывает черновики, когда он ушел из редактора.
func (s *Server) trackNavigation(c *fiber.Ctx) error {
	sessionID := sessionFrom(c).ID()
	if sessionID == "" || c.Method() != fiber.MethodGet {
		return c.Next()
	}
	if dest := c.Get("Sec-Fetch-Dest"); dest != "" && dest != "document" {
		return c.Next()
	}

	keep := 0
	if m := testPath.FindStringSubmatch(c.Path()); m != nil {
		keep, _ = strconv.Atoi(m[1])
	}
	s.engine.Leave(sessionID, keep)

	draft := ""
	if m := editorPath.FindStringSubmatch(c.Path()); m != nil {
		draft = m[2]
		if m[1] != "" {
			draft = draftNew
		}
	}
	s.workspace.Leave(sessionID, draft)

	return c.Next()
}

func sessionFrom(c *fiber.Ctx) *auth.Session {
	sess, _ := c.Locals(localsSession).(*auth.Session)
	return sess
}

func (s *Server) setCookie(c *fiber.Ctx, name, value string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(maxAge),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) flash(c *fiber.Ctx, kind, text string) {
	s.setCookie(c, flashCookie, url.QueryEscape(kind+"\n"+text), time.Minute)
}

// popFlash возвращает уведомление из cookie и удаляет его.
func (s *Server) popFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	s.clearCookie(c, flashCookie)

	value, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}

	kind, text, ok := strings.Cut(value, "\n")
	if !ok || text == "" {
		return nil
	}

	return &Flash{Kind: kind, Text: text}
}
