package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/letsssgooo/knowledgeQuest/internal/auth"
	"github.com/letsssgooo/knowledgeQuest/internal/authoring"
	"github.com/letsssgooo/knowledgeQuest/internal/client"
	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/guard"
	"github.com/letsssgooo/knowledgeQuest/internal/quiz"
)

//go:embed views
var viewsFS embed.FS

// Deps содержит зависимости веб-сервера.
type Deps struct {
	Auth         *auth.Auth
	API          client.Client
	Engine       *quiz.Engine
	Workspace    *authoring.Workspace
	Messages     *Messages
	CookieSecure bool
}

// Server отдает страницы приложения.
type Server struct {
	app          *fiber.App
	auth         *auth.Auth
	api          client.Client
	engine       *quiz.Engine
	workspace    *authoring.Workspace
	saver        *authoring.Saver
	msgs         *Messages
	cookieSecure bool
}

// New создает сервер и регистрирует маршруты.
// Завершение сессии отменяет ее попытки и черновики.
func New(d Deps) (*Server, error) {
	s := &Server{
		auth:         d.Auth,
		api:          d.API,
		engine:       d.Engine,
		workspace:    d.Workspace,
		saver:        authoring.NewSaver(d.API),
		msgs:         d.Messages,
		cookieSecure: d.CookieSecure,
	}
	if s.msgs == nil {
		s.msgs = NewMessages(LocaleRU)
	}
	if s.engine == nil {
		s.engine = quiz.NewEngine()
	}
	if s.workspace == nil {
		s.workspace = authoring.NewWorkspace()
	}

	views, err := s.newViews()
	if err != nil {
		return nil, err
	}

	s.app = fiber.New(fiber.Config{
		Views:                 views,
		ViewsLayout:           "layouts/main",
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	s.auth.Manager().OnEnd(func(sessionID string) {
		s.engine.Drop(sessionID)
		s.workspace.Drop(sessionID)
	})

	s.routes()

	return s, nil
}

// App возвращает приложение fiber (используется в тестах).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen запускает сервер на addr.
func (s *Server) Listen(addr string) error {
	slog.Info("web server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown останавливает сервер и отменяет все попытки.
func (s *Server) Shutdown(ctx context.Context) error {
	s.engine.Close()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	app := s.app

	app.Get("/favicon.ico", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Use(s.requestLogger)
	app.Use(recover.New())
	app.Use(s.withSession)
	app.Use(s.trackNavigation)

	app.Get("/", s.index)

	authGroup := app.Group("/auth")
	authGroup.Get("/login", s.loginPage)
	authGroup.Post("/login", s.login)
	authGroup.Get("/register", s.registerPage)
	authGroup.Post("/register", s.register)
	authGroup.Post("/logout", s.logout)

	student := s.guard(models.RoleStudent)
	app.Get("/student/dashboard", student, s.studentDashboard)
	app.Get("/student/result/:id", student, s.resultDetail)
	app.Get("/test/:id", student, s.takeTest)
	app.Post("/test/:id", student, s.answerTest)

	teacher := s.guard(models.RoleTeacher)
	tg := app.Group("/teacher", teacher)
	tg.Get("/dashboard", s.teacherDashboard)
	tg.Get("/test/create", s.createTestPage)
	tg.Post("/test/create", s.createTest)
	tg.Get("/test/:id/edit", s.editTestPage)
	tg.Post("/test/:id/edit", s.editTest)
	tg.Get("/test/:id/delete", s.deleteTestPage)
	tg.Post("/test/:id/delete", s.deleteTest)
	tg.Get("/test/:id/statistics", s.statistics)
	tg.Get("/test/:id/statistics/export.csv", s.exportCSV)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}

func (s *Server) guard(allowed ...models.Role) fiber.Handler {
	return guard.New(guard.Config{
		Loaded: s.auth.Manager().Loaded,
		User: func(c *fiber.Ctx) *models.User {
			return sessionFrom(c).User()
		},
		Loading: s.loadingPage,
	}, allowed...)
}

func (s *Server) newViews() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to open views: %w", err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"t":     s.msgs.T,
		"add":   func(a, b int) int { return a + b },
		"pct":   func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"score": formatScore,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "—"
			}
			return t.Local().Format("02.01.2006 15:04")
		},
		"clock": quiz.FormatClock,
		"qtype": func(t models.QuestionType) string {
			return s.msgs.T("qtype." + string(t))
		},
		"role": func(r models.Role) string {
			return s.msgs.T("role." + string(r))
		},
		"join":     strings.Join,
		"contains": contains,
		"deref": func(v *int) int {
			if v == nil {
				return 0
			}
			return *v
		},
		"truthy": func(v *bool) bool {
			return v != nil && *v
		},
	})

	if err = engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}

	return engine, nil
}

// render отрисовывает страницу name с общими данными: пользователь, уведомление, язык.
func (s *Server) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = sessionFrom(c).User()
	data["Flash"] = s.popFlash(c)
	data["Locale"] = s.msgs.Locale()
	if _, ok := data["Title"]; !ok {
		data["Title"] = s.msgs.T("app.title")
	}

	return c.Render(name, data)
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
