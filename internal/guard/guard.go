package guard

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
)

// Decision — исход проверки доступа к странице.
type Decision int

const (
	// Loading — состояние авторизации еще загружается, показываем индикатор.
	Loading Decision = iota
	// RedirectLogin — пользователь не вошел.
	RedirectLogin
	// RedirectHome — роль пользователя не подходит.
	RedirectHome
	// Allow — страницу можно показать.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Пути перенаправлений
const (
	LoginPath = "/auth/login"
	HomePath  = "/"
)

// Decide решает, можно ли показать защищенную страницу.
// Пустой allowed означает любую роль.
func Decide(loaded bool, user *models.User, allowed ...models.Role) Decision {
	if !loaded {
		return Loading
	}

	if user == nil {
		return RedirectLogin
	}

	if len(allowed) > 0 && !slices.Contains(allowed, user.Role) {
		return RedirectHome
	}

	return Allow
}

// Config описывает, откуда middleware берет состояние авторизации.
type Config struct {
	// Loaded сообщает, что состояние авторизации загружено.
	Loaded func() bool
	// User возвращает пользователя текущего запроса или nil.
	User func(c *fiber.Ctx) *models.User
	// Loading отвечает, пока состояние загружается.
	Loading fiber.Handler
}

// New возвращает middleware, пропускающее только пользователей с ролью из allowed.
func New(cfg Config, allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch Decide(cfg.Loaded(), cfg.User(c), allowed...) {
		case Loading:
			if cfg.Loading != nil {
				return cfg.Loading(c)
			}
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.SendStatus(fiber.StatusServiceUnavailable)
		case RedirectLogin:
			return c.Redirect(LoginPath, fiber.StatusSeeOther)
		case RedirectHome:
			return c.Redirect(HomePath, fiber.StatusSeeOther)
		default:
			return c.Next()
		}
	}
}
