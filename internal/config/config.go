package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Хранилища сессий
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config структура для хранения настроек приложения
type Config struct {
	Addr           string
	APIBaseURL     string
	SessionStore   string
	SQLitePath     string
	PostgresDSN    string
	CookieSecure   bool
	LogLevel       slog.Level
	Locale         string
	BackendRPS     float64
	RequestTimeout time.Duration
}

// LoadConfig загружает настройки из .env, переменных окружения и флагов.
// Флаги важнее переменных окружения. Отсутствие .env не ошибка.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "err", err)
	}

	fs := pflag.NewFlagSet("knowledgequest", pflag.ContinueOnError)

	addr := fs.String("addr", getEnv("KQ_ADDR", ":3000"), "address to listen on")
	apiBaseURL := fs.String("api-base-url", getEnv("KQ_API_BASE_URL", "http://localhost:8000/api"), "base URL of the REST backend")
	sessionStore := fs.String("session-store", getEnv("KQ_SESSION_STORE", StoreMemory), "session store: memory, sqlite or postgres")
	sqlitePath := fs.String("sqlite-path", getEnv("KQ_SQLITE_PATH", "knowledgequest.db"), "path to the sqlite session database")
	postgresDSN := fs.String("postgres-dsn", getEnv("KQ_POSTGRES_DSN", ""), "postgres connection string")
	cookieSecure := fs.Bool("cookie-secure", getEnvBool("KQ_COOKIE_SECURE", false), "send the session cookie over https only")
	logLevel := fs.String("log-level", getEnv("KQ_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	locale := fs.String("locale", getEnv("KQ_LOCALE", "ru"), "interface language")
	backendRPS := fs.Float64("backend-rps", getEnvFloat("KQ_BACKEND_RPS", 0), "limit of requests per second to the backend, 0 disables")
	requestTimeout := fs.Duration("request-timeout", getEnvDuration("KQ_REQUEST_TIMEOUT", 10*time.Second), "timeout of one backend request")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg := &Config{
		Addr:           *addr,
		APIBaseURL:     strings.TrimRight(*apiBaseURL, "/"),
		SessionStore:   strings.ToLower(*sessionStore),
		SQLitePath:     *sqlitePath,
		PostgresDSN:    *postgresDSN,
		CookieSecure:   *cookieSecure,
		Locale:         strings.ToLower(*locale),
		BackendRPS:     *backendRPS,
		RequestTimeout: *requestTimeout,
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api base url is required")
	}

	switch c.SessionStore {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres session store requires a dsn")
		}
	default:
		return fmt.Errorf("unknown session store %q", c.SessionStore)
	}

	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
