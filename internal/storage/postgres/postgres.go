package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/knowledgeQuest/internal/domain/models"
	"github.com/letsssgooo/knowledgeQuest/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	user_id    INTEGER NOT NULL,
	email      TEXT NOT NULL,
	full_name  TEXT NOT NULL,
	role       TEXT NOT NULL,
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL
)
`

// Storage реализует storage.Storage поверх PostgreSQL.
// Подходит, когда несколько экземпляров фронтенда делят одни сессии.
type Storage struct {
	cfg  *pgxpool.Config
	pool *pgxpool.Pool
	mu   sync.RWMutex
}

// NewStorage разбирает dsn. Соединение открывается в Init.
func NewStorage(dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	return &Storage{cfg: cfg}, nil
}

// Init открывает пул соединений и создает таблицу сессий.
func (s *Storage) Init(ctx context.Context) error {
	pool, err := pgxpool.ConnectConfig(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if _, err = pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()

	return nil
}

func (s *Storage) conn() (*pgxpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pool == nil {
		return nil, errors.New("postgres storage is not initialized")
	}
	return s.pool, nil
}

func (s *Storage) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	query := `
	INSERT INTO sessions (id, token, user_id, email, full_name, role, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		token = EXCLUDED.token,
		user_id = EXCLUDED.user_id,
		email = EXCLUDED.email,
		full_name = EXCLUDED.full_name,
		role = EXCLUDED.role,
		expires_at = EXCLUDED.expires_at
	`

	_, err = pool.Exec(ctx, query,
		rec.ID,
		rec.Token,
		rec.User.ID,
		rec.User.Email,
		rec.User.FullName,
		string(rec.User.Role),
		nullableTime(rec.ExpiresAt),
		rec.CreatedAt,
	)

	return err
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, token, user_id, email, full_name, role, expires_at, created_at
		FROM sessions WHERE id = $1
	`

	var (
		rec     models.SessionRecord
		role    string
		expires *time.Time
	)
	err = pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.Token,
		&rec.User.ID,
		&rec.User.Email,
		&rec.User.FullName,
		&role,
		&expires,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.User.Role = models.Role(role)
	if expires != nil {
		rec.ExpiresAt = *expires
	}

	return &rec, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
