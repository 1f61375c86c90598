package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

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
	expires_at INTEGER,
	created_at INTEGER NOT NULL
)`

// Storage реализует storage.Storage в одном файле SQLite.
type Storage struct {
	db *sql.DB
}

// NewStorage открывает файл базы path. Таблица создается в Init.
func NewStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return &Storage{db: db}, nil
}

// Init применяет pragma и создает таблицу сессий.
func (s *Storage) Init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	return nil
}

func (s *Storage) SaveSession(ctx context.Context, rec *models.SessionRecord) error {
	query := `
	INSERT INTO sessions (id, token, user_id, email, full_name, role, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		token = excluded.token,
		user_id = excluded.user_id,
		email = excluded.email,
		full_name = excluded.full_name,
		role = excluded.role,
		expires_at = excluded.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Token,
		rec.User.ID,
		rec.User.Email,
		rec.User.FullName,
		string(rec.User.Role),
		toNullUnix(rec.ExpiresAt),
		rec.CreatedAt.Unix(),
	)

	return err
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	query := `
		SELECT id, token, user_id, email, full_name, role, expires_at, created_at
		FROM sessions WHERE id = ?
	`

	var (
		rec       models.SessionRecord
		role      string
		expires   sql.NullInt64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Token,
		&rec.User.ID,
		&rec.User.Email,
		&rec.User.FullName,
		&role,
		&expires,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.User.Role = models.Role(role)
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	if expires.Valid {
		rec.ExpiresAt = time.Unix(expires.Int64, 0).UTC()
	}

	return &rec, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func toNullUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
