package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Spok95/school-dashboard/internal/metrics"
	"github.com/Spok95/school-dashboard/internal/storage"
	"github.com/Spok95/school-dashboard/internal/storage/pgstore/migrations"
)

// Store держит коллекции в таблице records (key → jsonb).
// Ключи и форма значений те же, что и у файлового хранилища.
type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("открытие БД: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}
	return &Store{db: db}, nil
}

// FromDB оборачивает уже открытое соединение (тесты).
func FromDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(s.db, ".")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	metrics.StoreOps.WithLabelValues("postgres", "get").Inc()
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	metrics.StoreOps.WithLabelValues("postgres", "set").Inc()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO records (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()
`, key, value)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	metrics.StoreOps.WithLabelValues("postgres", "delete").Inc()
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key = $1`, key)
	return err
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM records ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error { return s.db.Close() }
