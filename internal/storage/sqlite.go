package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ArnaudClarat/FactRush/internal/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLite is a Store backed by a single-file SQLite database, the closest
// Go analogue to browser localStorage: durable, local, no server.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// key-value table exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, stderrors.Join(fmt.Errorf("init sqlite schema: %w", err), db.Close())
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Internal(fmt.Errorf("sqlite get %s: %w", key, err))
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Internal(fmt.Errorf("decode %s: %w", key, err))
	}

	return true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Internal(fmt.Errorf("encode %s: %w", key, err))
	}

	const stmt = `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	if _, err := s.db.ExecContext(ctx, stmt, key, raw); err != nil {
		return errors.Internal(fmt.Errorf("sqlite set %s: %w", key, err))
	}

	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.Internal(fmt.Errorf("sqlite del %s: %w", key, err))
	}

	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
