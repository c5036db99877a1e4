// SPDX-License-Identifier: EPL-2.0

package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS config (
	group_name TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (group_name, key)
)`

// SQLite keeps the store in a single sqlite database file.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store needs a path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("sqlite kv store opened", zap.String("path", path))
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) Get(ctx context.Context, group, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM config WHERE group_name = ? AND key = ?", group, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query %s.%s: %w", group, key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, group, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO config (group_name, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(group_name, key) DO UPDATE SET value = excluded.value`,
		group, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", group, key, err)
	}
	return nil
}

func (s *SQLite) Unset(ctx context.Context, group, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM config WHERE group_name = ? AND key = ?", group, key,
	); err != nil {
		return fmt.Errorf("failed to unset %s.%s: %w", group, key, err)
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context, group string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM config WHERE group_name = ? ORDER BY key", group,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", group, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
