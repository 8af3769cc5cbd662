package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

// SQLiteMemory opens a private in-memory database, used by tests and the adm CLI
const SQLiteMemory = ":memory:"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dashboard_preferences (
    scope      TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (scope, key)
)`

// SQLiteStore keeps preferences in a single-file SQLite database. It suits
// a single dashboard instance that should survive restarts without Postgres.
type SQLiteStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the
// preferences table exists.
func OpenSQLite(ctx context.Context, path string, logger *observability.Logger) (*SQLiteStore, error) {
	if path != SQLiteMemory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "failed to create %s: %v", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "failed to open sqlite database: %v", err)
	}
	// One connection avoids "database is locked"; it also keeps a
	// :memory: database alive for the life of the store.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		sqliteSchema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "failed to prepare sqlite database: %v", err)
		}
	}

	logger.Info(ctx, "SQLite preference store ready", map[string]interface{}{"path": path})
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the stored value and whether it was present
func (s *SQLiteStore) Get(ctx context.Context, scope, key string) (result0 string, result1 bool, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceGet",
		attribute.String("preference.key", key),
		attribute.String("db.system", "sqlite"),
	)
	defer observability.FinishSpan(span, &err)

	var value string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM dashboard_preferences WHERE scope = ? AND key = ?`,
		scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to read preference %s: %v", key, err)
	}
	return value, true, nil
}

// Set upserts value
func (s *SQLiteStore) Set(ctx context.Context, scope, key, value string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceSet",
		attribute.String("preference.key", key),
		attribute.String("db.system", "sqlite"),
	)
	defer observability.FinishSpan(span, &err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_preferences (scope, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		scope, key, value,
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to write preference", err, map[string]interface{}{"key": key})
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to write preference %s: %v", key, err)
	}
	return nil
}

// Delete removes the value; deleting a missing key is not an error
func (s *SQLiteStore) Delete(ctx context.Context, scope, key string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceDelete",
		attribute.String("preference.key", key),
		attribute.String("db.system", "sqlite"),
	)
	defer observability.FinishSpan(span, &err)

	if _, err = s.db.ExecContext(ctx,
		`DELETE FROM dashboard_preferences WHERE scope = ? AND key = ?`,
		scope, key,
	); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to delete preference %s: %v", key, err)
	}
	return nil
}
