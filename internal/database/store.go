package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"grovaapp/internal/observability"
	contextutils "grovaapp/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// Store persists small string values under a (scope, key) pair. Scope is the
// dashboard client id, so two browsers never share app state.
type Store interface {
	Get(ctx context.Context, scope, key string) (string, bool, error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope, key string) error
}

// MemoryStore is the process-local Store used when no database is configured
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

// Get returns the stored value and whether it was present
func (s *MemoryStore) Get(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[scope][key]
	return v, ok, nil
}

// Set stores value, replacing any previous one
func (s *MemoryStore) Set(_ context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.values[scope]
	if !ok {
		bucket = make(map[string]string)
		s.values[scope] = bucket
	}
	bucket[key] = value
	return nil
}

// Delete removes the value; deleting a missing key is not an error
func (s *MemoryStore) Delete(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.values[scope]; ok {
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(s.values, scope)
		}
	}
	return nil
}

// PostgresStore keeps preferences in the dashboard_preferences table
type PostgresStore struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewPostgresStore wraps an open, migrated database
func NewPostgresStore(db *sql.DB, logger *observability.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Get returns the stored value and whether it was present
func (s *PostgresStore) Get(ctx context.Context, scope, key string) (result0 string, result1 bool, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceGet",
		attribute.String("preference.key", key),
	)
	defer observability.FinishSpan(span, &err)

	var value string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM dashboard_preferences WHERE scope = $1 AND key = $2`,
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
func (s *PostgresStore) Set(ctx context.Context, scope, key, value string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceSet",
		attribute.String("preference.key", key),
	)
	defer observability.FinishSpan(span, &err)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_preferences (scope, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		scope, key, value,
	)
	if err != nil {
		s.logger.Error(ctx, "Failed to write preference", err, map[string]interface{}{"key": key})
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to write preference %s: %v", key, err)
	}
	return nil
}

// Delete removes the value; deleting a missing key is not an error
func (s *PostgresStore) Delete(ctx context.Context, scope, key string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "PreferenceDelete",
		attribute.String("preference.key", key),
	)
	defer observability.FinishSpan(span, &err)

	if _, err = s.db.ExecContext(ctx,
		`DELETE FROM dashboard_preferences WHERE scope = $1 AND key = $2`,
		scope, key,
	); err != nil {
		return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to delete preference %s: %v", key, err)
	}
	return nil
}
