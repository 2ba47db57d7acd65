package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// CacheRepository stores opaque payloads under well-known keys
type CacheRepository struct {
	db *sqlx.DB
}

// NewCacheRepository creates a new repository instance
func NewCacheRepository(db *sqlx.DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// Get returns the payload stored under key; ok is false when nothing is stored
func (r *CacheRepository) Get(ctx context.Context, key string) (payload []byte, ok bool, err error) {
	query := r.db.Rebind("SELECT payload FROM content_cache WHERE cache_key = ?")
	err = r.db.GetContext(ctx, &payload, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return payload, true, nil
}

// Put replaces the payload stored under key
func (r *CacheRepository) Put(ctx context.Context, key string, payload []byte) error {
	query := r.db.Rebind(`
		INSERT INTO content_cache (cache_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// Delete removes the payload stored under key
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	query := r.db.Rebind("DELETE FROM content_cache WHERE cache_key = ?")
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
