package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// MaxCacheKeyLength bounds keyword cache keys.
const MaxCacheKeyLength = 512

// ErrInvalidCacheKey is returned for empty or oversized keys.
var ErrInvalidCacheKey = errors.New("invalid cache key")

// KeywordCacheEntry is one stored extraction.
type KeywordCacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// KeywordCache stores extracted keyword sets as JSON, shared across processes.
// Entries older than TTL are ignored on load; a zero TTL keeps them forever.
type KeywordCache struct {
	db  *DB
	ttl time.Duration
}

// KeywordCache returns the cache backed by this database.
func (db *DB) KeywordCache(ttl time.Duration) *KeywordCache {
	return &KeywordCache{db: db, ttl: ttl}
}

// Load returns the payload stored under key.
func (c *KeywordCache) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateCacheKey(key); err != nil {
		return nil, false, err
	}

	var payload []byte
	var createdAt time.Time
	err := c.db.pool.QueryRow(ctx,
		`SELECT payload, created_at FROM keyword_cache WHERE cache_key = $1`,
		key,
	).Scan(&payload, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load keyword cache entry: %w", err)
	}

	if expired(createdAt, c.ttl, time.Now()) {
		return nil, false, nil
	}
	return payload, true, nil
}

// Save upserts the payload under key.
func (c *KeywordCache) Save(ctx context.Context, key string, payload []byte) error {
	if err := validateCacheKey(key); err != nil {
		return err
	}
	if !json.Valid(payload) {
		return fmt.Errorf("keyword cache payload is not valid JSON")
	}

	_, err := c.db.pool.Exec(ctx,
		`INSERT INTO keyword_cache (cache_key, payload)
		 VALUES ($1, $2)
		 ON CONFLICT (cache_key) DO UPDATE SET payload = $2, created_at = NOW()`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save keyword cache entry: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *KeywordCache) Delete(ctx context.Context, key string) error {
	if err := validateCacheKey(key); err != nil {
		return err
	}
	if _, err := c.db.pool.Exec(ctx, `DELETE FROM keyword_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete keyword cache entry: %w", err)
	}
	return nil
}

// Purge removes entries older than maxAge and returns how many were removed.
func (c *KeywordCache) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := c.db.pool.Exec(ctx,
		`DELETE FROM keyword_cache WHERE created_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge keyword cache: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns the most recent entries, newest first.
func (c *KeywordCache) List(ctx context.Context, limit int) ([]KeywordCacheEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.pool.Query(ctx,
		`SELECT cache_key, payload, created_at FROM keyword_cache
		 ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword cache: %w", err)
	}
	defer rows.Close()

	var entries []KeywordCacheEntry
	for rows.Next() {
		var e KeywordCacheEntry
		var payload []byte
		if err := rows.Scan(&e.Key, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword cache entry: %w", err)
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func validateCacheKey(key string) error {
	if key == "" || len(key) > MaxCacheKeyLength {
		return ErrInvalidCacheKey
	}
	return nil
}

func expired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(createdAt) > ttl
}
