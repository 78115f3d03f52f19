package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// GetLLMCache returns the cached JSON value for key (e.g. "metadata:v1:<hash>",
// grounded on original_source's get_llm_cache_public), or ok=false if absent
// or expired.
func (c *Catalog) GetLLMCache(ctx context.Context, key string) (value string, ok bool, err error) {
	var expiresAt sql.NullString
	row := c.db.QueryRowContext(ctx, `SELECT value, expires_at FROM llm_cache WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, agenterr.Wrap(agenterr.Catalog, err, "get llm cache")
	}
	if expiresAt.Valid {
		if expires, err := time.Parse(time.RFC3339, expiresAt.String); err == nil && time.Now().UTC().After(expires) {
			return "", false, nil
		}
	}
	return value, true, nil
}

// SetLLMCache stores value under key with an optional TTL (zero means no
// expiry; a negative TTL stores an expiry already in the past).
func (c *Catalog) SetLLMCache(ctx context.Context, key, value string, ttl time.Duration) error {
	now := time.Now().UTC()
	var expiresAt any
	if ttl != 0 {
		expiresAt = now.Add(ttl).Format(time.RFC3339)
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO llm_cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, value, now, expiresAt)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "set llm cache")
	}
	return nil
}

// ClearLLMCache removes the entry at key, used by RegenerateMetadata's
// force flag (spec §9 Open Question) to invalidate before recomputing.
func (c *Catalog) ClearLLMCache(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM llm_cache WHERE key = ?`, key)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "clear llm cache")
	}
	return nil
}
