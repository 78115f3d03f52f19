// Package content implements the content-addressed blob store (C1): raw file
// bytes deduplicated by SHA-256 hash, shared by every document whose body
// happens to match.
package content

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// Store is the content blob store. It operates on the catalog's "content"
// table through a shared *sql.DB handle — schema ownership lives in
// internal/catalog, which creates the table this package reads and writes.
type Store struct {
	db *sql.DB
}

// NewStore wraps db for content operations.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// HashBytes returns the lowercase hex SHA-256 digest of data (spec §4.1).
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortDocID returns the first six hex characters of hash, the
// user-presented identifier that is never used as a primary key (spec §4.1).
func ShortDocID(hash string) string {
	if len(hash) <= 6 {
		return hash
	}
	return hash[:6]
}

// InsertContent stores bytes under their hash, idempotently: inserting the
// same hash twice is a no-op (spec §3 invariant: identical bytes never
// stored twice).
func (s *Store) InsertContent(ctx context.Context, hash string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content (hash, bytes, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO NOTHING`,
		hash, data, time.Now().UTC(),
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "insert content")
	}
	return nil
}

// GetContent fetches the bytes stored under hash. ok is false if no blob
// with that hash exists.
func (s *Store) GetContent(ctx context.Context, hash string) (data []byte, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT bytes FROM content WHERE hash = ?`, hash)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, agenterr.Wrap(agenterr.Catalog, err, "get content")
	}
	return data, true, nil
}

// CleanupOrphaned removes content rows with no active document reference and
// returns the count removed (spec §4.1).
func (s *Store) CleanupOrphaned(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM content
		WHERE hash NOT IN (
			SELECT DISTINCT hash FROM documents WHERE active = 1
		)`,
	)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "cleanup orphaned content")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "cleanup orphaned content: rows affected")
	}
	return int(n), nil
}
