// Package catalog implements the embedded relational store (C6): the single
// source of truth for collections, documents, chunks, embeddings, links,
// contexts, the LLM cache, sessions, and concepts. Every other component
// (internal/content, internal/graph, internal/vectorindex, internal/lexical,
// internal/session) reads and writes through the shared *sql.DB handle this
// package opens and migrates, rather than owning any schema of its own.
package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// lockRetryDelay paces TryLockContext's internal retry loop while waiting
// for another process to release the catalog lock.
const lockRetryDelay = 50 * time.Millisecond

// Catalog owns the catalog's SQLite file (or an in-memory instance for
// tests) and the advisory lock guarding it against a second process opening
// the same file outside of WAL (spec §6: on-disk layout; mirrors the
// teacher's internal/embed/lock.go use of gofrs/flock for the model download
// directory, repurposed here to guard the catalog path itself).
type Catalog struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Options configures Open.
type Options struct {
	// Path is the catalog file path, or ":memory:" for an in-memory catalog
	// (tests only — no advisory lock is taken for ":memory:").
	Path string
}

// Open opens (creating if absent) the catalog at opts.Path, takes the
// advisory file lock, and applies the schema.
func Open(ctx context.Context, opts Options) (*Catalog, error) {
	path := opts.Path
	if path == "" {
		return nil, agenterr.New(agenterr.Config, "catalog path must not be empty")
	}

	var fl *flock.Flock
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, agenterr.Wrap(agenterr.IO, err, "create catalog directory")
			}
		}
		fl = flock.New(path + ".lock")
		locked, err := fl.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.IO, err, "lock catalog file")
		}
		if !locked {
			return nil, agenterr.Newf(agenterr.IO, "catalog %s is locked by another process", path)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		if fl != nil {
			_ = fl.Unlock()
		}
		return nil, agenterr.Wrap(agenterr.Catalog, err, "open catalog")
	}
	// A single writer avoids SQLITE_BUSY under the catalog's single-actor
	// ownership model (spec §5: "not safe for concurrent writers").
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		if fl != nil {
			_ = fl.Unlock()
		}
		return nil, agenterr.Wrap(agenterr.Catalog, err, "enable foreign keys")
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		if fl != nil {
			_ = fl.Unlock()
		}
		return nil, agenterr.Wrap(agenterr.Catalog, err, "apply schema")
	}

	return &Catalog{db: db, lock: fl, path: path}, nil
}

// DB returns the shared handle other components operate on directly
// (internal/content, internal/graph already assume its schema exists).
func (c *Catalog) DB() *sql.DB { return c.db }

// Close releases the database handle and the advisory lock.
func (c *Catalog) Close() error {
	err := c.db.Close()
	if c.lock != nil {
		if unlockErr := c.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
		_ = os.Remove(c.path + ".lock")
	}
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "close catalog")
	}
	return nil
}
