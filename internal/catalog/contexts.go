package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// ContextInfo is a registered context, grounded on original_source's
// db/context.rs::ContextInfo (SPEC_FULL.md supplemented-feature 1).
type ContextInfo struct {
	Path      string
	Context   string
	CreatedAt time.Time
}

// AddContext registers (or replaces) the context string for path.
func (c *Catalog) AddContext(ctx context.Context, path, context string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO contexts (path, context, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET context = excluded.context, created_at = excluded.created_at`,
		path, context, time.Now().UTC(),
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "add context")
	}
	return nil
}

// ListContexts returns every registered context ordered by path.
func (c *Catalog) ListContexts(ctx context.Context) ([]ContextInfo, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path, context, created_at FROM contexts ORDER BY path`)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "list contexts")
	}
	defer rows.Close()

	var out []ContextInfo
	for rows.Next() {
		var info ContextInfo
		if err := rows.Scan(&info.Path, &info.Context, &info.CreatedAt); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan context row")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// RemoveContext deletes the context registered at path. ok is false if none existed.
func (c *Catalog) RemoveContext(ctx context.Context, path string) (ok bool, err error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM contexts WHERE path = ?`, path)
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "remove context")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "remove context: rows affected")
	}
	return n > 0, nil
}

// ResolveContext performs longest-prefix resolution: the context whose path
// is the longest prefix of virtualPath (SPEC_FULL.md supplemented-feature
// 1). ok is false if no registered context prefixes virtualPath.
func (c *Catalog) ResolveContext(ctx context.Context, virtualPath string) (context string, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT context FROM contexts
		WHERE ? LIKE path || '%'
		ORDER BY LENGTH(path) DESC
		LIMIT 1
	`, virtualPath)
	if err := row.Scan(&context); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, agenterr.Wrap(agenterr.Catalog, err, "resolve context")
	}
	return context, true, nil
}

// CollectionsMissingContext lists collections that have no context
// registered at their root (SPEC_FULL.md supplemented-feature 2), checking
// both the "agentroot://<name>/" virtual root and the bare "/" fallback.
func (c *Catalog) CollectionsMissingContext(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT c.name FROM collections c
		WHERE NOT EXISTS (
			SELECT 1 FROM contexts ctx
			WHERE ctx.path = 'agentroot://' || c.name || '/'
			   OR ctx.path = '/'
		)
		ORDER BY c.name
	`)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "collections missing context")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan missing-context row")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
