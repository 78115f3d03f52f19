package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// CollectionInfo describes a registered collection (spec §3, grounded on
// original_source's db/collections.rs::CollectionInfo).
type CollectionInfo struct {
	Name            string
	Path            string
	Pattern         string
	Provider        string
	ProviderOptions string
	DocumentCount   int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AddCollection registers a new collection at path, matched by pattern,
// using the local-filesystem provider (spec §3 — the only provider this
// core implements; the provider tag and options are carried on the row for
// a future non-local provider to read, per spec's explicit non-goal).
func (c *Catalog) AddCollection(ctx context.Context, name, path, pattern string) error {
	return c.AddCollectionWithProvider(ctx, name, path, pattern, "file", "")
}

// AddCollectionWithProvider registers a collection tagged with a specific
// provider and opaque provider options string.
func (c *Catalog) AddCollectionWithProvider(ctx context.Context, name, path, pattern, provider, providerOptions string) error {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO collections (name, path, pattern, provider, provider_options, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, path, pattern, provider, providerOptions, now, now,
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "add collection")
	}
	return nil
}

// RemoveCollection deactivates every document in the collection and removes
// its row. ok is false if no such collection existed.
func (c *Catalog) RemoveCollection(ctx context.Context, name string) (ok bool, err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "begin remove collection")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE documents SET active = 0 WHERE collection = ?`, name); err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "deactivate collection documents")
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "delete collection")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "delete collection: rows affected")
	}
	if err := tx.Commit(); err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "commit remove collection")
	}
	return n > 0, nil
}

// RenameCollection moves every document under oldName to newName and
// renames the collection row. ok is false if oldName did not exist.
func (c *Catalog) RenameCollection(ctx context.Context, oldName, newName string) (ok bool, err error) {
	now := time.Now().UTC()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "begin rename collection")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE documents SET collection = ? WHERE collection = ?`, newName, oldName); err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "rename collection documents")
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE collections SET name = ?, updated_at = ? WHERE name = ?`, newName, now, oldName)
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "rename collection")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "rename collection: rows affected")
	}
	if err := tx.Commit(); err != nil {
		return false, agenterr.Wrap(agenterr.Catalog, err, "commit rename collection")
	}
	return n > 0, nil
}

const collectionSelectColumns = `
	c.name, c.path, c.pattern, c.provider, c.provider_options, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM documents d WHERE d.collection = c.name AND d.active = 1)
`

func scanCollection(row interface{ Scan(...any) error }) (CollectionInfo, error) {
	var info CollectionInfo
	err := row.Scan(&info.Name, &info.Path, &info.Pattern, &info.Provider, &info.ProviderOptions,
		&info.CreatedAt, &info.UpdatedAt, &info.DocumentCount)
	return info, err
}

// ListCollections returns every registered collection ordered by name, with
// a live count of its active documents.
func (c *Catalog) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+collectionSelectColumns+` FROM collections c ORDER BY c.name`)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "list collections")
	}
	defer rows.Close()

	var infos []CollectionInfo
	for rows.Next() {
		info, err := scanCollection(rows)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan collection row")
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// GetCollection looks up a single collection by name. ok is false if absent.
func (c *Catalog) GetCollection(ctx context.Context, name string) (info CollectionInfo, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionSelectColumns+` FROM collections c WHERE c.name = ?`, name)
	info, err = scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CollectionInfo{}, false, nil
	}
	if err != nil {
		return CollectionInfo{}, false, agenterr.Wrap(agenterr.Catalog, err, "get collection")
	}
	return info, true, nil
}

// TouchCollection bumps a collection's updated_at to now.
func (c *Catalog) TouchCollection(ctx context.Context, name string) error {
	_, err := c.db.ExecContext(ctx, `UPDATE collections SET updated_at = ? WHERE name = ?`, time.Now().UTC(), name)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "touch collection")
	}
	return nil
}
