package catalog

import (
	"context"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// TouchConcepts increments the usage count of each glossary term in names,
// creating rows as needed. Fed by a document's llm_concepts after metadata
// generation, surfacing a ranked glossary for suggestion/browse features.
func (c *Catalog) TouchConcepts(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	now := time.Now().UTC()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "begin touch concepts")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO concepts (name, count, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at
	`)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "prepare touch concept")
	}
	defer stmt.Close()

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, name, now); err != nil {
			return agenterr.Wrap(agenterr.Catalog, err, "touch concept")
		}
	}
	return tx.Commit()
}

// TopConcepts returns up to limit glossary terms ordered by usage count,
// descending (used by ranking's suggestion step, spec §4.9).
func (c *Catalog) TopConcepts(ctx context.Context, limit int) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name FROM concepts ORDER BY count DESC, name ASC LIMIT ?`, limit)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "top concepts")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan concept row")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
