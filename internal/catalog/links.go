package catalog

import (
	"context"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/graph"
)

// ReplaceLinks atomically swaps every outbound link from sourceID for links,
// dropping any link whose target cannot be resolved (spec §4.4: "dangling
// targets... are dropped at build time"). resolve maps a link's collection
// and TargetPath to the target document's id.
func (c *Catalog) ReplaceLinks(ctx context.Context, sourceID int64, links []graph.Link, resolve func(graph.Link) (targetID int64, ok bool)) (stored int, err error) {
	now := time.Now().UTC()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "begin replace links")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_links WHERE source_id = ?`, sourceID); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "clear old links")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO document_links (source_id, target_id, link_type, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "prepare insert link")
	}
	defer stmt.Close()

	for _, link := range links {
		targetID, ok := resolve(link)
		if !ok {
			continue
		}
		if _, err := stmt.ExecContext(ctx, sourceID, targetID, string(link.Type), now); err != nil {
			return 0, agenterr.Wrap(agenterr.Catalog, err, "insert link")
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "commit replace links")
	}
	return stored, nil
}

// RebuildImportance recomputes and persists document importance scores for
// every active document (spec §4.5; delegates the algorithm to
// internal/graph.ComputeAndStore, which operates on the same *sql.DB).
func (c *Catalog) RebuildImportance(ctx context.Context) (int, error) {
	return graph.ComputeAndStore(ctx, c.db)
}
