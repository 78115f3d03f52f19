package catalog

import (
	"context"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// DatabaseStats summarizes the catalog's overall size, grounded on
// original_source's db/stats.rs::DatabaseStats.
type DatabaseStats struct {
	CollectionCount int
	DocumentCount   int
	EmbeddedCount   int
	PendingEmbedding int
}

// Stats computes DatabaseStats for the current embedding model.
func (c *Catalog) Stats(ctx context.Context, embeddingModel string) (DatabaseStats, error) {
	var s DatabaseStats
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&s.CollectionCount); err != nil {
		return DatabaseStats{}, agenterr.Wrap(agenterr.Catalog, err, "count collections")
	}
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&s.DocumentCount); err != nil {
		return DatabaseStats{}, agenterr.Wrap(agenterr.Catalog, err, "count documents")
	}
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT chunk_hash) FROM content_embeddings WHERE model = ?`, embeddingModel,
	).Scan(&s.EmbeddedCount); err != nil {
		return DatabaseStats{}, agenterr.Wrap(agenterr.Catalog, err, "count embedded chunks")
	}
	if err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT dc.hash) FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id AND d.active = 1
		WHERE dc.hash NOT IN (SELECT DISTINCT chunk_hash FROM content_embeddings WHERE model = ?)
	`, embeddingModel).Scan(&s.PendingEmbedding); err != nil {
		return DatabaseStats{}, agenterr.Wrap(agenterr.Catalog, err, "count pending embeddings")
	}
	return s, nil
}

// Vacuum reclaims space in the catalog file.
func (c *Catalog) Vacuum(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `VACUUM`); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "vacuum")
	}
	return nil
}

// CleanupOrphanedVectors removes embeddings whose chunk hash no longer
// belongs to any active document's chunk set, returning the count removed.
func (c *Catalog) CleanupOrphanedVectors(ctx context.Context) (int, error) {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM content_embeddings WHERE chunk_hash NOT IN (
			SELECT DISTINCT dc.hash FROM document_chunks dc
			JOIN documents d ON d.id = dc.document_id AND d.active = 1
		)
	`)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "cleanup orphaned vectors")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "cleanup orphaned vectors: rows affected")
	}
	return int(n), nil
}

// ImportanceDoc is one row of ImportanceStats' top-documents list.
type ImportanceDoc struct {
	VirtualPath string
	Score       float64
}

// ImportanceStats returns the active document count and the top 10 documents
// by importance score (original_source's db/pagerank.rs::get_pagerank_stats,
// SPEC_FULL.md supplemented-feature 3).
func (c *Catalog) ImportanceStats(ctx context.Context) (docCount int, top []ImportanceDoc, err error) {
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&docCount); err != nil {
		return 0, nil, agenterr.Wrap(agenterr.Catalog, err, "count active documents")
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT collection || '/' || path, importance_score
		FROM documents WHERE active = 1
		ORDER BY importance_score DESC
		LIMIT 10
	`)
	if err != nil {
		return 0, nil, agenterr.Wrap(agenterr.Catalog, err, "top importance documents")
	}
	defer rows.Close()

	for rows.Next() {
		var doc ImportanceDoc
		if err := rows.Scan(&doc.VirtualPath, &doc.Score); err != nil {
			return 0, nil, agenterr.Wrap(agenterr.Catalog, err, "scan importance row")
		}
		top = append(top, doc)
	}
	return docCount, top, rows.Err()
}
