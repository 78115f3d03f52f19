package graph

import (
	"context"
	"database/sql"
	"strings"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// docType classifies a document by path for importance weighting (spec §4.5).
type docType int

const (
	docTypeReadme docType = iota
	docTypeUserDoc
	docTypeMetaDoc
	docTypeCodeFile
)

func (d docType) baseWeight() float64 {
	switch d {
	case docTypeReadme:
		return 2.0
	case docTypeUserDoc:
		return 1.8
	case docTypeMetaDoc:
		return 0.6
	default:
		return 1.0
	}
}

func classifyDocument(path string) docType {
	switch {
	case path == "README.md" || strings.HasSuffix(path, "/README.md"):
		return docTypeReadme
	case strings.HasPrefix(path, "docs/") && strings.HasSuffix(path, ".md"):
		return docTypeUserDoc
	case strings.HasSuffix(path, ".md"):
		return docTypeMetaDoc
	default:
		return docTypeCodeFile
	}
}

const (
	maxInboundBonus  = 2.0
	inboundBonusUnit = 0.3
)

// ComputeImportance scores every active document in the catalog using
// type-weighted, non-iterative importance (spec §4.5): base weight by path
// classification, times one plus a bonus capped at 2.0 for inbound links.
// It operates on the catalog's "documents"/"document_links" tables through
// a shared *sql.DB handle; schema ownership lives in internal/catalog.
func ComputeImportance(ctx context.Context, db *sql.DB) (map[int64]float64, error) {
	docs, err := documentPaths(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return map[int64]float64{}, nil
	}

	inbound, err := inboundCounts(ctx, db)
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64, len(docs))
	for id, p := range docs {
		base := classifyDocument(p).baseWeight()
		bonus := float64(inbound[id]) * inboundBonusUnit
		if bonus > maxInboundBonus {
			bonus = maxInboundBonus
		}
		scores[id] = base * (1.0 + bonus)
	}
	return scores, nil
}

func documentPaths(ctx context.Context, db *sql.DB) (map[int64]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, path FROM documents WHERE active = 1`)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "select active documents")
	}
	defer rows.Close()

	docs := make(map[int64]string)
	for rows.Next() {
		var id int64
		var p string
		if err := rows.Scan(&id, &p); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan document row")
		}
		docs[id] = p
	}
	return docs, rows.Err()
}

func inboundCounts(ctx context.Context, db *sql.DB) (map[int64]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT target_id FROM document_links`)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "select document links")
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var target int64
		if err := rows.Scan(&target); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan document link row")
		}
		counts[target]++
	}
	return counts, rows.Err()
}

// StoreImportance overwrites every document's stored importance score
// (spec §4.5: "rebuilt wholesale by compute_and_store_pagerank").
func StoreImportance(ctx context.Context, db *sql.DB, scores map[int64]float64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "begin importance update")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE documents SET importance_score = ? WHERE id = ?`)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "prepare importance update")
	}
	defer stmt.Close()

	for id, score := range scores {
		if _, err := stmt.ExecContext(ctx, score, id); err != nil {
			return agenterr.Wrap(agenterr.Catalog, err, "update importance score")
		}
	}

	if err := tx.Commit(); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "commit importance update")
	}
	return nil
}

// ComputeAndStore recomputes and persists importance for every active
// document, returning the number of rows updated.
func ComputeAndStore(ctx context.Context, db *sql.DB) (int, error) {
	scores, err := ComputeImportance(ctx, db)
	if err != nil {
		return 0, err
	}
	if err := StoreImportance(ctx, db, scores); err != nil {
		return 0, err
	}
	return len(scores), nil
}
