package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/chunk"
)

// ChunkRow is a document_chunks row, the catalog's persisted form of a
// internal/chunk.Chunk (spec §4.6).
type ChunkRow struct {
	ID         int64
	DocumentID int64
	Position   int
	Kind       chunk.Kind
	Hash       string
	Text       string
	Breadcrumb string
	Language   string
	StartLine  int
	EndLine    int
}

// ReplaceChunks atomically swaps every chunk belonging to documentID for
// chunks — a whole-document replace, matching the teacher's and original's
// "chunk replace" ingest step (spec §5: grouped so a crash leaves either all
// or none visible).
func (c *Catalog) ReplaceChunks(ctx context.Context, documentID int64, chunks []chunk.Chunk) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "begin replace chunks")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, documentID); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "clear old chunks")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (document_id, position, kind, hash, text, breadcrumb, language, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "prepare insert chunk")
	}
	defer stmt.Close()

	for _, ch := range chunks {
		if _, err := stmt.ExecContext(ctx,
			documentID, ch.Position, string(ch.Kind), ch.Hash, ch.Text,
			ch.Metadata.Breadcrumb, ch.Metadata.Language, ch.Metadata.StartLine, ch.Metadata.EndLine,
		); err != nil {
			return agenterr.Wrap(agenterr.Catalog, err, "insert chunk")
		}
	}

	if err := tx.Commit(); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "commit replace chunks")
	}
	return nil
}

// GetChunksByDocument returns every chunk of documentID ordered by position.
func (c *Catalog) GetChunksByDocument(ctx context.Context, documentID int64) ([]ChunkRow, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, document_id, position, kind, hash, text, breadcrumb, language, start_line, end_line
		FROM document_chunks WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "get chunks by document")
	}
	defer rows.Close()

	var out []ChunkRow
	for rows.Next() {
		var row ChunkRow
		var kind string
		if err := rows.Scan(&row.ID, &row.DocumentID, &row.Position, &kind, &row.Hash, &row.Text,
			&row.Breadcrumb, &row.Language, &row.StartLine, &row.EndLine); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan chunk row")
		}
		row.Kind = chunk.Kind(kind)
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetChunkByHash looks up a single chunk by its content hash (spec §8:
// chunk hash equality invariant makes this a stable lookup key).
func (c *Catalog) GetChunkByHash(ctx context.Context, hash string) (row ChunkRow, ok bool, err error) {
	r := c.db.QueryRowContext(ctx, `
		SELECT id, document_id, position, kind, hash, text, breadcrumb, language, start_line, end_line
		FROM document_chunks WHERE hash = ? LIMIT 1
	`, hash)
	var kind string
	err = r.Scan(&row.ID, &row.DocumentID, &row.Position, &kind, &row.Hash, &row.Text,
		&row.Breadcrumb, &row.Language, &row.StartLine, &row.EndLine)
	if errors.Is(err, sql.ErrNoRows) {
		return ChunkRow{}, false, nil
	}
	if err != nil {
		return ChunkRow{}, false, agenterr.Wrap(agenterr.Catalog, err, "get chunk by hash")
	}
	row.Kind = chunk.Kind(kind)
	return row, true, nil
}
