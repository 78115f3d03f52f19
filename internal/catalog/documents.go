package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// Document is a row of the documents table (spec §3, §4.6).
type Document struct {
	ID               int64
	Collection       string
	Path             string
	Title            string
	Hash             string
	Active           bool
	ImportanceScore  float64
	LLMSummary       string
	LLMTitle         string
	LLMKeywords      string
	LLMIntent        string
	LLMConcepts      string
	LLMCategory      string
	LLMDifficulty    string
	UserMetadata     string
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

const documentSelectColumns = `
	id, collection, path, title, hash, active, importance_score,
	llm_summary, llm_title, llm_keywords, llm_intent, llm_concepts,
	llm_category, llm_difficulty, user_metadata, created_at, modified_at
`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	var active int
	err := row.Scan(
		&d.ID, &d.Collection, &d.Path, &d.Title, &d.Hash, &active, &d.ImportanceScore,
		&d.LLMSummary, &d.LLMTitle, &d.LLMKeywords, &d.LLMIntent, &d.LLMConcepts,
		&d.LLMCategory, &d.LLMDifficulty, &d.UserMetadata, &d.CreatedAt, &d.ModifiedAt,
	)
	d.Active = active != 0
	return d, err
}

// InsertDocument creates a new document row and its documents_fts mirror
// (body is the document's full text, for the fts5 body column — spec §4.6),
// returning the assigned id. body is also stored as the content blob under
// hash unless a blob with that hash already exists.
func (c *Catalog) InsertDocument(ctx context.Context, collection, path, title, hash, body string) (int64, error) {
	now := time.Now().UTC()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "begin insert document")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO content (hash, bytes, created_at) VALUES (?, ?, ?) ON CONFLICT(hash) DO NOTHING`,
		hash, []byte(body), now,
	); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "insert document content")
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO documents (collection, path, title, hash, active, created_at, modified_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?)`,
		collection, path, title, hash, now, now,
	)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "insert document")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "insert document: last insert id")
	}
	if err := syncDocumentFTS(ctx, tx, id, path, title, body, "", "", "", "", "", now); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "commit insert document")
	}
	return id, nil
}

// UpdateDocument replaces a document's title/hash/body after its content
// changed, bumping modified_at (spec §8 scenario 3, "Reindex edit"). body is
// also stored as the content blob under hash unless one already exists.
func (c *Catalog) UpdateDocument(ctx context.Context, id int64, title, hash, body string) error {
	now := time.Now().UTC()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "begin update document")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO content (hash, bytes, created_at) VALUES (?, ?, ?) ON CONFLICT(hash) DO NOTHING`,
		hash, []byte(body), now,
	); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document content")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET title = ?, hash = ?, modified_at = ?, active = 1 WHERE id = ?`,
		title, hash, now, id,
	); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE rowid = ?`, id); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document fts: delete")
	}
	var path string
	if err := tx.QueryRowContext(ctx, `SELECT path FROM documents WHERE id = ?`, id).Scan(&path); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document fts: reload path")
	}
	if err := syncDocumentFTS(ctx, tx, id, path, title, body, "", "", "", "", "", now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "commit update document")
	}
	return nil
}

// UpdateDocumentMetadata overwrites a document's LLM-derived fields (spec
// §4.12 MetadataGenerator output) and its user metadata, refreshing the
// documents_fts mirror. Used by RegenerateMetadata (spec §9 Open Question).
func (c *Catalog) UpdateDocumentMetadata(ctx context.Context, id int64, summary, llmTitle, keywords, intent, concepts, category, difficulty, userMetadata string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "begin update document metadata")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET llm_summary = ?, llm_title = ?, llm_keywords = ?, llm_intent = ?,
		 llm_concepts = ?, llm_category = ?, llm_difficulty = ?, user_metadata = ? WHERE id = ?`,
		summary, llmTitle, keywords, intent, concepts, category, difficulty, userMetadata, id,
	); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document metadata")
	}

	var path, title string
	var modifiedAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT path, title, modified_at FROM documents WHERE id = ?`, id).
		Scan(&path, &title, &modifiedAt); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document metadata: reload")
	}
	var body string
	_ = tx.QueryRowContext(ctx, `SELECT body FROM documents_fts WHERE rowid = ?`, id).Scan(&body)

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE rowid = ?`, id); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "update document metadata fts: delete")
	}
	if err := syncDocumentFTS(ctx, tx, id, path, title, body, summary, llmTitle, keywords, intent, concepts, userMetadata, modifiedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "commit update document metadata")
	}
	return nil
}

// FindActiveDocument looks up the active document at collection/path.
func (c *Catalog) FindActiveDocument(ctx context.Context, collection, path string) (doc Document, ok bool, err error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+documentSelectColumns+` FROM documents WHERE collection = ? AND path = ? AND active = 1`,
		collection, path,
	)
	doc, err = scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, agenterr.Wrap(agenterr.Catalog, err, "find active document")
	}
	return doc, true, nil
}

// FindDocumentByHash looks up the active document carrying hash. Content
// hashes are shared across identical files (spec §3), so more than one
// active document can carry the same hash; this returns whichever the
// database happens to return first, which is enough for hydrating a search
// hit back into its source record (the ranking pipeline works in document
// hashes, not ids).
func (c *Catalog) FindDocumentByHash(ctx context.Context, hash string) (doc Document, ok bool, err error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+documentSelectColumns+` FROM documents WHERE hash = ? AND active = 1 LIMIT 1`, hash)
	doc, err = scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, agenterr.Wrap(agenterr.Catalog, err, "find document by hash")
	}
	return doc, true, nil
}

// GetDocument looks up a document by id.
func (c *Catalog) GetDocument(ctx context.Context, id int64) (doc Document, ok bool, err error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+documentSelectColumns+` FROM documents WHERE id = ?`, id)
	doc, err = scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, agenterr.Wrap(agenterr.Catalog, err, "get document")
	}
	return doc, true, nil
}

// ListActiveDocuments returns every active document in a collection
// ("" means every collection), ordered by path.
func (c *Catalog) ListActiveDocuments(ctx context.Context, collection string) ([]Document, error) {
	query := `SELECT ` + documentSelectColumns + ` FROM documents WHERE active = 1`
	args := []any{}
	if collection != "" {
		query += ` AND collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY path`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Catalog, err, "list active documents")
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan document row")
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeactivateMissing marks inactive every document in collection whose path
// is not in keepPaths — the other half of a whole-collection reindex (spec
// §5: "documents no longer present in the scan are deactivated in the same
// batch").
func (c *Catalog) DeactivateMissing(ctx context.Context, collection string, keepPaths []string) (int, error) {
	keep := make(map[string]struct{}, len(keepPaths))
	for _, p := range keepPaths {
		keep[p] = struct{}{}
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, path FROM documents WHERE collection = ? AND active = 1`, collection)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "deactivate missing: list")
	}
	var toDeactivate []int64
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return 0, agenterr.Wrap(agenterr.Catalog, err, "deactivate missing: scan")
		}
		if _, ok := keep[path]; !ok {
			toDeactivate = append(toDeactivate, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, agenterr.Wrap(agenterr.Catalog, err, "deactivate missing: iterate")
	}
	rows.Close()
	if len(toDeactivate) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "begin deactivate missing")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE documents SET active = 0 WHERE id = ?`)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "prepare deactivate missing")
	}
	defer stmt.Close()
	for _, id := range toDeactivate {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, agenterr.Wrap(agenterr.Catalog, err, "deactivate missing document")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, agenterr.Wrap(agenterr.Catalog, err, "commit deactivate missing")
	}
	return len(toDeactivate), nil
}

func syncDocumentFTS(ctx context.Context, tx *sql.Tx, id int64, path, title, body, summary, llmTitle, keywords, intent, concepts, userMetadata string, modifiedAt time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO documents_fts (rowid, filepath, title, body, llm_summary, llm_title, llm_keywords, llm_intent, llm_concepts, user_metadata, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, path, title, body, summary, llmTitle, keywords, intent, concepts, userMetadata, modifiedAt.Format(time.RFC3339),
	)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "sync documents_fts")
	}
	return nil
}
