// Package lexical implements the lexical search component (C8):
// full-text search against the catalog's documents_fts FTS5 table, with
// per-column BM25 weighting and metadata filters. The query text handed to
// Search is expected to already have been through the planner (§4.10) — any
// in-band k:v filters have been stripped into Options by the caller.
package lexical

import (
	"context"
	"database/sql"
	"strings"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/content"
	"github.com/epappas/agentroot-go/internal/vpath"
)

// bm25Weights are applied to documents_fts' bm25() call, in the fixed column
// order the virtual table was created with (spec §4.6): filepath, title,
// body, llm_summary, llm_title, llm_keywords, llm_intent, llm_concepts,
// user_metadata, modified_at.
const bm25Weights = `1.0, 10, 5, 8, 10, 15, 7, 12, 20, 0.1`

// Options filters and shapes a Search call (spec §4.8).
type Options struct {
	Collection string // exact match, "" means any
	Provider   string // exact match against the owning collection's provider, "" means any
	Category   string // exact match against llm_category, "" means any
	Difficulty string // exact match against llm_difficulty, "" means any
	Keyword    string // substring match against llm_keywords, "" means any

	// Limit caps the result count; 0 means no limit.
	Limit int
	// MinScore drops results scoring below this threshold after conversion.
	MinScore float64
	// FullContent includes the document body in each Result; otherwise Body
	// is empty and only BodyLength is populated.
	FullContent bool
}

// Result is one hit from Search, grounded on original_source's
// search::SearchResult.
type Result struct {
	VirtualPath    string // agentroot://<collection>/<path>
	DisplayPath    string // <collection>/<path>
	Title          string
	Hash           string
	DocID          string // first 6 hex chars of Hash
	CollectionName string
	ModifiedAt     string
	Body           string // empty unless Options.FullContent
	BodyLength     int
	Score          float64
	LLMSummary     string
	LLMTitle       string
	LLMKeywords    string
	LLMCategory    string
	LLMDifficulty  string
	UserMetadata   string
}

// Search runs a BM25 full-text query against documents_fts, joined back to
// documents (and collections, for the provider filter). query must already
// have any in-band k:v filters stripped; FTS5 MATCH syntax applies as-is.
func Search(ctx context.Context, db *sql.DB, query string, opts Options) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	sqlQuery := `
		SELECT
			d.collection, d.path, d.title, d.hash, d.modified_at,
			c.bytes, LENGTH(c.bytes),
			1.0 / (1.0 + (-1.0 * bm25(documents_fts, ` + bm25Weights + `))) as score,
			d.llm_summary, d.llm_title, d.llm_keywords, d.llm_category, d.llm_difficulty, d.user_metadata
		FROM documents_fts
		JOIN documents d ON d.id = documents_fts.rowid
		JOIN content c ON c.hash = d.hash
		JOIN collections coll ON coll.name = d.collection
		WHERE documents_fts MATCH ? AND d.active = 1
	`
	args := []any{query}

	if opts.Collection != "" {
		sqlQuery += " AND d.collection = ?"
		args = append(args, opts.Collection)
	}
	if opts.Provider != "" {
		sqlQuery += " AND coll.provider = ?"
		args = append(args, opts.Provider)
	}
	if opts.Category != "" {
		sqlQuery += " AND d.llm_category = ?"
		args = append(args, opts.Category)
	}
	if opts.Difficulty != "" {
		sqlQuery += " AND d.llm_difficulty = ?"
		args = append(args, opts.Difficulty)
	}
	if opts.Keyword != "" {
		sqlQuery += " AND d.llm_keywords LIKE ?"
		args = append(args, "%"+opts.Keyword+"%")
	}

	sqlQuery += " ORDER BY score DESC"
	if opts.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		if isFTS5SyntaxError(err) {
			return nil, nil
		}
		return nil, agenterr.Wrap(agenterr.Catalog, err, "lexical search")
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var collection, path string
		var body []byte
		if err := rows.Scan(
			&collection, &path, &r.Title, &r.Hash, &r.ModifiedAt,
			&body, &r.BodyLength, &r.Score,
			&r.LLMSummary, &r.LLMTitle, &r.LLMKeywords, &r.LLMCategory, &r.LLMDifficulty, &r.UserMetadata,
		); err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "scan lexical search row")
		}
		if r.Score < opts.MinScore {
			continue
		}
		r.CollectionName = collection
		r.DisplayPath = collection + "/" + path
		r.VirtualPath = vpath.Build(collection, path)
		r.DocID = content.ShortDocID(r.Hash)
		if opts.FullContent {
			r.Body = string(body)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func isFTS5SyntaxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5:") || strings.Contains(msg, "syntax error")
}
