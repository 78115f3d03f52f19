package agentroot

import (
	"context"
	"strings"
	"time"

	"github.com/epappas/agentroot-go/internal/content"
	"github.com/epappas/agentroot-go/internal/lexical"
	"github.com/epappas/agentroot-go/internal/query"
	"github.com/epappas/agentroot-go/internal/ranking"
	"github.com/epappas/agentroot-go/internal/vectorindex"
	"github.com/epappas/agentroot-go/internal/vpath"
)

// SearchParams are the per-call knobs a caller passes to Search/SmartSearch.
type SearchParams struct {
	// SessionID, if non-empty, demotes already-seen results and is updated
	// with this call's top hits for the next call (spec §4.11).
	SessionID string
	// Limit caps the returned result count; 0 uses the ranking config's
	// DefaultMaxResults.
	Limit int
	// MinScore drops results scoring below this threshold.
	MinScore float64
	// FullContent includes each result's full body; otherwise only a
	// snippet and BodyLength are populated.
	FullContent bool
}

// Result is one hydrated search hit: a ranking.Item's score and source
// joined back against its owning document's catalog row (spec §4.1's
// result record).
type Result struct {
	VirtualPath   string
	DisplayPath   string
	Title         string
	Hash          string
	ShortDocID    string
	Collection    string
	ModifiedAt    time.Time
	Body          string // empty unless SearchParams.FullContent
	BodyLength    int
	Score         float64
	Source        string
	Snippet       string
	LLMSummary    string
	LLMTitle      string
	LLMKeywords   string
	LLMCategory   string
	LLMDifficulty string
	UserMetadata  string
}

// SearchResponse is what Search/SmartSearch return: the hydrated results,
// the strategy actually used, any non-fatal warnings raised along the way,
// and the companion "related searches" suggestions.
type SearchResponse struct {
	Results     []Result
	Strategy    string
	Warnings    []string
	Suggestions ranking.Suggestions
}

// Search runs the default hybrid pipeline (internal/ranking.RunHybrid).
func (a *App) Search(ctx context.Context, rawQuery string, p SearchParams) (SearchResponse, error) {
	return a.search(ctx, rawQuery, p, false)
}

// SmartSearch runs the workflow-planner strategy selection
// (internal/query.SmartSearch), falling back to the same hybrid pipeline
// Search uses when no planner is attached or planning/execution fails.
func (a *App) SmartSearch(ctx context.Context, rawQuery string, p SearchParams) (SearchResponse, error) {
	return a.search(ctx, rawQuery, p, true)
}

func (a *App) search(ctx context.Context, rawQuery string, p SearchParams, smart bool) (SearchResponse, error) {
	plan := query.Parse(rawQuery)

	limit := p.Limit
	if limit <= 0 {
		limit = a.cfg.Ranking.DefaultMaxResults
	}

	var seen map[string]struct{}
	if p.SessionID != "" {
		var err error
		seen, err = a.cat.GetSeenHashes(ctx, p.SessionID)
		if err != nil {
			return SearchResponse{}, err
		}
	}

	searchers := a.searchers(plan.Filters, p.FullContent)
	collab := a.collaboratorsFor(plan.Type)
	hybridParams := ranking.HybridParams{Limit: limit, MinScore: p.MinScore, Seen: seen}

	var hres ranking.HybridResult
	var err error
	if smart {
		hres, err = query.SmartSearch(ctx, plan.CleanQuery, query.SmartSearchParams{
			HasEmbeddings: a.collab.Embedder != nil,
			Searchers:     searchers,
			Collaborators: collab,
			Planner:       a.collab.Planner,
			Config:        a.cfg.Ranking,
			Hybrid:        hybridParams,
		})
	} else {
		hres, err = ranking.RunHybrid(ctx, plan.CleanQuery, searchers, collab, a.cfg.Ranking, hybridParams, a.logger)
	}
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]Result, 0, len(hres.Items))
	for _, item := range hres.Items {
		r, ok, hydrateErr := a.hydrate(ctx, item, plan.CleanQuery, p.FullContent)
		if hydrateErr != nil {
			return SearchResponse{}, hydrateErr
		}
		if !ok {
			continue
		}
		results = append(results, r)
	}

	suggestions, err := ranking.ComputeSuggestions(ctx, hres.Items, plan.CleanQuery, seen, a.keywordLookup, a.unseenCounter)
	if err != nil {
		a.logger.Warn("compute suggestions failed", "error", err)
	}

	if p.SessionID != "" {
		if err := a.sessions.LogResults(ctx, p.SessionID, rawQuery, hres.Items, ""); err != nil {
			a.logger.Warn("log session results failed", "error", err)
		}
	}

	return SearchResponse{
		Results:     results,
		Strategy:    hres.Strategy.String(),
		Warnings:    hres.Warnings,
		Suggestions: suggestions,
	}, nil
}

// collaboratorsFor applies the query classifier's pool-selection hint
// (internal/query's Type): a Lexical query runs BM25 only, so the vector
// pool, expander, and reranker are all withheld rather than spent on a query
// exact/keyword matching already serves well.
func (a *App) collaboratorsFor(t query.Type) ranking.Collaborators {
	if t == query.Lexical {
		return ranking.Collaborators{}
	}
	return ranking.Collaborators{
		Embedder: a.collab.Embedder,
		Expander: a.collab.Expander,
		Reranker: a.collab.Reranker,
	}
}

// searchers builds the BM25/vector/chunk-resolver function values RunHybrid
// and SmartSearch's executor need, closed over this App's catalog, chunk
// index, and vector index.
func (a *App) searchers(filters lexical.Options, fullContent bool) ranking.Searchers {
	filters.FullContent = fullContent

	bm25 := func(ctx context.Context, q string) ([]ranking.Item, error) {
		hits, err := lexical.Search(ctx, a.cat.DB(), q, filters)
		if err != nil {
			return nil, err
		}
		items := make([]ranking.Item, len(hits))
		for i, h := range hits {
			items[i] = ranking.Item{Hash: h.Hash, Filepath: h.VirtualPath, Score: h.Score, Source: ranking.SourceBM25}
		}
		return items, nil
	}

	vector := func(ctx context.Context, vec []float32, k int) ([]vectorindex.Result, error) {
		return a.vector.Search(ctx, vec, k)
	}

	resolve := func(ctx context.Context, chunkHash string) (docHash, filepath string, ok bool, err error) {
		row, ok, err := a.cat.GetChunkByHash(ctx, chunkHash)
		if err != nil || !ok {
			return "", "", false, err
		}
		doc, ok, err := a.cat.GetDocument(ctx, row.DocumentID)
		if err != nil || !ok {
			return "", "", false, err
		}
		return doc.Hash, vpath.Build(doc.Collection, doc.Path), true, nil
	}

	return ranking.Searchers{BM25: bm25, Vector: vector, ResolveChunk: resolve}
}

// keywordLookup implements ranking.KeywordLookup over the catalog's
// comma-joined llm_keywords column.
func (a *App) keywordLookup(ctx context.Context, docHash string) ([]string, bool, error) {
	doc, ok, err := a.cat.FindDocumentByHash(ctx, docHash)
	if err != nil || !ok {
		return nil, ok, err
	}
	if doc.LLMKeywords == "" {
		return nil, true, nil
	}
	return strings.Split(doc.LLMKeywords, ","), true, nil
}

// unseenCounter implements ranking.UnseenCounter: how many active documents
// under any of dirs (each a virtual-path directory prefix) aren't in seen.
func (a *App) unseenCounter(ctx context.Context, dirs []string, seen map[string]struct{}) (int, error) {
	docs, err := a.cat.ListActiveDocuments(ctx, "")
	if err != nil {
		return 0, err
	}
	count := 0
	for _, doc := range docs {
		if _, alreadySeen := seen[doc.Hash]; alreadySeen {
			continue
		}
		virtual := vpath.Build(doc.Collection, doc.Path)
		for _, dir := range dirs {
			if strings.HasPrefix(virtual, dir+"/") {
				count++
				break
			}
		}
	}
	return count, nil
}

// hydrate joins a ranked Item back to its owning document and renders a
// display snippet, since the ranking pipeline itself only ever carries a
// hash/filepath/score.
func (a *App) hydrate(ctx context.Context, item ranking.Item, rawQuery string, fullContent bool) (Result, bool, error) {
	doc, ok, err := a.cat.FindDocumentByHash(ctx, item.Hash)
	if err != nil || !ok {
		return Result{}, false, err
	}

	r := Result{
		VirtualPath:   vpath.Build(doc.Collection, doc.Path),
		DisplayPath:   doc.Collection + "/" + doc.Path,
		Title:         doc.Title,
		Hash:          doc.Hash,
		ShortDocID:    content.ShortDocID(doc.Hash),
		Collection:    doc.Collection,
		ModifiedAt:    doc.ModifiedAt,
		Score:         item.Score,
		Source:        item.Source.String(),
		LLMSummary:    doc.LLMSummary,
		LLMTitle:      doc.LLMTitle,
		LLMKeywords:   doc.LLMKeywords,
		LLMCategory:   doc.LLMCategory,
		LLMDifficulty: doc.LLMDifficulty,
		UserMetadata:  doc.UserMetadata,
	}

	if body, ok, err := content.NewStore(a.cat.DB()).GetContent(ctx, doc.Hash); err == nil && ok {
		r.BodyLength = len(body)
		r.Snippet = content.Snippet(string(body), rawQuery)
		if fullContent {
			r.Body = string(body)
		}
	}
	return r, true, nil
}
