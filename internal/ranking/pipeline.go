package ranking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/epappas/agentroot-go/internal/llm"
	"github.com/epappas/agentroot-go/internal/rootconfig"
	"github.com/epappas/agentroot-go/internal/rootlog"
	"github.com/epappas/agentroot-go/internal/vectorindex"
)

// Options is the ranking pipeline's tunable configuration: the strong-signal
// threshold and every RRF/blend constant, made configurable rather than
// hardcoded. It is an alias rather than a new struct: rootconfig already
// owns every component's settings, YAML parsing, and env overrides in one
// place, and the ranking functions below took a rootconfig.RankingConfig
// long before this name was pinned down.
type Options = rootconfig.RankingConfig

// BM25Search runs a lexical query over document text and returns hits
// already shaped as document-keyed Items (Source is expected to be
// SourceBM25).
type BM25Search func(ctx context.Context, query string) ([]Item, error)

// VectorSearch runs a similarity search over chunk embeddings.
type VectorSearch func(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error)

// ChunkResolver maps a chunk hash back to the document that owns it, so a
// chunk-keyed vector hit can be fused with document-keyed BM25 hits (spec
// §4.9: Reciprocal Rank Fusion is "keyed by document hash").
type ChunkResolver func(ctx context.Context, chunkHash string) (docHash, filepath string, ok bool, err error)

// Searchers bundles the two retrieval backends RunHybrid fuses, plus the
// chunk-to-document resolver the vector pool needs.
type Searchers struct {
	BM25          BM25Search
	Vector        VectorSearch
	ResolveChunk  ChunkResolver
	VectorResults int // how many chunk hits to request per vector call; 0 defaults to 20
}

// Collaborators bundles the optional LLM-backed stages of the hybrid
// pipeline (spec §4.12). Every field may be nil: a nil Embedder or Vector
// searcher skips vector search entirely, a nil Expander skips query
// expansion, a nil Reranker skips the rerank/blend step. None of these are
// fatal (spec §5's failure policy).
type Collaborators struct {
	Embedder llm.Embedder
	Expander llm.QueryExpander
	Reranker llm.Reranker
}

// HybridParams are the per-call knobs RunHybrid needs beyond the static
// Options/Collaborators/Searchers wiring.
type HybridParams struct {
	Limit    int
	MinScore float64
	Seen     map[string]struct{} // session-seen hashes, for session demotion
}

// HybridResult is RunHybrid's output: the ranked items plus any non-fatal
// warnings raised along the way (spec §5: "a missing or failing vector
// index silently downgrades hybrid to BM25 ... with a user-visible warning
// via the warning channel").
type HybridResult struct {
	Items    []Item
	Strategy Source // SourceBM25 if the strong-signal short-circuit fired, SourceHybrid otherwise
	Warnings []string
}

// RunHybrid assembles the full §4.9 hybrid pipeline: BM25, a strong-signal
// short-circuit, vector search with query-expansion fan-out, Reciprocal Rank
// Fusion, an optional rerank/blend pass, directory boost, session demotion,
// and the final min-score/limit filter (original's hybrid_search).
func RunHybrid(ctx context.Context, query string, searchers Searchers, collab Collaborators, cfg Options, params HybridParams, logger *slog.Logger) (HybridResult, error) {
	if logger == nil {
		logger = rootlog.Default()
	}

	bm25, err := searchers.BM25(ctx, query)
	if err != nil {
		return HybridResult{}, err
	}

	var ranked []Item
	var warnings []string
	strategy := SourceHybrid

	if HasStrongSignal(bm25, cfg) {
		ranked = bm25
		strategy = SourceBM25
	} else {
		bm25Pool := append([]Item{}, bm25...)
		vecPool, warn := VectorStep(ctx, searchers, collab.Embedder, query, cfg)
		if warn != "" {
			warnings = append(warnings, warn)
		}

		if collab.Expander != nil {
			expanded, expErr := collab.Expander.Expand(ctx, query, "")
			if expErr != nil {
				logger.Warn("query expansion failed, continuing without it", "error", expErr)
				warnings = append(warnings, "query expansion failed: "+expErr.Error())
			} else {
				for _, variant := range expanded.Lexical {
					extra, bmErr := searchers.BM25(ctx, variant)
					if bmErr != nil {
						logger.Warn("lexical expansion variant failed", "variant", variant, "error", bmErr)
						continue
					}
					bm25Pool = append(bm25Pool, extra...)
				}
				semanticVariants := append([]string{}, expanded.Semantic...)
				if expanded.HyDE != "" {
					semanticVariants = append(semanticVariants, expanded.HyDE)
				}
				for _, variant := range semanticVariants {
					extra, warn := VectorStep(ctx, searchers, collab.Embedder, variant, cfg)
					if warn != "" {
						warnings = append(warnings, warn)
						continue
					}
					vecPool = append(vecPool, extra...)
				}
			}
		}

		fused := Fuse(bm25Pool, vecPool, cfg)
		capped := CapForRerank(fused, cfg)

		if collab.Reranker != nil {
			scores, rerankErr := rerankScores(ctx, collab.Reranker, query, capped)
			if rerankErr != nil {
				logger.Warn("reranker failed, keeping fused order", "error", rerankErr)
				warnings = append(warnings, "reranker failed: "+rerankErr.Error())
			} else {
				BlendRerankScores(capped, scores, cfg)
			}
		}
		ranked = capped
	}

	ApplyDirectoryBoost(ranked, cfg)
	if len(params.Seen) > 0 {
		ApplySessionDemotion(ranked, params.Seen, cfg)
	}

	return HybridResult{
		Items:    FinalFilter(ranked, params.Limit, params.MinScore),
		Strategy: strategy,
		Warnings: warnings,
	}, nil
}

// VectorStep embeds text, runs the vector search, and resolves chunk hits
// to document-keyed Items, deduplicating by document (keeping the
// best-scoring chunk per document, since vectorindex.Search already returns
// hits sorted by descending score). Any failure downgrades to "no vector
// results" plus a warning string rather than aborting the pipeline. Exported
// so the smart-search planner (internal/query) can run a bare vector step
// without duplicating this resolution logic.
func VectorStep(ctx context.Context, searchers Searchers, embedder llm.Embedder, text string, cfg Options) ([]Item, string) {
	if embedder == nil || searchers.Vector == nil {
		return nil, ""
	}
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Sprintf("vector search unavailable: embed query: %v", err)
	}
	k := searchers.VectorResults
	if k <= 0 {
		k = 20
	}
	hits, err := searchers.Vector(ctx, vec, k)
	if err != nil {
		return nil, fmt.Sprintf("vector search unavailable: %v", err)
	}

	seen := make(map[string]struct{}, len(hits))
	items := make([]Item, 0, len(hits))
	for _, h := range hits {
		if searchers.ResolveChunk == nil {
			break
		}
		docHash, filepath, ok, err := searchers.ResolveChunk(ctx, h.ChunkHash)
		if err != nil || !ok {
			continue
		}
		if _, dup := seen[docHash]; dup {
			continue
		}
		seen[docHash] = struct{}{}
		items = append(items, Item{Hash: docHash, Filepath: filepath, Score: h.Score, Source: SourceVector})
	}
	return items, ""
}

// rerankScores calls the reranker on the top llm.MaxRerankDocuments of
// items (spec §4.12: "input size is capped at 10 by core for reliability"),
// filling in the default neutral score for any id the reranker's response
// omits.
func rerankScores(ctx context.Context, reranker llm.Reranker, query string, items []Item) (map[string]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	capped := items
	if len(capped) > llm.MaxRerankDocuments {
		capped = capped[:llm.MaxRerankDocuments]
	}

	docs := make([]llm.RerankDocument, len(capped))
	scores := make(map[string]float64, len(capped))
	for i, it := range capped {
		docs[i] = llm.RerankDocument{ID: it.Hash, Text: it.Filepath}
		scores[it.Hash] = llm.DefaultRerankScore
	}

	results, err := reranker.Rerank(ctx, query, docs)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		scores[r.ID] = r.Score
	}
	return scores, nil
}

// Rerank asks reranker to score items against query and blends the result
// into their scores in place, re-sorting descending (spec §4.9 step 6).
// Exported so the smart-search planner's "rerank" step (internal/query) can
// reuse the same reranker-call-plus-blend logic as the hybrid pipeline.
func Rerank(ctx context.Context, reranker llm.Reranker, query string, items []Item, cfg Options) ([]Item, error) {
	scores, err := rerankScores(ctx, reranker, query, items)
	if err != nil {
		return items, err
	}
	BlendRerankScores(items, scores, cfg)
	return items, nil
}
