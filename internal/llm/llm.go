// Package llm defines the LLM collaborator contracts (C12): embedding,
// reranking, query expansion, and document metadata generation. Core
// consumes these interfaces only — it never calls an HTTP endpoint or loads
// a model itself; a caller wires in a concrete collaborator (or none at
// all, in which case the pipeline downgrades per spec §5's failure policy).
package llm

import "context"

// Embedder turns text into a fixed-dimension vector. Returned vectors are
// expected at the declared Dimensions(); core L2-normalizes before storing
// (internal/vectorindex), so an Embedder need not normalize itself.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
}

// RerankDocument is one candidate handed to a Reranker.
type RerankDocument struct {
	ID   string
	Text string
}

// RerankResult is a Reranker's opinion of one document's relevance,
// score normalized to [0,1].
type RerankResult struct {
	ID    string
	Score float64
}

// MaxRerankDocuments caps how many documents core will ever hand to a
// Reranker in one call (spec §4.12 — "input size is capped at 10 by core
// for reliability").
const MaxRerankDocuments = 10

// Reranker scores how relevant each of a capped set of documents is to a
// query.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []RerankDocument) ([]RerankResult, error)
	ModelName() string
}

// ExpandedQuery is a QueryExpander's variants on an original query.
type ExpandedQuery struct {
	Lexical  []string
	Semantic []string
	HyDE     string
}

// QueryExpander produces lexical/semantic query variants (and optionally a
// hypothetical-document embedding seed) from a raw query and optional
// context text (internal/catalog's resolved path-prefix context).
type QueryExpander interface {
	Expand(ctx context.Context, query string, context string) (ExpandedQuery, error)
	ModelName() string
}

// DocumentMetadata is what a MetadataGenerator produces for one document.
type DocumentMetadata struct {
	SemanticTitle    string
	Summary          string
	Keywords         []string
	Category         string
	Difficulty       string
	Intent           string
	Concepts         []string
	SuggestedQueries []string
}

// MetadataContext is the input a MetadataGenerator reasons over: the
// document body plus whatever path-prefix context was resolved for it.
type MetadataContext struct {
	Path    string
	Body    string
	Context string
}

// MetadataGenerator derives searchable metadata for one document. Results
// are cached by the caller under "metadata:v1:<content_hash>" in the
// catalog's llm_cache table (internal/catalog.GetLLMCache/SetLLMCache) —
// MetadataGenerator itself is stateless and does no caching.
type MetadataGenerator interface {
	Generate(ctx context.Context, doc MetadataContext) (DocumentMetadata, error)
	ModelName() string
}

// DefaultRerankScore is substituted for any document id a Reranker's
// response omits, keeping ranking neutral rather than penalizing documents
// the collaborator simply didn't answer for. When the Reranker call fails
// outright, the ranking pipeline skips the rerank blend and keeps the fused
// order instead.
const DefaultRerankScore = 0.5

// DefaultExpansion is substituted when a QueryExpander fails or is absent:
// no lexical/semantic variants, so the pipeline proceeds on the original
// query alone.
func DefaultExpansion() ExpandedQuery {
	return ExpandedQuery{}
}
