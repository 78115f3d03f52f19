// Package vectorindex implements the vector search component (C7): an index
// over chunk embeddings that is rebuilt from the catalog on open (or after an
// ingest that changed vectors). Below a configurable threshold no graph is
// built (Built reports false) and every query uses an exact cosine scan; at
// or above it, a coder/hnsw graph is built keyed by chunk hash.
package vectorindex

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// Result is one hit from Search, ordered by descending Score.
type Result struct {
	ChunkHash string
	Score     float64 // cosine similarity, in [-1, 1]
}

// Options configures an Index.
type Options struct {
	// Dimensions every stored and queried vector must have.
	Dimensions int
	// HNSWThreshold is the embedding count at or above which an HNSW graph is
	// built instead of relying on exact scan (spec §4.7, default 1000).
	HNSWThreshold int
}

// EmbeddingSource supplies the catalog's stored embeddings for a given model.
// Implemented by *catalog.Catalog's AllEmbeddings.
type EmbeddingSource interface {
	AllEmbeddings(ctx context.Context, model string) (map[string][]float32, error)
}

// Index holds normalized chunk-hash-keyed vectors and, once the corpus
// reaches the threshold, an HNSW graph over them. It keeps the vector count
// separate from whether a graph has been built, so callers can distinguish
// "not yet built" (small corpus, exact scan in use) from "empty" (no
// vectors at all).
//
// The index is never incrementally mutated (spec §4.7): Invalidate marks it
// dirty and the next Search rebuilds it wholesale from the attached
// EmbeddingSource before answering. coder/hnsw's Graph is keyed by an
// ordered integer type, not arbitrary strings, so chunk hashes are mapped to
// dense uint64 keys.
type Index struct {
	mu      sync.Mutex
	opts    Options
	vectors map[string][]float32 // chunk hash -> L2-normalized vector
	graph   *hnsw.Graph[uint64]  // nil until the corpus crosses the threshold
	hashKey map[string]uint64    // chunk hash -> graph key
	keyHash map[uint64]string    // graph key -> chunk hash
	built   bool
	dirty   bool

	src   EmbeddingSource
	model string
}

// New creates an empty, dirty Index. Call Attach (or Rebuild directly) before
// the first Search so there is a source to rebuild from.
func New(opts Options) *Index {
	if opts.HNSWThreshold <= 0 {
		opts.HNSWThreshold = 1000
	}
	return &Index{
		opts:    opts,
		vectors: make(map[string][]float32),
		dirty:   true,
	}
}

// Attach records the catalog and embedding model the index rebuilds from and
// marks it dirty, without touching current contents. Use this at startup;
// Invalidate after an ingest that changed vectors.
func (idx *Index) Attach(src EmbeddingSource, model string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.src = src
	idx.model = model
	idx.dirty = true
}

// Invalidate marks the index stale. The next Search rebuilds it from the
// attached EmbeddingSource before answering.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dirty = true
}

// Len reports how many vectors the index currently holds. Reflects the last
// rebuild, not pending invalidation.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.vectors)
}

// Built reports whether an HNSW graph has been materialized. False means
// Search is doing an exact scan, which is still a correct top-k answer for
// any corpus size (spec §8 invariant).
func (idx *Index) Built() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.built
}

// Rebuild reloads the index from src's current embeddings for model,
// replacing any prior contents, and attaches src/model for future lazy
// rebuilds triggered by Invalidate.
func (idx *Index) Rebuild(ctx context.Context, src EmbeddingSource, model string) error {
	vectors, err := src.AllEmbeddings(ctx, model)
	if err != nil {
		return agenterr.Wrap(agenterr.Catalog, err, "load embeddings for vector index")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildLocked(vectors)
	idx.src = src
	idx.model = model
	idx.dirty = false
	return nil
}

func (idx *Index) rebuildLocked(vectors map[string][]float32) {
	idx.vectors = make(map[string][]float32, len(vectors))
	for hash, vec := range vectors {
		if idx.opts.Dimensions != 0 && len(vec) != idx.opts.Dimensions {
			continue
		}
		normalized := make([]float32, len(vec))
		copy(normalized, vec)
		normalizeL2(normalized)
		idx.vectors[hash] = normalized
	}

	idx.graph = nil
	idx.hashKey = nil
	idx.keyHash = nil
	idx.built = false
	if len(idx.vectors) >= idx.opts.HNSWThreshold {
		idx.graph = hnsw.NewGraph[uint64]()
		idx.graph.Distance = hnsw.CosineDistance
		idx.hashKey = make(map[string]uint64, len(idx.vectors))
		idx.keyHash = make(map[uint64]string, len(idx.vectors))
		var nextKey uint64
		for hash, vec := range idx.vectors {
			key := nextKey
			nextKey++
			idx.hashKey[hash] = key
			idx.keyHash[key] = hash
			idx.graph.Add(hnsw.MakeNode(key, vec))
		}
		idx.built = true
	}
}

// Search returns the top-k chunks by cosine similarity to query. query is
// L2-normalized internally; callers need not pre-normalize it. If the index
// is dirty, it is rebuilt from the attached EmbeddingSource first. When the
// index hasn't crossed the HNSW threshold, this performs an exact scan,
// which always returns the true top-k.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if idx.opts.Dimensions != 0 && len(query) != idx.opts.Dimensions {
		return nil, agenterr.Newf(agenterr.InvalidInput, "query has %d dimensions, index expects %d", len(query), idx.opts.Dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeL2(normalized)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dirty && idx.src != nil {
		vectors, err := idx.src.AllEmbeddings(ctx, idx.model)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.Catalog, err, "rebuild vector index before search")
		}
		idx.rebuildLocked(vectors)
		idx.dirty = false
	}

	if len(idx.vectors) == 0 {
		return nil, nil
	}

	if idx.built && idx.graph != nil {
		return idx.searchHNSW(normalized, k), nil
	}
	return idx.searchExact(normalized, k), nil
}

func (idx *Index) searchHNSW(query []float32, k int) []Result {
	nodes := idx.graph.Search(query, k)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		hash, ok := idx.keyHash[node.Key]
		if !ok {
			continue
		}
		vec, ok := idx.vectors[hash]
		if !ok {
			continue
		}
		results = append(results, Result{ChunkHash: hash, Score: cosineSimilarity(query, vec)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func (idx *Index) searchExact(query []float32, k int) []Result {
	results := make([]Result, 0, len(idx.vectors))
	for hash, vec := range idx.vectors {
		results = append(results, Result{ChunkHash: hash, Score: cosineSimilarity(query, vec)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkHash < results[j].ChunkHash
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func normalizeL2(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}
