package lexical

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/epappas/agentroot-go/internal/agenterr"
)

// ChunkDoc is one chunk handed to the chunk FTS mirror for indexing.
type ChunkDoc struct {
	Hash       string
	Text       string
	Kind       string
	Breadcrumb string
	Language   string
}

// ChunkResult is a chunk-level hit, identified by chunk hash (spec §4.6's
// "chunk FTS mirror", distinct from the document-level documents_fts table).
type ChunkResult struct {
	ChunkHash string
	Score     float64
}

// bleveChunkDoc is the shape actually stored in the Bleve index; kind,
// breadcrumb and language are indexed as facets a caller can filter on.
type bleveChunkDoc struct {
	Text       string `json:"text"`
	Kind       string `json:"kind"`
	Breadcrumb string `json:"breadcrumb"`
	Language   string `json:"language"`
}

// ChunkIndex is a Bleve-backed BM25 index over chunk text, mirroring the
// teacher's BleveBM25Index but keyed by chunk hash and carrying code-chunk
// facets (kind/breadcrumb/language) instead of a flat content-only document.
type ChunkIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewChunkIndex opens (or creates) an in-memory Bleve index over chunk text.
// Persistence to disk is left to the catalog/content store; the chunk FTS
// mirror is rebuilt from document_chunks on ingest rather than carried as a
// separate on-disk artifact.
func NewChunkIndex() (*ChunkIndex, error) {
	m, err := chunkIndexMapping()
	if err != nil {
		return nil, agenterr.Wrap(agenterr.IO, err, "build chunk index mapping")
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.IO, err, "open chunk index")
	}
	return &ChunkIndex{index: idx}, nil
}

func chunkIndexMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(CodeAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": CodeTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			CodeStopFilterName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("add code analyzer: %w", err)
	}
	m.DefaultAnalyzer = CodeAnalyzerName

	// kind is matched as one whole value: the code analyzer's stop list
	// would otherwise drop kinds such as "function" and "class".
	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name
	m.DefaultMapping.AddFieldMappingsAt("kind", kindField)
	return m, nil
}

// Index (re)indexes the given chunks, keyed by chunk hash.
func (c *ChunkIndex) Index(ctx context.Context, docs []ChunkDoc) error {
	if len(docs) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.index.NewBatch()
	for _, d := range docs {
		doc := bleveChunkDoc{Text: d.Text, Kind: d.Kind, Breadcrumb: d.Breadcrumb, Language: d.Language}
		if err := batch.Index(d.Hash, doc); err != nil {
			return agenterr.Wrap(agenterr.IO, err, "index chunk "+d.Hash)
		}
	}
	if err := c.index.Batch(batch); err != nil {
		return agenterr.Wrap(agenterr.IO, err, "commit chunk batch")
	}
	return nil
}

// Delete removes chunks by hash, e.g. after a document is deactivated.
func (c *ChunkIndex) Delete(ctx context.Context, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.index.NewBatch()
	for _, h := range hashes {
		batch.Delete(h)
	}
	if err := c.index.Batch(batch); err != nil {
		return agenterr.Wrap(agenterr.IO, err, "delete chunks from index")
	}
	return nil
}

// Search runs a BM25 query over chunk text. kind, if non-empty, restricts
// hits to that chunk kind (e.g. "function").
func (c *ChunkIndex) Search(ctx context.Context, query string, kind string, limit int) ([]ChunkResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")

	var q = bleve.Query(textQuery)
	if kind != "" {
		kindQuery := bleve.NewMatchQuery(kind)
		kindQuery.SetField("kind")
		q = bleve.NewConjunctionQuery(textQuery, kindQuery)
	}

	req := bleve.NewSearchRequest(q)
	if limit > 0 {
		req.Size = limit
	}

	result, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.IO, err, "chunk search")
	}

	results := make([]ChunkResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, ChunkResult{ChunkHash: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Close releases the underlying index.
func (c *ChunkIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Close()
}
