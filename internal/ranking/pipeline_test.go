package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epappas/agentroot-go/internal/llm"
	"github.com/epappas/agentroot-go/internal/vectorindex"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) { return f.vec, f.err }
func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (f fakeEmbedder) Dimensions() int   { return len(f.vec) }
func (f fakeEmbedder) ModelName() string { return "fake" }

type fakeReranker struct {
	scores map[string]float64
	err    error
}

func (f fakeReranker) Rerank(ctx context.Context, query string, docs []llm.RerankDocument) ([]llm.RerankResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []llm.RerankResult
	for _, d := range docs {
		if s, ok := f.scores[d.ID]; ok {
			out = append(out, llm.RerankResult{ID: d.ID, Score: s})
		}
	}
	return out, nil
}
func (f fakeReranker) ModelName() string { return "fake-reranker" }

func TestRunHybridStrongSignalShortCircuitsVector(t *testing.T) {
	bm25Calls := 0
	searchers := Searchers{
		BM25: func(ctx context.Context, query string) ([]Item, error) {
			bm25Calls++
			return []Item{{Hash: "a", Filepath: "docs/a.md", Score: 0.95, Source: SourceBM25}}, nil
		},
		Vector: func(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error) {
			t.Fatal("vector search should not run on a strong signal")
			return nil, nil
		},
	}

	res, err := RunHybrid(context.Background(), "ERR_OOM", searchers, Collaborators{}, cfg(), HybridParams{Limit: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, bm25Calls)
	assert.Equal(t, SourceBM25, res.Strategy)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a", res.Items[0].Hash)
}

func TestRunHybridFusesBM25AndVector(t *testing.T) {
	searchers := Searchers{
		BM25: func(ctx context.Context, query string) ([]Item, error) {
			return []Item{{Hash: "a", Filepath: "docs/a.md", Score: 0.5, Source: SourceBM25}}, nil
		},
		Vector: func(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error) {
			return []vectorindex.Result{{ChunkHash: "chunk-b", Score: 0.7}}, nil
		},
		ResolveChunk: func(ctx context.Context, chunkHash string) (string, string, bool, error) {
			return "b", "docs/b.md", true, nil
		},
	}
	collab := Collaborators{Embedder: fakeEmbedder{vec: []float32{1, 0}}}

	res, err := RunHybrid(context.Background(), "how do I configure things", searchers, collab, cfg(), HybridParams{Limit: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceHybrid, res.Strategy)
	assert.Len(t, res.Items, 2)
	assert.Empty(t, res.Warnings)
}

func TestRunHybridMissingEmbedderFallsBackToBM25Only(t *testing.T) {
	searchers := Searchers{
		BM25: func(ctx context.Context, query string) ([]Item, error) {
			return []Item{{Hash: "a", Filepath: "docs/a.md", Score: 0.4, Source: SourceBM25}}, nil
		},
		Vector: func(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error) {
			t.Fatal("vector search should not run without an embedder")
			return nil, nil
		},
	}

	res, err := RunHybrid(context.Background(), "how do I configure things", searchers, Collaborators{}, cfg(), HybridParams{Limit: 10}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestRunHybridRerankerFailureKeepsFusedOrder(t *testing.T) {
	searchers := Searchers{
		BM25: func(ctx context.Context, query string) ([]Item, error) {
			return []Item{{Hash: "a", Filepath: "docs/a.md", Score: 0.4, Source: SourceBM25}}, nil
		},
		Vector: func(ctx context.Context, queryVec []float32, k int) ([]vectorindex.Result, error) {
			return nil, nil
		},
	}
	collab := Collaborators{
		Embedder: fakeEmbedder{vec: []float32{1, 0}},
		Reranker: fakeReranker{err: errors.New("boom")},
	}

	res, err := RunHybrid(context.Background(), "how do I configure things", searchers, collab, cfg(), HybridParams{Limit: 10}, nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "reranker failed")
}

func TestRunHybridBM25FailurePropagates(t *testing.T) {
	searchers := Searchers{
		BM25: func(ctx context.Context, query string) ([]Item, error) {
			return nil, errors.New("db gone")
		},
	}
	_, err := RunHybrid(context.Background(), "q", searchers, Collaborators{}, cfg(), HybridParams{}, nil)
	assert.Error(t, err)
}

func TestRerankScoresFillsDefaultForMissingIDs(t *testing.T) {
	items := []Item{{Hash: "a"}, {Hash: "b"}}
	reranker := fakeReranker{scores: map[string]float64{"a": 0.9}}

	scores, err := rerankScores(context.Background(), reranker, "q", items)
	require.NoError(t, err)
	assert.Equal(t, 0.9, scores["a"])
	assert.Equal(t, llm.DefaultRerankScore, scores["b"])
}
