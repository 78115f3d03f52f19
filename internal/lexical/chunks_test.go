package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIndexSearchFindsMatchingText(t *testing.T) {
	idx, err := NewChunkIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []ChunkDoc{
		{Hash: "h1", Text: "func ParseConfig reads the YAML file", Kind: "function", Breadcrumb: "config.go", Language: "go"},
		{Hash: "h2", Text: "the quick brown fox jumps", Kind: "text", Breadcrumb: "", Language: ""},
	}))

	results, err := idx.Search(ctx, "ParseConfig", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "h1", results[0].ChunkHash)
}

func TestChunkIndexSearchFiltersByKind(t *testing.T) {
	idx, err := NewChunkIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []ChunkDoc{
		{Hash: "h1", Text: "widget handler", Kind: "function"},
		{Hash: "h2", Text: "widget description", Kind: "text"},
	}))

	results, err := idx.Search(ctx, "widget", "function", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "h1", results[0].ChunkHash)
}

func TestChunkIndexDeleteRemovesChunk(t *testing.T) {
	idx, err := NewChunkIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Index(ctx, []ChunkDoc{{Hash: "h1", Text: "ephemeral chunk text"}}))
	require.NoError(t, idx.Delete(ctx, []string{"h1"}))

	results, err := idx.Search(ctx, "ephemeral", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChunkIndexSearchEmptyQueryReturnsNil(t *testing.T) {
	idx, err := NewChunkIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	results, err := idx.Search(context.Background(), "  ", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
