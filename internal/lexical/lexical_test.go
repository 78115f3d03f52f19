package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epappas/agentroot-go/internal/catalog"
)

func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(context.Background(), catalog.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func TestSearchFindsDocumentByBodyText(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	_, err := cat.InsertDocument(ctx, "docs", "intro.md", "Intro", "hash1", "agentroot is a retrieval engine")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "retrieval", Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "docs", results[0].CollectionName)
	assert.Equal(t, "agentroot://docs/intro.md", results[0].VirtualPath)
	assert.Equal(t, "hash1"[:6], results[0].DocID)
	assert.Greater(t, results[0].Score, 0.0)
	assert.Empty(t, results[0].Body, "body omitted unless FullContent requested")
}

func TestSearchFullContentIncludesBody(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	_, err := cat.InsertDocument(ctx, "docs", "a.md", "A", "hash1", "some unique needle text")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "needle", Options{FullContent: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "some unique needle text", results[0].Body)
	assert.Equal(t, len("some unique needle text"), results[0].BodyLength)
}

func TestSearchFiltersByCollection(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "a", "/a", "**/*"))
	require.NoError(t, cat.AddCollection(ctx, "b", "/b", "**/*"))
	_, err := cat.InsertDocument(ctx, "a", "x.md", "X", "hash1", "widget factory")
	require.NoError(t, err)
	_, err = cat.InsertDocument(ctx, "b", "y.md", "Y", "hash2", "widget factory")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "widget", Options{Collection: "a"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].CollectionName)
}

func TestSearchFiltersByProvider(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "local", "/a", "**/*"))
	require.NoError(t, cat.AddCollectionWithProvider(ctx, "remote", "https://x", "**/*", "url", ""))
	_, err := cat.InsertDocument(ctx, "local", "x.md", "X", "hash1", "gadget text")
	require.NoError(t, err)
	_, err = cat.InsertDocument(ctx, "remote", "y.md", "Y", "hash2", "gadget text")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "gadget", Options{Provider: "url"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "remote", results[0].CollectionName)
}

func TestSearchFiltersByCategoryAndDifficulty(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	id, err := cat.InsertDocument(ctx, "docs", "a.md", "A", "hash1", "tutorial content here")
	require.NoError(t, err)
	require.NoError(t, cat.UpdateDocumentMetadata(ctx, id, "", "", "", "", "", "howto", "beginner", ""))

	results, err := Search(ctx, cat.DB(), "tutorial", Options{Category: "howto", Difficulty: "beginner"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = Search(ctx, cat.DB(), "tutorial", Options{Category: "reference"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFiltersByKeywordSubstring(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	id, err := cat.InsertDocument(ctx, "docs", "a.md", "A", "hash1", "caching strategies overview")
	require.NoError(t, err)
	require.NoError(t, cat.UpdateDocumentMetadata(ctx, id, "", "", "caching,performance", "", "", "", "", ""))

	results, err := Search(ctx, cat.DB(), "caching", Options{Keyword: "perf"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = Search(ctx, cat.DB(), "caching", Options{Keyword: "networking"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRespectsLimitAndMinScore(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	_, err := cat.InsertDocument(ctx, "docs", "a.md", "A", "hash1", "banana banana banana")
	require.NoError(t, err)
	_, err = cat.InsertDocument(ctx, "docs", "b.md", "B", "hash2", "banana appears once")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "banana", Options{Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = Search(ctx, cat.DB(), "banana", Options{MinScore: 1e9})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchExcludesInactiveDocuments(t *testing.T) {
	cat := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.AddCollection(ctx, "docs", "/repo", "**/*"))
	_, err := cat.InsertDocument(ctx, "docs", "a.md", "A", "hash1", "ephemeral content")
	require.NoError(t, err)
	_, err = cat.RemoveCollection(ctx, "docs")
	require.NoError(t, err)

	results, err := Search(ctx, cat.DB(), "ephemeral", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQueryReturnsNoResults(t *testing.T) {
	cat := openTestCatalog(t)
	results, err := Search(context.Background(), cat.DB(), "   ", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
