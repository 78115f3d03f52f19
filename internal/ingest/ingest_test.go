package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epappas/agentroot-go/internal/catalog"
	"github.com/epappas/agentroot-go/internal/llm"
)

func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(context.Background(), catalog.Options{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })
	return cat
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReindexInsertsNewDocumentsAndChunks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nSee [b](b.md) for details.\n")
	writeFile(t, dir, "b.md", "# B\nNothing here.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, ok, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)
	require.True(t, ok)

	p := New(cat, nil)
	stats, err := p.Reindex(ctx, info)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 2, stats.LinksTotal)
	assert.Empty(t, stats.Errors)
	assert.Greater(t, stats.ChunksTotal, 0)

	docs, err := cat.ListActiveDocuments(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestReindexIsIdempotentOnUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nBody text.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, _, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)

	p := New(cat, nil)
	_, err = p.Reindex(ctx, info)
	require.NoError(t, err)

	stats, err := p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 1, stats.Unchanged)
}

func TestReindexUpdatesChangedFileAndDeactivatesRemoved(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nOriginal.\n")
	writeFile(t, dir, "b.md", "# B\nStays the same.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, _, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)

	p := New(cat, nil)
	_, err = p.Reindex(ctx, info)
	require.NoError(t, err)

	writeFile(t, dir, "a.md", "# A\nChanged body.\n")
	require.NoError(t, os.Remove(filepath.Join(dir, "b.md")))

	stats, err := p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Deactivated)

	docs, err := cat.ListActiveDocuments(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.md", docs[0].Path)
}

type fakeEmbedder struct{ calls int }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, _ := f.EmbedBatch(ctx, []string{text})
	return v[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int   { return 4 }
func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

func TestReindexEmbedsChunksWhenEmbedderAttached(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nBody text long enough to chunk.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, _, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)

	embedder := &fakeEmbedder{}
	p := New(cat, nil)
	p.Embedder = embedder

	stats, err := p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Greater(t, stats.Embedded, 0)
	assert.Equal(t, 1, embedder.calls)

	count, err := cat.CountEmbeddings(ctx, "fake-embedder")
	require.NoError(t, err)
	assert.Equal(t, stats.Embedded, count)

	// A second reindex of unchanged content should not re-embed.
	stats2, err := p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.Embedded)
}

type fakeMetadataGenerator struct{ calls int }

func (f *fakeMetadataGenerator) Generate(ctx context.Context, doc llm.MetadataContext) (llm.DocumentMetadata, error) {
	f.calls++
	return llm.DocumentMetadata{SemanticTitle: "Generated Title", Keywords: []string{"k1", "k2"}}, nil
}

func (f *fakeMetadataGenerator) ModelName() string { return "fake-metadata" }

func TestRegenerateMetadataRequiresAttachedGenerator(t *testing.T) {
	ctx := context.Background()
	cat := openTestCatalog(t)
	p := New(cat, nil)

	err := p.RegenerateMetadata(ctx, "docs", "a.md", false)
	assert.Error(t, err)
}

func TestReindexGeneratesMetadataWhenGeneratorAttached(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nBody text.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, _, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)

	gen := &fakeMetadataGenerator{}
	cmg, err := llm.NewCachedMetadataGenerator(gen, cat)
	require.NoError(t, err)

	p := New(cat, nil)
	p.Metadata = cmg

	stats, err := p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MetadataGen)
	assert.Equal(t, 1, gen.calls)

	docs, err := cat.ListActiveDocuments(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Generated Title", docs[0].LLMTitle)
}

func TestRegenerateMetadataForceRegeneratesEvenWhenCached(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A\nBody text.\n")

	cat := openTestCatalog(t)
	require.NoError(t, cat.AddCollection(ctx, "docs", dir, "**/*.md"))
	info, _, err := cat.GetCollection(ctx, "docs")
	require.NoError(t, err)

	gen := &fakeMetadataGenerator{}
	cmg, err := llm.NewCachedMetadataGenerator(gen, cat)
	require.NoError(t, err)

	p := New(cat, nil)
	p.Metadata = cmg
	_, err = p.Reindex(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	require.NoError(t, p.RegenerateMetadata(ctx, "docs", "a.md", false))
	assert.Equal(t, 1, gen.calls, "non-forced regenerate should be served from cache")

	require.NoError(t, p.RegenerateMetadata(ctx, "docs", "a.md", true))
	assert.Equal(t, 2, gen.calls, "forced regenerate should bypass the cache")
}
