package agentroot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epappas/agentroot-go/internal/llm"
)

type stubEmbedder struct{ dims int }

func (e stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (e stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (e stubEmbedder) Dimensions() int   { return 4 }
func (e stubEmbedder) ModelName() string { return "stub-embedder" }

func seedCollection(t *testing.T, app *App, dir, collection string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		writeFile(t, dir, name, body)
	}
	require.NoError(t, app.AddCollection(context.Background(), collection, dir, "**/*.md"))
	_, err := app.Reindex(context.Background(), collection)
	require.NoError(t, err)
}

func TestSearchReturnsHydratedResults(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{})
	seedCollection(t, app, dir, "docs", map[string]string{
		"guide.md": "# Guide\nHow to debug a panic in production.\n",
		"other.md": "# Other\nCompletely unrelated gardening tips.\n",
	})

	resp, err := app.Search(context.Background(), "panic", SearchParams{Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "bm25", resp.Results[0].Source)
	assert.Equal(t, "guide.md", resp.Results[0].DisplayPath[len("docs/"):])
	assert.NotEmpty(t, resp.Results[0].Snippet)
}

func TestSearchNoMatchesReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{})
	seedCollection(t, app, dir, "docs", map[string]string{"a.md": "# A\nNothing interesting.\n"})

	resp, err := app.Search(context.Background(), "zzz_nonexistent_token", SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchWithSessionDemotesRepeatedResultsAndAdvancesSession(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{})
	seedCollection(t, app, dir, "docs", map[string]string{
		"guide.md": "# Guide\nHandling panic errors carefully panic panic.\n",
	})

	sessionID, err := app.sessions.Start(context.Background())
	require.NoError(t, err)

	first, err := app.Search(context.Background(), "panic", SearchParams{SessionID: sessionID})
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)

	second, err := app.Search(context.Background(), "panic", SearchParams{SessionID: sessionID})
	require.NoError(t, err)
	require.NotEmpty(t, second.Results)
	assert.Less(t, second.Results[0].Score, first.Results[0].Score)
}

func TestSmartSearchFallsBackToHybridWithoutPlanner(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{Embedder: stubEmbedder{}})
	seedCollection(t, app, dir, "docs", map[string]string{
		"guide.md": "# Guide\nHow to debug a panic in production.\n",
	})

	resp, err := app.SmartSearch(context.Background(), "panic", SearchParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
}

type stubPlanner struct{ steps []llm.Step }

func (p stubPlanner) Plan(ctx context.Context, query string) ([]llm.Step, error) { return p.steps, nil }
func (p stubPlanner) ModelName() string                                         { return "stub-planner" }

func TestSmartSearchExecutesAttachedPlanner(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{
		Embedder: stubEmbedder{},
		Planner:  stubPlanner{steps: []llm.Step{{Action: llm.StepBM25}}},
	})
	seedCollection(t, app, dir, "docs", map[string]string{
		"guide.md": "# Guide\nHow to debug a panic in production.\n",
	})

	resp, err := app.SmartSearch(context.Background(), "panic", SearchParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
}

func TestSearchComputesSuggestions(t *testing.T) {
	dir := t.TempDir()
	app := openTestApp(t, Collaborators{})
	seedCollection(t, app, dir, "docs", map[string]string{
		"guides/setup.md":   "# Setup\nHow to configure panic handling.\n",
		"guides/advance.md": "# Advanced\nMore panic handling advice.\n",
	})

	resp, err := app.Search(context.Background(), "panic", SearchParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Suggestions.RelatedDirectories)
}
