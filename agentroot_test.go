package agentroot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epappas/agentroot-go/internal/rootconfig"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func testConfig() *rootconfig.Config {
	cfg := rootconfig.New()
	cfg.Paths.CatalogPath = ":memory:"
	return cfg
}

func openTestApp(t *testing.T, collab Collaborators) *App {
	t.Helper()
	app, err := Open(context.Background(), testConfig(), collab, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestOpenAndCloseBareApp(t *testing.T) {
	app := openTestApp(t, Collaborators{})
	assert.NotNil(t, app.Catalog())
}

func TestAddCollectionAndReindex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "# Guide\nHow to handle search errors in agentroot.\n")
	writeFile(t, dir, "other.md", "# Other\nSomething unrelated entirely.\n")

	app := openTestApp(t, Collaborators{})
	require.NoError(t, app.AddCollection(ctx, "docs", dir, "**/*.md"))

	stats, err := app.Reindex(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
}

func TestReindexUnknownCollectionErrors(t *testing.T) {
	app := openTestApp(t, Collaborators{})
	_, err := app.Reindex(context.Background(), "nope")
	assert.Error(t, err)
}

func TestRegenerateMetadataRequiresAttachedGenerator(t *testing.T) {
	app := openTestApp(t, Collaborators{})
	err := app.RegenerateMetadata(context.Background(), "docs", "guide.md", false)
	assert.Error(t, err)
}
