package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ctx context.Context, opts Options) ([]Result, error) {
	t.Helper()
	results, errs := Scan(ctx, opts)
	var got []Result
	for r := range results {
		got = append(got, r)
	}
	select {
	case err := <-errs:
		return got, err
	default:
		return got, nil
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanYieldsFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Project")
	writeFile(t, filepath.Join(dir, "docs", "guide.md"), "guide")
	writeFile(t, filepath.Join(dir, "src", "main.rs"), "fn main(){}")

	got, err := collect(t, context.Background(), Options{Root: dir})
	require.NoError(t, err)

	rels := relPaths(got)
	sort.Strings(rels)
	assert.Equal(t, []string{"README.md", "docs/guide.md", "src/main.rs"}, rels)
}

func TestScanAppliesGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "README.md"), "# Project")
	writeFile(t, filepath.Join(dir, "docs", "guide.md"), "guide")
	writeFile(t, filepath.Join(dir, "src", "main.rs"), "fn main(){}")

	got, err := collect(t, context.Background(), Options{Root: dir, Pattern: "**/*.md"})
	require.NoError(t, err)

	rels := relPaths(got)
	sort.Strings(rels)
	assert.Equal(t, []string{"README.md", "docs/guide.md"}, rels)
}

func TestScanExcludesDefaultDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.js"), "module.exports={}")
	writeFile(t, filepath.Join(dir, "vendor", "lib.go"), "package vendor")

	got, err := collect(t, context.Background(), Options{Root: dir})
	require.NoError(t, err)

	rels := relPaths(got)
	assert.Equal(t, []string{"src/main.go"}, rels)
}

func TestScanExcludesHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "visible.txt"), "x")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "x")
	writeFile(t, filepath.Join(dir, ".hiddendir", "inside.txt"), "x")

	got, err := collect(t, context.Background(), Options{Root: dir, ExcludeHidden: true})
	require.NoError(t, err)

	rels := relPaths(got)
	assert.Equal(t, []string{"visible.txt"}, rels)
}

func TestScanRespectsCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, filepath.Join(dir, "file"+string(rune('a'+i%26))+".txt"), "x")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	time.Sleep(time.Millisecond)
	_, err := collect(t, ctx, Options{Root: dir})
	assert.Error(t, err)
}

func relPaths(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.RelPath
	}
	return out
}
