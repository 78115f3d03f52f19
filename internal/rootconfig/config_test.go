package rootconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, 3200, cfg.Chunk.MaxChars)
	assert.Equal(t, 480, cfg.Chunk.OverlapChars)
	assert.Equal(t, 30, cfg.Chunk.BreakSearchPercent)
	assert.Equal(t, 0.85, cfg.Ranking.StrongSignalScore)
	assert.Equal(t, 0.15, cfg.Ranking.StrongSignalGap)
	assert.Equal(t, 60.0, cfg.Ranking.RRFConstant)
	assert.Equal(t, 1000, cfg.Vector.HNSWThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkConfig(), cfg.Chunk)
	assert.NotEmpty(t, cfg.Paths.CatalogPath)
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, (&Config{Chunk: ChunkConfig{MaxChars: 1500, OverlapChars: 200, BreakSearchPercent: 30}}).WriteYAML(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1500, cfg.Chunk.MaxChars)
	assert.Equal(t, 200, cfg.Chunk.OverlapChars)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultRankingConfig().RRFConstant, cfg.Ranking.RRFConstant)
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("AGENTROOT_DB", "/tmp/custom-catalog.db")
	t.Setenv("AGENTROOT_EMBEDDING_MODEL", "test-model")
	t.Setenv("AGENTROOT_EMBEDDING_DIMS", "768")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-catalog.db", cfg.Paths.CatalogPath)
	assert.Equal(t, "test-model", cfg.Embedding.Model)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
}

func TestValidateRejectsBadChunkConfig(t *testing.T) {
	cfg := New()
	cfg.Chunk.OverlapChars = cfg.Chunk.MaxChars
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Ranking.RRFConstant = 0
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Session.TTLSeconds = 0
	assert.Error(t, cfg.Validate())
}
