package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestChunk(text string) Chunk {
	return New(text, KindFunction, 0)
}

func TestSplitOversizedSmallChunkUnchanged(t *testing.T) {
	c := makeTestChunk("fn small() {}")
	result := splitOversized(c, 1000, 100)
	require.Len(t, result, 1)
	assert.Equal(t, c.Text, result[0].Text)
}

func TestSplitOversizedChunkSplits(t *testing.T) {
	large := strings.Repeat("x", 5000)
	c := makeTestChunk(large)
	result := splitOversized(c, 1000, 100)
	assert.Greater(t, len(result), 1)
}

func TestSplitOversizedBreadcrumbStriding(t *testing.T) {
	large := strings.Repeat("x", 5000)
	c := makeTestChunk(large)
	c.Metadata.Breadcrumb = "my_function"

	result := splitOversized(c, 1000, 100)
	require.NotEmpty(t, result)
	assert.Contains(t, result[0].Metadata.Breadcrumb, "[0]")
	if len(result) > 1 {
		assert.Contains(t, result[1].Metadata.Breadcrumb, "[1]")
	}
}

func TestIsOversized(t *testing.T) {
	small := makeTestChunk("small")
	large := makeTestChunk(strings.Repeat("x", 5000))
	assert.False(t, isOversized(small, 1000))
	assert.True(t, isOversized(large, 1000))
}

func TestSplitOversizedZeroMaxCharsReturnsOriginal(t *testing.T) {
	c := makeTestChunk("some text")
	result := splitOversized(c, 0, 100)
	require.Len(t, result, 1)
	assert.Equal(t, c.Text, result[0].Text)
}

func TestSplitOversizedEmptyChunk(t *testing.T) {
	c := makeTestChunk("")
	result := splitOversized(c, 100, 10)
	require.Len(t, result, 1)
	assert.Equal(t, "", result[0].Text)
}

func TestSplitOversizedExactBoundary(t *testing.T) {
	c := makeTestChunk(strings.Repeat("x", 1000))
	result := splitOversized(c, 1000, 100)
	assert.Len(t, result, 1)
}

func TestSplitOversizedFirstStrideKeepsLeadingLastKeepsTrailing(t *testing.T) {
	large := strings.Repeat("a", 2500) + "\n\n" + strings.Repeat("b", 2500)
	c := makeTestChunk(large)
	c.Metadata.LeadingTrivia = "/// doc"
	c.Metadata.TrailingTrivia = "// trailing"

	result := splitOversized(c, 1000, 100)
	require.Greater(t, len(result), 1)
	assert.Equal(t, "/// doc", result[0].Metadata.LeadingTrivia)
	assert.Equal(t, "", result[0].Metadata.TrailingTrivia)

	last := result[len(result)-1]
	assert.Equal(t, "// trailing", last.Metadata.TrailingTrivia)
	assert.Equal(t, "", last.Metadata.LeadingTrivia)
}

func TestFindSafeBoundaryPrefersParagraphBreak(t *testing.T) {
	s := strings.Repeat("a", 50) + "\n\n" + strings.Repeat("b", 50)
	idx := findSafeBoundary(s, 60)
	assert.Equal(t, 52, idx)
}
