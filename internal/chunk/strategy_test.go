package chunk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTypeScriptInterfaceDeclaration(t *testing.T) {
	source := []byte("interface Widget {\n  name: string;\n}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "widget.ts", source)

	require.NotEmpty(t, chunks)
	assert.Equal(t, KindInterface, chunks[0].Kind)
}

func TestChunkJavaScriptHasNoInterfaceSupport(t *testing.T) {
	source := []byte("interface Widget {}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "widget.js", source)

	require.Len(t, chunks, 1)
	assert.Equal(t, KindText, chunks[0].Kind)
}

func TestChunkJavaScriptClassRecursesIntoMethods(t *testing.T) {
	source := []byte("class Widget {\n  render() {\n    return null;\n  }\n}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "widget.js", source)

	var sawClass, sawMethod bool
	for _, ch := range chunks {
		if ch.Kind == KindClass {
			sawClass = true
		}
		if ch.Kind == KindMethod && ch.Metadata.Breadcrumb == "Widget::render" {
			sawMethod = true
		}
	}
	assert.True(t, sawClass)
	assert.True(t, sawMethod)
}

func TestExtractLeadingTriviaStopsAtBlankLine(t *testing.T) {
	source := []byte("// unrelated\n\nfn foo() {}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "lib.rs", source)

	require.NotEmpty(t, chunks)
	assert.Equal(t, "", chunks[0].Metadata.LeadingTrivia)
}
