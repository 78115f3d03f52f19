package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRustFileYieldsFunctionAndStruct(t *testing.T) {
	source := []byte("/// doc\nfn foo() {}\n\nstruct S;\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "lib.rs", source)

	require.GreaterOrEqual(t, len(chunks), 2)

	var sawFunction, sawStruct bool
	for _, ch := range chunks {
		if ch.Kind == KindFunction {
			sawFunction = true
			assert.Contains(t, ch.Metadata.LeadingTrivia, "/// doc")
			assert.Equal(t, "foo", ch.Metadata.Breadcrumb)
		}
		if ch.Kind == KindStruct {
			sawStruct = true
		}
	}
	assert.True(t, sawFunction)
	assert.True(t, sawStruct)
}

func TestChunkRustImplRecursesIntoMethods(t *testing.T) {
	source := []byte("struct S;\n\nimpl S {\n    fn new() -> Self { S }\n}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "lib.rs", source)

	var sawImpl, sawMethod bool
	for _, ch := range chunks {
		if ch.Kind == KindMethod && ch.Metadata.Breadcrumb == "S::new" {
			sawMethod = true
		}
		if strings.Contains(ch.Text, "impl S") {
			sawImpl = true
		}
	}
	assert.True(t, sawImpl)
	assert.True(t, sawMethod)
}

func TestChunkPythonClassRecursesIntoMethods(t *testing.T) {
	source := []byte("class Widget:\n    def __init__(self):\n        pass\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "widget.py", source)

	var sawClass, sawMethod bool
	for _, ch := range chunks {
		if ch.Kind == KindClass {
			sawClass = true
		}
		if ch.Kind == KindFunction && ch.Metadata.Breadcrumb == "Widget::__init__" {
			sawMethod = true
		}
	}
	assert.True(t, sawClass)
	assert.True(t, sawMethod)
}

func TestChunkGoFile(t *testing.T) {
	source := []byte("package widgets\n\nfunc New() *Widget { return &Widget{} }\n\ntype Widget struct {\n\tName string\n}\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "widget.go", source)

	var sawFunction, sawStruct bool
	for _, ch := range chunks {
		if ch.Kind == KindFunction {
			sawFunction = true
		}
		if ch.Kind == KindStruct {
			sawStruct = true
		}
	}
	assert.True(t, sawFunction)
	assert.True(t, sawStruct)
}

func TestChunkUnsupportedExtensionFallsBack(t *testing.T) {
	source := []byte("# Title\n\nSome prose about the project.\n")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "README.md", source)

	require.Len(t, chunks, 1)
	assert.Equal(t, KindText, chunks[0].Kind)
	assert.Equal(t, string(source), chunks[0].Text)
}

func TestChunkMalformedSourceFallsBack(t *testing.T) {
	source := []byte("fn ((( totally not rust")
	c := New(DefaultOptions())
	chunks := c.Chunk(context.Background(), "broken.rs", source)
	require.NotEmpty(t, chunks)
}

func TestChunkOversizedFunctionIsStrided(t *testing.T) {
	body := strings.Repeat("x", 5000)
	source := []byte("fn big() {\n" + body + "\n}\n")
	c := New(Options{MaxChars: 1000, OverlapChars: 100})
	chunks := c.Chunk(context.Background(), "lib.rs", source)

	require.Greater(t, len(chunks), 1)
	assert.Contains(t, chunks[0].Metadata.Breadcrumb, "[0]")
}
