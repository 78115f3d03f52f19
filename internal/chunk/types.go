// Package chunk implements the AST-aware semantic chunker (C3): it splits a
// document's bytes into retrievable units — one per semantic AST node for a
// supported language, or fixed-size strides for everything else — and
// attaches the trivia, breadcrumb, and line-range metadata the catalog and
// ranking pipeline depend on.
package chunk

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Kind is the semantic category of a chunk.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
	KindInterface Kind = "interface"
	KindModule    Kind = "module"
	KindImport    Kind = "import"
	KindText      Kind = "text"
)

// Metadata carries everything about a chunk beyond its raw text.
type Metadata struct {
	// LeadingTrivia is the contiguous run of comment/doc lines immediately
	// above the node.
	LeadingTrivia string
	// TrailingTrivia is a same-line end-of-line comment, if any.
	TrailingTrivia string
	// Breadcrumb is the "::"-joined chain of name-bearing ancestors, e.g.
	// "MyStruct::new". Empty when the node has no resolvable name.
	Breadcrumb string
	// Language is the tag used for filtering/display, e.g. "rust". Empty
	// for character-chunked fallback text.
	Language string
	// StartLine and EndLine are 1-indexed, inclusive.
	StartLine int
	EndLine   int
}

// Chunk is one retrievable unit of a document (spec §3 "Chunk").
type Chunk struct {
	Text     string
	Kind     Kind
	Hash     string // blake3(leading || text || trailing), hex, 32 chars
	Position int    // byte offset into the document body
	Metadata Metadata
}

// New builds a chunk with no trivia or breadcrumb and computes its hash.
func New(text string, kind Kind, position int) Chunk {
	return Chunk{
		Text:     text,
		Kind:     kind,
		Hash:     ComputeHash(text, "", ""),
		Position: position,
	}
}

// WithMetadata returns a copy of c with metadata attached and the hash
// recomputed over the (possibly now non-empty) trivia.
func (c Chunk) WithMetadata(m Metadata) Chunk {
	c.Metadata = m
	c.Hash = ComputeHash(c.Text, m.LeadingTrivia, m.TrailingTrivia)
	return c
}

// ComputeHash returns the 32-hex-character blake3 digest of
// leading||text||trailing (spec §3, §4.3). Requesting a 16-byte output
// directly (rather than truncating a 32-byte one) is equivalent: blake3 is
// an extendable-output function, so its first 16 bytes never change when a
// longer output is requested.
func ComputeHash(text, leading, trailing string) string {
	h := blake3.New(16, nil)
	_, _ = h.Write([]byte(leading))
	_, _ = h.Write([]byte(text))
	_, _ = h.Write([]byte(trailing))
	return hex.EncodeToString(h.Sum(nil))
}
