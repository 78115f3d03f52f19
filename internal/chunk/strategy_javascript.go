package chunk

import sitter "github.com/smacker/go-tree-sitter"

var javascriptSemanticNodes = []string{
	"function_declaration",
	"method_definition",
	"class_declaration",
}

// typescriptSemanticNodes additionally recognizes TypeScript interfaces
// (spec §4.3).
var typescriptSemanticNodes = append(append([]string{}, javascriptSemanticNodes...), "interface_declaration")

type javascriptStrategy struct {
	typescript bool
}

func (s javascriptStrategy) nodeKinds() []string {
	if s.typescript {
		return typescriptSemanticNodes
	}
	return javascriptSemanticNodes
}

func (s javascriptStrategy) extractChunks(source []byte, root *sitter.Node, lang Language) []Chunk {
	var chunks []Chunk
	s.walk(source, root, lang, &chunks)
	if len(chunks) == 0 {
		chunks = append(chunks, New(string(source), KindText, 0))
	}
	return chunks
}

// walk recurses into class_declaration bodies so methods are recorded as
// their own chunks alongside the class, the same way Rust's impl_item is
// handled.
func (s javascriptStrategy) walk(source []byte, node *sitter.Node, lang Language, out *[]Chunk) {
	nodeKinds := s.nodeKinds()

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		kind := child.Type()
		if isSemanticNode(kind, nodeKinds) {
			*out = append(*out, makeChunk(source, child, javascriptChunkType(kind), lang))
			if kind == "class_declaration" {
				s.walk(source, child, lang, out)
			}
			continue
		}
		s.walk(source, child, lang, out)
	}
}

func javascriptChunkType(kind string) Kind {
	switch kind {
	case "method_definition":
		return KindMethod
	case "class_declaration":
		return KindClass
	case "interface_declaration":
		return KindInterface
	default:
		return KindFunction
	}
}
