package chunk

import sitter "github.com/smacker/go-tree-sitter"

var pythonSemanticNodes = []string{
	"function_definition",
	"class_definition",
	"decorated_definition",
}

type pythonStrategy struct{}

func (pythonStrategy) extractChunks(source []byte, root *sitter.Node, lang Language) []Chunk {
	var chunks []Chunk
	walkPython(source, root, lang, &chunks)
	if len(chunks) == 0 {
		chunks = append(chunks, New(string(source), KindText, 0))
	}
	return chunks
}

// walkPython recurses into class_definition bodies so methods are recorded
// as their own chunks alongside the class, the same way Rust's impl_item is
// handled. decorated_definition is chunked as a single unit (decorator plus
// the definition it wraps) and not descended into further.
func walkPython(source []byte, node *sitter.Node, lang Language, out *[]Chunk) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		kind := child.Type()

		if kind == "decorated_definition" {
			*out = append(*out, makeChunk(source, child, pythonDecoratedType(child), lang))
			continue
		}
		if isSemanticNode(kind, pythonSemanticNodes) {
			*out = append(*out, makeChunk(source, child, pythonChunkType(kind), lang))
			if kind == "class_definition" {
				walkPython(source, child, lang, out)
			}
			continue
		}
		walkPython(source, child, lang, out)
	}
}

func pythonChunkType(kind string) Kind {
	if kind == "class_definition" {
		return KindClass
	}
	return KindFunction
}

func pythonDecoratedType(node *sitter.Node) Kind {
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "class_definition":
			return KindClass
		case "function_definition":
			return KindFunction
		}
	}
	return KindFunction
}
