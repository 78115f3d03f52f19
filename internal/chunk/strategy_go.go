package chunk

import sitter "github.com/smacker/go-tree-sitter"

var goSemanticNodes = []string{
	"function_declaration",
	"method_declaration",
	"type_declaration",
}

type goStrategy struct{}

func (goStrategy) extractChunks(source []byte, root *sitter.Node, lang Language) []Chunk {
	var chunks []Chunk
	walkGo(source, root, lang, &chunks)
	if len(chunks) == 0 {
		chunks = append(chunks, New(string(source), KindText, 0))
	}
	return chunks
}

// walkGo never recurses below a matched node: Go has no nested function or
// type declarations to surface as separate chunks.
func walkGo(source []byte, node *sitter.Node, lang Language, out *[]Chunk) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		kind := child.Type()
		if isSemanticNode(kind, goSemanticNodes) {
			*out = append(*out, makeChunk(source, child, goChunkType(child), lang))
			continue
		}
		walkGo(source, child, lang, out)
	}
}

func goChunkType(node *sitter.Node) Kind {
	switch node.Type() {
	case "function_declaration":
		return KindFunction
	case "method_declaration":
		return KindMethod
	case "type_declaration":
		return goTypeDeclarationKind(node)
	default:
		return KindFunction
	}
}

// goTypeDeclarationKind inspects a type_declaration's underlying type to
// distinguish a struct or interface definition from a plain type alias.
func goTypeDeclarationKind(node *sitter.Node) Kind {
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "type_spec" {
			continue
		}
		underlying := spec.ChildByFieldName("type")
		if underlying == nil {
			continue
		}
		switch underlying.Type() {
		case "struct_type":
			return KindStruct
		case "interface_type":
			return KindInterface
		}
	}
	return KindModule
}
