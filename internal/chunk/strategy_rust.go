package chunk

import sitter "github.com/smacker/go-tree-sitter"

var rustSemanticNodes = []string{
	"function_item",
	"impl_item",
	"struct_item",
	"enum_item",
	"trait_item",
	"mod_item",
	"type_item",
	"const_item",
	"static_item",
	"macro_definition",
}

type rustStrategy struct{}

func (rustStrategy) extractChunks(source []byte, root *sitter.Node, lang Language) []Chunk {
	var chunks []Chunk
	walkRust(source, root, lang, &chunks)
	if len(chunks) == 0 {
		chunks = append(chunks, New(string(source), KindText, 0))
	}
	return chunks
}

// walkRust mirrors the grammar's recursive descent: every semantic node
// becomes one chunk, and only impl_item is recursed into further, so that
// the methods it contains are recorded as their own chunks alongside the
// impl block itself (spec §4.3: "impl ... also recurses into it for
// method-level chunks").
func walkRust(source []byte, node *sitter.Node, lang Language, out *[]Chunk) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		kind := child.Type()
		if isSemanticNode(kind, rustSemanticNodes) {
			*out = append(*out, makeChunk(source, child, rustChunkType(child), lang))
			if kind == "impl_item" {
				walkRust(source, child, lang, out)
			}
			continue
		}
		walkRust(source, child, lang, out)
	}
}

func rustChunkType(node *sitter.Node) Kind {
	switch node.Type() {
	case "function_item":
		if p := node.Parent(); p != nil && p.Type() == "declaration_list" {
			if gp := p.Parent(); gp != nil && gp.Type() == "impl_item" {
				return KindMethod
			}
		}
		return KindFunction
	case "impl_item":
		if hasChildKind(node, "trait") {
			return KindTrait
		}
		return KindMethod
	case "struct_item":
		return KindStruct
	case "enum_item":
		return KindEnum
	case "trait_item":
		return KindTrait
	case "mod_item":
		return KindModule
	default:
		return KindFunction
	}
}
