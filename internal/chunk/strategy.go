package chunk

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// strategy walks a language's AST and emits one chunk per semantic node.
type strategy interface {
	// extractChunks returns the semantic chunks found under root, tagging
	// each with lang.
	extractChunks(source []byte, root *sitter.Node, lang Language) []Chunk
}

// isSemanticNode reports whether kind is one of nodeKinds.
func isSemanticNode(kind string, nodeKinds []string) bool {
	for _, k := range nodeKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// hasChildKind reports whether node has a direct child of the given kind.
func hasChildKind(node *sitter.Node, kind string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == kind {
			return true
		}
	}
	return false
}

// extractLeadingTrivia returns the contiguous run of comment-style lines
// immediately above node, stopping at a blank line or non-comment line
// (spec §4.3).
func extractLeadingTrivia(source []byte, node *sitter.Node) string {
	start := node.StartByte()
	if start == 0 {
		return ""
	}
	preceding := string(source[:start])
	lines := strings.Split(preceding, "\n")
	// The last element is the node's own line up to the node; only the lines
	// above it can carry trivia.
	lines = lines[:len(lines)-1]

	var trivia []string
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		if isCommentLine(trimmed) {
			trivia = append(trivia, lines[i])
		} else {
			break
		}
	}

	for i, j := 0, len(trivia)-1; i < j; i, j = i+1, j-1 {
		trivia[i], trivia[j] = trivia[j], trivia[i]
	}
	return strings.Join(trivia, "\n")
}

func isCommentLine(line string) bool {
	prefixes := []string{"//", "#", "/*", "*", "*/", "///", "//!", `"""`, "'''"}
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// extractTrailingTrivia returns a same-line end-of-line comment following
// node, if any.
func extractTrailingTrivia(source []byte, node *sitter.Node) string {
	end := node.EndByte()
	if int(end) >= len(source) {
		return ""
	}
	following := string(source[end:])
	lineEnd := strings.IndexByte(following, '\n')
	var sameLine string
	if lineEnd == -1 {
		sameLine = following
	} else {
		sameLine = following[:lineEnd]
	}
	sameLine = strings.TrimSpace(sameLine)
	if strings.HasPrefix(sameLine, "//") || strings.HasPrefix(sameLine, "#") {
		return sameLine
	}
	return ""
}

// lineNumbers returns the 1-indexed [start, end] line range for a byte span.
func lineNumbers(source []byte, startByte, endByte uint32) (start, end int) {
	start = strings.Count(string(source[:startByte]), "\n") + 1
	end = strings.Count(string(source[:endByte]), "\n") + 1
	return start, end
}

// nameFieldByKind maps a node kind to the grammar field holding its name,
// across all five supported languages (spec §4.3 breadcrumb).
var nameFieldByKind = map[string]string{
	"function_item":       "name",
	"function_definition": "name",
	"function_declaration": "name",
	"method_definition":    "name",
	"method_declaration":   "name",
	"impl_item":            "type",
	"struct_item":          "name",
	"class_definition":     "name",
	"class_declaration":    "name",
	"enum_item":            "name",
	"type_spec": "name",
	"trait_item":           "name",
	"interface_declaration": "name",
	"mod_item":             "name",
}

// breadcrumb walks node's ancestor chain (including node itself) and joins
// every resolvable name with "::" (spec §4.3).
func breadcrumb(source []byte, node *sitter.Node) string {
	var parts []string
	for n := node; n != nil; n = n.Parent() {
		if name := nameFromNode(source, n); name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

func nameFromNode(source []byte, node *sitter.Node) string {
	// Go's type_declaration carries no "name" field itself — the name lives
	// on its type_spec child.
	if node.Type() == "type_declaration" {
		for i := 0; i < int(node.ChildCount()); i++ {
			if spec := node.Child(i); spec.Type() == "type_spec" {
				return nameFromNode(source, spec)
			}
		}
		return ""
	}

	field, ok := nameFieldByKind[node.Type()]
	if !ok {
		return ""
	}
	named := node.ChildByFieldName(field)
	if named == nil {
		return ""
	}
	return string(source[named.StartByte():named.EndByte()])
}

// makeChunk builds a Chunk for a matched semantic node, attaching trivia,
// breadcrumb, and line range.
func makeChunk(source []byte, node *sitter.Node, kind Kind, language Language) Chunk {
	leading := extractLeadingTrivia(source, node)
	trailing := extractTrailingTrivia(source, node)
	text := string(source[node.StartByte():node.EndByte()])
	startLine, endLine := lineNumbers(source, node.StartByte(), node.EndByte())

	return Chunk{
		Text:     text,
		Kind:     kind,
		Hash:     ComputeHash(text, leading, trailing),
		Position: int(node.StartByte()),
		Metadata: Metadata{
			LeadingTrivia:  leading,
			TrailingTrivia: trailing,
			Breadcrumb:     breadcrumb(source, node),
			Language:       string(language),
			StartLine:      startLine,
			EndLine:        endLine,
		},
	}
}
