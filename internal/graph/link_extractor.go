// Package graph extracts the document link graph (C4) and computes
// type-weighted document importance from it (C5).
package graph

import (
	"path"
	"regexp"
	"strings"
)

// LinkType classifies how a link was discovered (spec §4.4, §"GLOSSARY").
type LinkType string

const (
	MarkdownLink LinkType = "markdown_link"
	CodeImport   LinkType = "code_import"
)

// Link is one directed edge candidate extracted from a document's raw text.
// TargetPath is collection-relative and normalized, but not yet resolved
// against the catalog — a caller building the stored graph drops any Link
// whose TargetPath matches no active document in the same collection (spec
// §4.4: "dangling targets... are dropped at build time").
type Link struct {
	Type       LinkType
	TargetPath string
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[[^\]]+\]\(([^)]+)\)`)
	rustModPattern       = regexp.MustCompile(`mod\s+([a-zA-Z_][a-zA-Z0-9_]*);`)
	pythonImportPattern  = regexp.MustCompile(`from\s+([a-zA-Z_][a-zA-Z0-9_.]*)\s+import`)
)

// ExtractLinks finds every markdown link and recognized code import in
// content, a document at sourcePath (collection-relative).
func ExtractLinks(content, sourcePath string) []Link {
	links := extractMarkdownLinks(content, sourcePath)
	links = append(links, extractCodeImports(content, sourcePath)...)
	return links
}

func extractMarkdownLinks(content, sourcePath string) []Link {
	var links []Link
	for _, match := range markdownLinkPattern.FindAllStringSubmatch(content, -1) {
		target := match[1]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			continue
		}
		if strings.HasPrefix(target, "#") {
			continue
		}
		links = append(links, Link{
			Type:       MarkdownLink,
			TargetPath: resolveRelative(sourcePath, target),
		})
	}
	return links
}

func extractCodeImports(content, sourcePath string) []Link {
	switch {
	case strings.HasSuffix(sourcePath, ".rs"):
		return extractRustImports(content, sourcePath)
	case strings.HasSuffix(sourcePath, ".py"):
		return extractPythonImports(content)
	case strings.HasSuffix(sourcePath, ".js"), strings.HasSuffix(sourcePath, ".ts"):
		// Recognized, intentionally unresolved (spec §4.4).
		return nil
	default:
		return nil
	}
}

func extractRustImports(content, sourcePath string) []Link {
	var links []Link
	for _, match := range rustModPattern.FindAllStringSubmatch(content, -1) {
		moduleName := match[1]
		target := moduleName + ".rs"
		links = append(links, Link{
			Type:       CodeImport,
			TargetPath: resolveRelative(sourcePath, target),
		})
	}
	return links
}

func extractPythonImports(content string) []Link {
	var links []Link
	for _, match := range pythonImportPattern.FindAllStringSubmatch(content, -1) {
		modulePath := strings.ReplaceAll(match[1], ".", "/")
		links = append(links, Link{
			Type:       CodeImport,
			TargetPath: modulePath + ".py",
		})
	}
	return links
}

// resolveRelative joins target against sourcePath's parent directory and
// normalizes ".."/"." out, mirroring a plain component stack rather than
// path.Clean: a ".." with nothing left to pop is silently dropped instead
// of being preserved, since targets never legitimately escape the
// collection root.
func resolveRelative(sourcePath, target string) string {
	if path.IsAbs(target) {
		return cleanComponents(target)
	}
	dir := path.Dir(sourcePath)
	if dir == "." {
		return cleanComponents(target)
	}
	return cleanComponents(dir + "/" + target)
}

func cleanComponents(p string) string {
	parts := strings.Split(p, "/")
	var stack []string
	for _, part := range parts {
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return strings.Join(stack, "/")
}
