package chunk

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is a supported AST-chunking language (spec §4.3).
type Language string

const (
	LangRust          Language = "rust"
	LangPython        Language = "python"
	LangJavaScript    Language = "javascript"
	LangTypeScript    Language = "typescript"
	LangTypeScriptTSX Language = "tsx"
	LangGo            Language = "go"
)

// extensionLanguage maps a lowercase extension (without the dot) to a Language.
var extensionLanguage = map[string]Language{
	"rs":  LangRust,
	"py":  LangPython,
	"pyi": LangPython,
	"js":  LangJavaScript,
	"mjs": LangJavaScript,
	"cjs": LangJavaScript,
	"jsx": LangJavaScript,
	"ts":  LangTypeScript,
	"mts": LangTypeScript,
	"cts": LangTypeScript,
	"tsx": LangTypeScriptTSX,
	"go":  LangGo,
}

// grammars maps each Language to its tree-sitter grammar.
var grammars = map[Language]*sitter.Language{
	LangRust:          rust.GetLanguage(),
	LangPython:        python.GetLanguage(),
	LangJavaScript:    javascript.GetLanguage(),
	LangTypeScript:    typescript.GetLanguage(),
	LangTypeScriptTSX: tsx.GetLanguage(),
	LangGo:            golang.GetLanguage(),
}

// LanguageFromPath detects the language from a file path's extension.
// The second return is false for unsupported or extensionless paths.
func LanguageFromPath(path string) (Language, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return LanguageFromExtension(ext)
}

// LanguageFromExtension detects the language from a bare extension string
// (with or without a leading dot).
func LanguageFromExtension(ext string) (Language, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	lang, ok := extensionLanguage[ext]
	return lang, ok
}

// IsSupported reports whether path's extension maps to a known language.
func IsSupported(path string) bool {
	_, ok := LanguageFromPath(path)
	return ok
}

func grammarFor(lang Language) (*sitter.Language, bool) {
	g, ok := grammars[lang]
	return g, ok
}
