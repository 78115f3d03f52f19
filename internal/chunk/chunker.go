package chunk

import (
	"context"
	"log/slog"
	"strings"

	"github.com/epappas/agentroot-go/internal/rootlog"
)

// Options configures a Chunker.
type Options struct {
	// MaxChars is the target maximum chunk size in bytes before striding
	// kicks in (spec §3 default 3200).
	MaxChars int
	// OverlapChars is the stride overlap in bytes (spec §3 default 480).
	OverlapChars int
	Logger       *slog.Logger
}

// DefaultOptions returns the spec's default striding parameters.
func DefaultOptions() Options {
	return Options{MaxChars: 3200, OverlapChars: 480}
}

// Chunker splits a document's bytes into semantic chunks, falling back to
// character chunking for unsupported languages or parse failures (C3).
type Chunker struct {
	opts   Options
	logger *slog.Logger
}

// New builds a Chunker. Zero-valued fields in opts fall back to
// DefaultOptions.
func New(opts Options) *Chunker {
	defaults := DefaultOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = defaults.MaxChars
	}
	if opts.OverlapChars <= 0 {
		opts.OverlapChars = defaults.OverlapChars
	}
	return &Chunker{opts: opts, logger: rootlog.Or(opts.Logger)}
}

// Chunk splits source (the bytes of the file at path) into chunks.
func (c *Chunker) Chunk(ctx context.Context, path string, source []byte) []Chunk {
	lang, ok := LanguageFromPath(path)
	if !ok {
		return c.fallback(source)
	}

	tree, err := parse(ctx, source, lang)
	if err != nil {
		c.logger.Debug("chunk: parse failed, falling back to character chunking",
			slog.String("path", path), slog.String("language", string(lang)), slog.String("error", err.Error()))
		return c.fallback(source)
	}
	defer tree.Close()

	chunks := strategyFor(lang).extractChunks(source, tree.RootNode(), lang)
	return splitAllOversized(chunks, c.opts.MaxChars, c.opts.OverlapChars)
}

// fallback character-chunks source as a single Text chunk, then strides it
// if it exceeds MaxChars — reusing the same striding algorithm AST chunks go
// through, since a whole-file chunk below the size target is already
// exactly "one chunk" (spec §4.3).
func (c *Chunker) fallback(source []byte) []Chunk {
	text := string(source)
	whole := Chunk{
		Text: text,
		Kind: KindText,
		Hash: ComputeHash(text, "", ""),
		Metadata: Metadata{
			StartLine: 1,
			EndLine:   strings.Count(text, "\n") + 1,
		},
	}
	return splitOversized(whole, c.opts.MaxChars, c.opts.OverlapChars)
}

func strategyFor(lang Language) strategy {
	switch lang {
	case LangRust:
		return rustStrategy{}
	case LangPython:
		return pythonStrategy{}
	case LangJavaScript:
		return javascriptStrategy{typescript: false}
	case LangTypeScript, LangTypeScriptTSX:
		return javascriptStrategy{typescript: true}
	case LangGo:
		return goStrategy{}
	default:
		return javascriptStrategy{typescript: false}
	}
}
