// Package agentroot is the public facade: a single entry point wiring the
// catalog, the vector and lexical indexes, the ranking/query pipelines, the
// session store, and whatever LLM collaborators a caller attaches into one
// object a host program (CLI, daemon, test) can drive end to end.
package agentroot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/epappas/agentroot-go/internal/catalog"
	"github.com/epappas/agentroot-go/internal/chunk"
	"github.com/epappas/agentroot-go/internal/content"
	"github.com/epappas/agentroot-go/internal/ingest"
	"github.com/epappas/agentroot-go/internal/lexical"
	"github.com/epappas/agentroot-go/internal/llm"
	"github.com/epappas/agentroot-go/internal/query"
	"github.com/epappas/agentroot-go/internal/ranking"
	"github.com/epappas/agentroot-go/internal/rootconfig"
	"github.com/epappas/agentroot-go/internal/rootlog"
	"github.com/epappas/agentroot-go/internal/session"
	"github.com/epappas/agentroot-go/internal/vectorindex"
	"github.com/epappas/agentroot-go/internal/vpath"
)

// Collaborators bundles every optional out-of-core integration a caller may
// attach. A zero-value Collaborators is valid: every component degrades per
// spec §5's failure policy (full-text search only, no rerank/expansion/
// planning/metadata).
type Collaborators struct {
	Embedder llm.Embedder
	Reranker llm.Reranker
	Expander llm.QueryExpander
	Metadata llm.MetadataGenerator
	Planner  llm.WorkflowPlanner
}

// App is the facade. Build one with Open and Close it when done.
type App struct {
	cfg      *rootconfig.Config
	cat      *catalog.Catalog
	vector   *vectorindex.Index
	chunkIdx *lexical.ChunkIndex
	pipeline *ingest.Pipeline
	sessions *session.Manager
	collab   Collaborators
	logger   *slog.Logger
}

// Open opens (creating if absent) the catalog named by cfg.Paths.CatalogPath,
// attaches the vector index and chunk FTS mirror, and wires every attached
// collaborator into the ingest pipeline. Collaborators may be a zero value.
func Open(ctx context.Context, cfg *rootconfig.Config, collab Collaborators, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = rootconfig.New()
	}
	if logger == nil {
		logger = rootlog.Default()
	}

	cat, err := catalog.Open(ctx, catalog.Options{Path: cfg.Paths.CatalogPath})
	if err != nil {
		return nil, err
	}

	chunkIdx, err := lexical.NewChunkIndex()
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("open chunk index: %w", err)
	}

	vector := vectorindex.New(vectorindex.Options{
		Dimensions:    collaboratorDimensions(collab, cfg),
		HNSWThreshold: cfg.Vector.HNSWThreshold,
	})
	if collab.Embedder != nil {
		vector.Attach(cat, collab.Embedder.ModelName())
	}

	chunker := chunk.New(chunk.Options{MaxChars: cfg.Chunk.MaxChars, OverlapChars: cfg.Chunk.OverlapChars, Logger: logger})
	pipeline := ingest.New(cat, chunker)
	pipeline.Embedder = collab.Embedder
	pipeline.ChunkIndex = chunkIdx
	pipeline.Vector = vector
	pipeline.Logger = logger
	if collab.Metadata != nil {
		cachedMeta, err := llm.NewCachedMetadataGenerator(collab.Metadata, cat)
		if err != nil {
			cat.Close()
			return nil, fmt.Errorf("wrap metadata generator: %w", err)
		}
		pipeline.Metadata = cachedMeta
	}

	sessions := session.NewManager(cat, cfg.Session, cfg.Ranking)

	return &App{
		cfg:      cfg,
		cat:      cat,
		vector:   vector,
		chunkIdx: chunkIdx,
		pipeline: pipeline,
		sessions: sessions,
		collab:   collab,
		logger:   logger,
	}, nil
}

func collaboratorDimensions(collab Collaborators, cfg *rootconfig.Config) int {
	if collab.Embedder != nil {
		return collab.Embedder.Dimensions()
	}
	if cfg.Embedding.Dimensions > 0 {
		return cfg.Embedding.Dimensions
	}
	return 768
}

// Close releases the catalog's advisory lock and closes its database handle,
// and closes the chunk FTS mirror.
func (a *App) Close() error {
	if err := a.chunkIdx.Close(); err != nil {
		a.logger.Warn("close chunk index failed", "error", err)
	}
	return a.cat.Close()
}

// Catalog exposes the underlying catalog for operations this facade doesn't
// itself wrap (collection/context CRUD, stats, diagnostics).
func (a *App) Catalog() *catalog.Catalog { return a.cat }

// AddCollection registers a new local-filesystem collection.
func (a *App) AddCollection(ctx context.Context, name, path, pattern string) error {
	return a.cat.AddCollection(ctx, name, path, pattern)
}

// Reindex walks a registered collection's files into the catalog, running
// every attached collaborator stage (chunking, chunk FTS, embedding,
// metadata generation) along the way.
func (a *App) Reindex(ctx context.Context, collection string) (ingest.Stats, error) {
	info, ok, err := a.cat.GetCollection(ctx, collection)
	if err != nil {
		return ingest.Stats{}, err
	}
	if !ok {
		return ingest.Stats{}, fmt.Errorf("unknown collection %q", collection)
	}
	return a.pipeline.Reindex(ctx, info)
}

// RegenerateMetadata recomputes LLM metadata for a single document, bypassing
// the cache when force is set (spec §9 Open Question 1).
func (a *App) RegenerateMetadata(ctx context.Context, collection, path string, force bool) error {
	if a.pipeline.Metadata == nil {
		return fmt.Errorf("no metadata generator attached")
	}
	doc, ok, err := a.cat.FindActiveDocument(ctx, collection, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no active document at %s/%s", collection, path)
	}
	body, ok, err := content.NewStore(a.cat.DB()).GetContent(ctx, doc.Hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("content missing for %s/%s", collection, path)
	}
	meta, err := a.generateMetadata(ctx, string(body), vpath.Build(collection, path), force)
	if err != nil {
		return err
	}
	return a.cat.UpdateDocumentMetadata(ctx, doc.ID,
		meta.Summary, meta.SemanticTitle, strings.Join(meta.Keywords, ","), meta.Intent,
		strings.Join(meta.Concepts, ","), meta.Category, meta.Difficulty, doc.UserMetadata)
}

// generateMetadata calls the attached MetadataGenerator for one document.
// virtualPath is used both as the generator's path hint and to resolve any
// registered context prefix (spec §9 Open Question 1).
func (a *App) generateMetadata(ctx context.Context, body, virtualPath string, force bool) (llm.DocumentMetadata, error) {
	resolvedContext, _, err := a.cat.ResolveContext(ctx, virtualPath)
	if err != nil {
		return llm.DocumentMetadata{}, err
	}
	if force {
		hash := content.HashBytes([]byte(body))
		if err := a.cat.ClearLLMCache(ctx, "metadata:v1:"+hash); err != nil {
			return llm.DocumentMetadata{}, err
		}
	}
	return a.pipeline.Metadata.Generate(ctx, llm.MetadataContext{Path: virtualPath, Body: body, Context: resolvedContext})
}
