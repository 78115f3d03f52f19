// Package ingest implements the ingestion orchestrator (C13): the pipeline
// that turns a collection's files on disk into catalog rows, chunk FTS
// entries, embeddings, and link/importance data. It is the only package that
// wires content, scan, chunk, graph, catalog, vectorindex, and lexical
// together; every one of those packages is otherwise usable standalone.
//
// This replaces the teacher's internal/index, which did the same job against
// a flat content-hash index instead of the richer chunk/link/embedding
// schema here.
package ingest

import (
	"context"
	"log/slog"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/catalog"
	"github.com/epappas/agentroot-go/internal/chunk"
	"github.com/epappas/agentroot-go/internal/content"
	"github.com/epappas/agentroot-go/internal/graph"
	"github.com/epappas/agentroot-go/internal/lexical"
	"github.com/epappas/agentroot-go/internal/llm"
	"github.com/epappas/agentroot-go/internal/rootlog"
	"github.com/epappas/agentroot-go/internal/scan"
	"github.com/epappas/agentroot-go/internal/vectorindex"
)

// Stats summarizes one Reindex call.
type Stats struct {
	Scanned     int
	Inserted    int
	Updated     int
	Unchanged   int
	Deactivated int
	ChunksTotal int
	LinksTotal  int
	Embedded    int
	MetadataGen int
	Errors      []error
}

// Pipeline wires the catalog together with the collaborators and indexes an
// ingest run may exercise. Embedder, Metadata, ChunkIndex and Vector are all
// optional: a nil Embedder skips embedding (and vector indexing with it), a
// nil Metadata skips LLM metadata generation, a nil ChunkIndex skips the
// chunk FTS mirror, and a nil Vector skips vector-index invalidation.
type Pipeline struct {
	Catalog    *catalog.Catalog
	Chunker    *chunk.Chunker
	Embedder   llm.Embedder
	Metadata   *llm.CachedMetadataGenerator
	ChunkIndex *lexical.ChunkIndex
	Vector     *vectorindex.Index
	Logger     *slog.Logger
}

// New builds a Pipeline. chunker may be nil, in which case chunk.DefaultOptions()
// is used.
func New(cat *catalog.Catalog, chunker *chunk.Chunker) *Pipeline {
	if chunker == nil {
		chunker = chunk.New(chunk.DefaultOptions())
	}
	return &Pipeline{Catalog: cat, Chunker: chunker, Logger: rootlog.Default()}
}

// Reindex walks collection's root (per info.Path/info.Pattern), and for each
// file found: hashes and stores its content, inserts-or-updates its document
// row, chunks it, replaces its chunk rows (and chunk FTS mirror, if attached),
// extracts and resolves its links, and — if an Embedder is attached — stores
// embeddings for every chunk. After the walk, paths no longer present are
// deactivated, document importance is recomputed, and the collection's
// updated_at is touched.
//
// This mirrors the original's reindex_collection scan/hash/compare loop,
// extended with the chunk/link/embedding/metadata stages that the original's
// collection-level code didn't itself perform.
func (p *Pipeline) Reindex(ctx context.Context, info catalog.CollectionInfo) (Stats, error) {
	var stats Stats
	store := content.NewStore(p.Catalog.DB())

	results, errs := scan.Scan(ctx, scan.Options{
		Root:          info.Path,
		Pattern:       info.Pattern,
		ExcludeHidden: true,
		Logger:        p.Logger,
	})

	var keepPaths []string
	pendingLinks := make(map[int64]struct {
		path string
		text string
	})

	for res := range results {
		select {
		case <-ctx.Done():
			return stats, agenterr.Wrap(agenterr.Cancelled, ctx.Err(), "reindex cancelled")
		default:
		}

		stats.Scanned++
		keepPaths = append(keepPaths, res.RelPath)

		docID, data, changed, isNew, err := p.ingestFile(ctx, store, info.Name, res)
		if err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}
		if isNew {
			stats.Inserted++
		} else if changed {
			stats.Updated++
		} else {
			stats.Unchanged++
			continue
		}

		chunks := p.Chunker.Chunk(ctx, res.AbsPath, data)
		if err := p.Catalog.ReplaceChunks(ctx, docID, chunks); err != nil {
			stats.Errors = append(stats.Errors, err)
			continue
		}
		stats.ChunksTotal += len(chunks)

		if p.ChunkIndex != nil {
			if err := p.indexChunks(ctx, chunks); err != nil {
				stats.Errors = append(stats.Errors, err)
			}
		}

		if p.Embedder != nil {
			n, err := p.embedChunks(ctx, chunks)
			stats.Embedded += n
			if err != nil {
				stats.Errors = append(stats.Errors, err)
			}
		}

		if p.Metadata != nil {
			if err := p.generateMetadata(ctx, docID, res.RelPath, string(data), false); err != nil {
				stats.Errors = append(stats.Errors, err)
			} else {
				stats.MetadataGen++
			}
		}

		pendingLinks[docID] = struct {
			path string
			text string
		}{path: res.RelPath, text: string(data)}
	}

	if err := <-errs; err != nil {
		stats.Errors = append(stats.Errors, err)
	}

	if err := p.replaceLinks(ctx, info.Name, pendingLinks); err != nil {
		stats.Errors = append(stats.Errors, err)
	} else {
		stats.LinksTotal = len(pendingLinks)
	}

	deactivated, err := p.Catalog.DeactivateMissing(ctx, info.Name, keepPaths)
	if err != nil {
		stats.Errors = append(stats.Errors, err)
	}
	stats.Deactivated = deactivated

	if _, err := p.Catalog.RebuildImportance(ctx); err != nil {
		stats.Errors = append(stats.Errors, err)
	}

	if err := p.Catalog.TouchCollection(ctx, info.Name); err != nil {
		stats.Errors = append(stats.Errors, err)
	}

	if p.Vector != nil {
		p.Vector.Invalidate()
	}

	return stats, nil
}

// ingestFile hashes res's content and inserts or updates its document row,
// returning the document id, whether its content changed, and whether the
// row was newly created.
func (p *Pipeline) ingestFile(ctx context.Context, store *content.Store, collection string, res scan.Result) (docID int64, data []byte, changed, isNew bool, err error) {
	data, err = readFile(res.AbsPath)
	if err != nil {
		return 0, nil, false, false, agenterr.Wrap(agenterr.IO, err, "read "+res.AbsPath)
	}
	hash := content.HashBytes(data)

	existing, found, err := p.Catalog.FindActiveDocument(ctx, collection, res.RelPath)
	if err != nil {
		return 0, nil, false, false, err
	}

	if found && existing.Hash == hash {
		return existing.ID, data, false, false, nil
	}

	if err := store.InsertContent(ctx, hash, data); err != nil {
		return 0, nil, false, false, err
	}

	title := res.RelPath
	if found {
		if err := p.Catalog.UpdateDocument(ctx, existing.ID, title, hash, string(data)); err != nil {
			return 0, nil, false, false, err
		}
		return existing.ID, data, true, false, nil
	}

	id, err := p.Catalog.InsertDocument(ctx, collection, res.RelPath, title, hash, string(data))
	if err != nil {
		return 0, nil, false, false, err
	}
	return id, data, true, true, nil
}

// embedChunks embeds and stores a vector for every chunk that doesn't
// already have one under the embedder's model name.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	model := p.Embedder.ModelName()
	var toEmbed []chunk.Chunk
	for _, c := range chunks {
		if _, ok, err := p.Catalog.GetEmbedding(ctx, c.Hash, model); err == nil && ok {
			continue
		}
		toEmbed = append(toEmbed, c)
	}
	if len(toEmbed) == 0 {
		return 0, nil
	}

	texts := make([]string, len(toEmbed))
	for i, c := range toEmbed {
		texts[i] = c.Text
	}
	vectors, err := p.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, agenterr.Wrap(agenterr.Collaborator, err, "embed chunk batch")
	}

	stored := 0
	for i, v := range vectors {
		if i >= len(toEmbed) {
			break
		}
		if err := p.Catalog.StoreEmbedding(ctx, toEmbed[i].Hash, model, v); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func (p *Pipeline) indexChunks(ctx context.Context, chunks []chunk.Chunk) error {
	docs := make([]lexical.ChunkDoc, len(chunks))
	for i, c := range chunks {
		docs[i] = lexical.ChunkDoc{
			Hash:       c.Hash,
			Text:       c.Text,
			Kind:       string(c.Kind),
			Breadcrumb: c.Metadata.Breadcrumb,
			Language:   c.Metadata.Language,
		}
	}
	return p.ChunkIndex.Index(ctx, docs)
}

// replaceLinks extracts and resolves links for every document ingested this
// run, then writes them with ReplaceLinks.
func (p *Pipeline) replaceLinks(ctx context.Context, collection string, pending map[int64]struct {
	path string
	text string
}) error {
	if len(pending) == 0 {
		return nil
	}

	for docID, doc := range pending {
		links := graph.ExtractLinks(doc.text, doc.path)
		resolve := func(l graph.Link) (int64, bool) {
			target, ok, err := p.Catalog.FindActiveDocument(ctx, collection, l.TargetPath)
			if err != nil || !ok {
				return 0, false
			}
			return target.ID, true
		}
		if _, err := p.Catalog.ReplaceLinks(ctx, docID, links, resolve); err != nil {
			return err
		}
	}
	return nil
}
