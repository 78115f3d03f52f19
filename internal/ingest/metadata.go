package ingest

import (
	"context"
	"strings"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/content"
	"github.com/epappas/agentroot-go/internal/llm"
)

// generateMetadata derives and stores LLM metadata for one document,
// resolving whatever path-prefix context applies to it first. force is
// threaded straight through to the CachedMetadataGenerator.
func (p *Pipeline) generateMetadata(ctx context.Context, docID int64, relPath, body string, force bool) error {
	doc, ok, err := p.Catalog.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if !ok {
		return agenterr.New(agenterr.NotFound, "document not found: "+relPath)
	}

	docContext, _, err := p.Catalog.ResolveContext(ctx, relPath)
	if err != nil {
		return err
	}

	meta, err := p.Metadata.Generate(ctx, doc.Hash, llm.MetadataContext{
		Path:    relPath,
		Body:    body,
		Context: docContext,
	}, force)
	if err != nil {
		return err
	}

	return p.Catalog.UpdateDocumentMetadata(ctx, docID,
		meta.Summary,
		meta.SemanticTitle,
		strings.Join(meta.Keywords, ","),
		meta.Intent,
		strings.Join(meta.Concepts, ","),
		meta.Category,
		meta.Difficulty,
		"",
	)
}

// RegenerateMetadata recomputes LLM metadata for exactly one document,
// identified by its collection and collection-relative path. force clears
// both the in-process and catalog-backed cache layers before regenerating,
// implementing the decision that a caller should be able to force a refresh
// even when the document's content hash hasn't changed.
//
// Requires a Metadata generator to be attached; returns a Config error
// otherwise.
func (p *Pipeline) RegenerateMetadata(ctx context.Context, collection, relPath string, force bool) error {
	if p.Metadata == nil {
		return agenterr.New(agenterr.Config, "no metadata generator attached to this pipeline")
	}

	doc, ok, err := p.Catalog.FindActiveDocument(ctx, collection, relPath)
	if err != nil {
		return err
	}
	if !ok {
		return agenterr.New(agenterr.NotFound, "no active document at "+collection+"/"+relPath)
	}

	store := content.NewStore(p.Catalog.DB())
	body, ok, err := store.GetContent(ctx, doc.Hash)
	if err != nil {
		return err
	}
	if !ok {
		return agenterr.New(agenterr.NotFound, "content blob missing for hash "+doc.Hash)
	}

	return p.generateMetadata(ctx, doc.ID, relPath, string(body), force)
}
