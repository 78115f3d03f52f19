package llm

import (
	"context"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/epappas/agentroot-go/internal/agenterr"
	"github.com/epappas/agentroot-go/internal/catalog"
)

// metadataCacheLRUSize bounds the in-process LRU sitting in front of the
// catalog's llm_cache table, so a hot re-index doesn't round-trip SQLite for
// every document whose metadata was already generated this run.
const metadataCacheLRUSize = 512

// cacheKey builds the "metadata:v1:<content_hash>" key spec §4.12 requires.
func cacheKey(contentHash string) string {
	return fmt.Sprintf("metadata:v1:%s", contentHash)
}

// CachedMetadataGenerator wraps a MetadataGenerator with an in-process LRU
// backed by the catalog's llm_cache table, so repeated calls for the same
// content hash (re-indexing an unchanged file, a second run of the same
// corpus) skip the collaborator entirely.
type CachedMetadataGenerator struct {
	inner MetadataGenerator
	cat   *catalog.Catalog
	lru   *lru.Cache[string, DocumentMetadata]
}

func NewCachedMetadataGenerator(inner MetadataGenerator, cat *catalog.Catalog) (*CachedMetadataGenerator, error) {
	l, err := lru.New[string, DocumentMetadata](metadataCacheLRUSize)
	if err != nil {
		return nil, agenterr.Wrap(agenterr.Collaborator, err, "create metadata LRU cache")
	}
	return &CachedMetadataGenerator{inner: inner, cat: cat, lru: l}, nil
}

// Generate returns cached metadata for contentHash if present (LRU, then
// catalog), otherwise calls the wrapped generator and stores the result in
// both. force bypasses both cache layers and clears the catalog entry
// before regenerating (spec §9's metadata-refresh Open Question).
func (c *CachedMetadataGenerator) Generate(ctx context.Context, contentHash string, doc MetadataContext, force bool) (DocumentMetadata, error) {
	key := cacheKey(contentHash)

	if !force {
		if meta, ok := c.lru.Get(key); ok {
			return meta, nil
		}
		if raw, ok, err := c.cat.GetLLMCache(ctx, key); err != nil {
			return DocumentMetadata{}, err
		} else if ok {
			var meta DocumentMetadata
			if err := json.Unmarshal([]byte(raw), &meta); err == nil {
				c.lru.Add(key, meta)
				return meta, nil
			}
			// Corrupt cache entry: fall through and regenerate.
		}
	} else {
		c.lru.Remove(key)
		if err := c.cat.ClearLLMCache(ctx, key); err != nil {
			return DocumentMetadata{}, err
		}
	}

	meta, err := c.inner.Generate(ctx, doc)
	if err != nil {
		return DocumentMetadata{}, agenterr.Wrap(agenterr.Collaborator, err, "generate document metadata")
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return DocumentMetadata{}, agenterr.Wrap(agenterr.Parse, err, "marshal document metadata for cache")
	}
	if err := c.cat.SetLLMCache(ctx, key, string(raw), 0); err != nil {
		return DocumentMetadata{}, err
	}
	c.lru.Add(key, meta)
	return meta, nil
}

func (c *CachedMetadataGenerator) ModelName() string {
	return c.inner.ModelName()
}
