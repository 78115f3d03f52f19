package ranking

import (
	"context"
	"strings"
)

// maxRelatedDirectories, maxRelatedConcepts and maxRefinementQueries cap the
// suggestions step's three lists (spec §4.9: "up to 5 related parent
// directories, up to 10 deduplicated concept tags ... up to 3 refinement
// query strings").
const (
	maxRelatedDirectories = 5
	maxRelatedConcepts    = 10
	maxRefinementQueries  = 3
)

// Suggestions is the post-ranking "what next" hint emitted alongside a
// hybrid search's results (original's search::suggestions::SearchSuggestions).
type Suggestions struct {
	RelatedDirectories []string
	RelatedConcepts    []string
	RefinementQueries  []string
	UnseenRelated      int
}

// KeywordLookup resolves a ranked result's hash to its stored llm_keywords
// (ranking.Item itself doesn't carry them; they live on the catalog
// document row a result's hash identifies).
type KeywordLookup func(ctx context.Context, docHash string) (keywords []string, ok bool, err error)

// UnseenCounter counts active documents under any of the given virtual-path
// directory prefixes whose hash is not in seen (original's
// suggestions::count_unseen_in_directories).
type UnseenCounter func(ctx context.Context, directories []string, seen map[string]struct{}) (int, error)

// ComputeSuggestions derives related directories/concepts/refinements and an
// unseen-document count from a finished ranking result (original's
// suggestions::compute_suggestions). lookup and counter may be nil, in
// which case the corresponding fields are left at their zero value rather
// than erroring — suggestions are a convenience, not load-bearing.
func ComputeSuggestions(ctx context.Context, results []Item, query string, seen map[string]struct{}, lookup KeywordLookup, counter UnseenCounter) (Suggestions, error) {
	dirs := relatedDirectories(results)

	var concepts []string
	if lookup != nil {
		concepts = relatedConcepts(ctx, results, lookup)
	}

	refinements := generateRefinements(query, concepts)

	var unseen int
	if counter != nil && len(dirs) > 0 {
		n, err := counter(ctx, dirs, seen)
		if err != nil {
			return Suggestions{}, err
		}
		unseen = n
	}

	return Suggestions{
		RelatedDirectories: dirs,
		RelatedConcepts:    concepts,
		RefinementQueries:  refinements,
		UnseenRelated:      unseen,
	}, nil
}

// relatedDirectories returns up to maxRelatedDirectories deduplicated parent
// directories of results, in first-seen order.
func relatedDirectories(results []Item) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, r := range results {
		dir, ok := parentDir(r.Filepath)
		if !ok {
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
		if len(dirs) >= maxRelatedDirectories {
			break
		}
	}
	return dirs
}

// relatedConcepts returns up to maxRelatedConcepts deduplicated keyword
// tags drawn from results' llm_keywords, in first-seen order.
func relatedConcepts(ctx context.Context, results []Item, lookup KeywordLookup) []string {
	seen := make(map[string]struct{})
	var concepts []string
	for _, r := range results {
		keywords, ok, err := lookup(ctx, r.Hash)
		if err != nil || !ok {
			continue
		}
		for _, kw := range keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			concepts = append(concepts, kw)
			if len(concepts) >= maxRelatedConcepts {
				return concepts
			}
		}
	}
	return concepts
}

// generateRefinements builds up to maxRefinementQueries "<query> <concept>"
// strings from concepts not already present (case-insensitively) as a
// substring of query (original's suggestions::generate_refinements).
func generateRefinements(query string, concepts []string) []string {
	lowerQuery := strings.ToLower(query)
	var refinements []string
	for _, c := range concepts {
		if strings.Contains(lowerQuery, strings.ToLower(c)) {
			continue
		}
		refinements = append(refinements, query+" "+c)
		if len(refinements) >= maxRefinementQueries {
			break
		}
	}
	return refinements
}
