// Package ranking implements the fusion/rerank pipeline (C9): combining a
// lexical pool and a vector pool with Reciprocal Rank Fusion, an optional
// reranker blend, and post-ranking directory/session adjustments. Every
// numeric constant here is read from rootconfig.RankingConfig rather than
// hardcoded, so a deployment can retune the pipeline without a rebuild.
package ranking

import (
	"sort"
	"strings"

	"github.com/epappas/agentroot-go/internal/rootconfig"
)

// Source tags where a ranked Item's score came from.
type Source int

const (
	SourceBM25 Source = iota
	SourceVector
	SourceHybrid
)

// String renders Source using the spec's result-record vocabulary
// (§4.1: "source ∈ {bm25, vector, hybrid, glossary}" — glossary has no
// producer in this package and is never returned here).
func (s Source) String() string {
	switch s {
	case SourceBM25:
		return "bm25"
	case SourceVector:
		return "vector"
	case SourceHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Item is a pool entry carried through the ranking pipeline. Hash identifies
// the underlying document or chunk; Filepath is its virtual path, used only
// for the directory boost.
type Item struct {
	Hash         string
	Filepath     string
	Score        float64
	Source       Source
	MatchedTerms []string
}

// HasStrongSignal reports whether the top lexical result is decisive enough
// that fusion/reranking can be skipped entirely (original's
// hybrid::has_strong_signal).
func HasStrongSignal(results []Item, cfg rootconfig.RankingConfig) bool {
	if len(results) == 0 {
		return false
	}
	if len(results) == 1 {
		return results[0].Score >= cfg.StrongSignalScore
	}
	top, second := results[0].Score, results[1].Score
	return top >= cfg.StrongSignalScore && (top-second) >= cfg.StrongSignalGap
}

// Fuse combines a lexical pool and a vector pool by Reciprocal Rank Fusion,
// weighting each pool per cfg and adding a rank-position bonus to the top of
// each list (original's hybrid::rrf_fusion), with the teacher's
// deterministic tie-break on ties (fusion.go's RRFFusion.compare): higher
// RRF score, then present-in-both-lists, then higher BM25 score, then
// lexicographic hash.
func Fuse(bm25, vec []Item, cfg rootconfig.RankingConfig) []Item {
	type acc struct {
		item        Item
		rrf         float64
		bm25Score   float64
		bm25Present bool
		vecPresent  bool
	}
	scores := make(map[string]*acc, len(bm25)+len(vec))

	getOrCreate := func(it Item) *acc {
		a, ok := scores[it.Hash]
		if !ok {
			a = &acc{item: it}
			scores[it.Hash] = a
		}
		return a
	}

	rankBonus := func(rank int) float64 {
		switch {
		case rank < 3:
			return cfg.RankBonusTop3
		case rank < 10:
			return cfg.RankBonusTop10
		default:
			return 0
		}
	}

	for rank, it := range bm25 {
		a := getOrCreate(it)
		a.rrf += cfg.BM25Weight/(cfg.RRFConstant+float64(rank+1)) + rankBonus(rank)
		a.bm25Score = it.Score
		a.bm25Present = true
	}
	for rank, it := range vec {
		a := getOrCreate(it)
		a.rrf += cfg.VectorWeight/(cfg.RRFConstant+float64(rank+1)) + rankBonus(rank)
		if !a.vecPresent && it.Filepath != "" {
			a.item.Filepath = it.Filepath
		}
		a.vecPresent = true
	}

	results := make([]Item, 0, len(scores))
	accs := make([]*acc, 0, len(scores))
	for _, a := range scores {
		accs = append(accs, a)
	}

	sort.Slice(accs, func(i, j int) bool {
		ai, aj := accs[i], accs[j]
		if ai.rrf != aj.rrf {
			return ai.rrf > aj.rrf
		}
		aBoth := ai.bm25Present && ai.vecPresent
		bBoth := aj.bm25Present && aj.vecPresent
		if aBoth != bBoth {
			return aBoth
		}
		if ai.bm25Score != aj.bm25Score {
			return ai.bm25Score > aj.bm25Score
		}
		return ai.item.Hash < aj.item.Hash
	})

	var maxRRF float64
	if len(accs) > 0 {
		maxRRF = accs[0].rrf
	}
	for _, a := range accs {
		item := a.item
		if maxRRF > 0 {
			item.Score = a.rrf / maxRRF
		} else {
			item.Score = 0
		}
		item.Source = SourceHybrid
		results = append(results, item)
	}
	return results
}

// CapForRerank truncates a fused pool to cfg.MaxRerankDocs before handing it
// to an (expensive) reranker.
func CapForRerank(results []Item, cfg rootconfig.RankingConfig) []Item {
	if cfg.MaxRerankDocs > 0 && len(results) > cfg.MaxRerankDocs {
		return results[:cfg.MaxRerankDocs]
	}
	return results
}

// BlendScores combines a fused RRF score with a reranker's score, trusting
// the reranker more as the fused rank gets worse (original's
// hybrid::blend_scores). rrfRank is 1-indexed.
func BlendScores(rrfRank int, rrfScore, rerankScore float64, cfg rootconfig.RankingConfig) float64 {
	var rrfWeight float64
	switch {
	case rrfRank <= 3:
		rrfWeight = cfg.BlendWeightTop3
	case rrfRank <= 10:
		rrfWeight = cfg.BlendWeightTop10
	default:
		rrfWeight = cfg.BlendWeightRest
	}
	return rrfWeight*rrfScore + (1-rrfWeight)*rerankScore
}

// BlendRerankScores applies BlendScores in place given a hash->rerank-score
// map, then re-sorts by the blended score descending. Hashes absent from
// rerankScores are left with their fused score.
func BlendRerankScores(results []Item, rerankScores map[string]float64, cfg rootconfig.RankingConfig) {
	for i, r := range results {
		if score, ok := rerankScores[r.Hash]; ok {
			results[i].Score = BlendScores(i+1, r.Score, score, cfg)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

// ApplyDirectoryBoost boosts (capped at 1.0) results below rank 3 that share
// a parent directory with one of the top-3 results, then re-sorts
// descending if anything changed (original's directory_boost::apply_directory_boost).
func ApplyDirectoryBoost(results []Item, cfg rootconfig.RankingConfig) {
	topN := cfg.DirectoryBoostTopN
	if topN <= 0 {
		topN = 3
	}
	if len(results) < 2 {
		return
	}

	topDirs := make(map[string]struct{})
	for i := 0; i < topN && i < len(results); i++ {
		if dir, ok := parentDir(results[i].Filepath); ok {
			topDirs[dir] = struct{}{}
		}
	}
	if len(topDirs) == 0 {
		return
	}

	boosted := false
	for i := topN; i < len(results); i++ {
		dir, ok := parentDir(results[i].Filepath)
		if !ok {
			continue
		}
		if _, match := topDirs[dir]; match {
			boosted = true
			score := results[i].Score * cfg.DirectoryBoostFactor
			if score > 1.0 {
				score = 1.0
			}
			results[i].Score = score
		}
	}
	if boosted {
		sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	}
}

func parentDir(filepath string) (string, bool) {
	i := strings.LastIndex(filepath, "/")
	if i < 0 {
		return "", false
	}
	return filepath[:i], true
}

// ApplySessionDemotion multiplies the score of any result whose hash has
// already been seen in this session, then re-sorts descending (original's
// session_aware::apply_session_awareness).
func ApplySessionDemotion(results []Item, seen map[string]struct{}, cfg rootconfig.RankingConfig) {
	if len(seen) == 0 {
		return
	}
	for i, r := range results {
		if _, ok := seen[r.Hash]; ok {
			results[i].Score = r.Score * cfg.SessionSeenMultiplier
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

// FinalFilter drops results below minScore and truncates to limit (0 means
// unlimited), matching the final step of original's hybrid_search.
func FinalFilter(results []Item, limit int, minScore float64) []Item {
	filtered := results[:0:0]
	for _, r := range results {
		if r.Score >= minScore {
			filtered = append(filtered, r)
		}
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}
