package query

import (
	"context"
	"fmt"

	"github.com/epappas/agentroot-go/internal/llm"
	"github.com/epappas/agentroot-go/internal/ranking"
	"github.com/epappas/agentroot-go/internal/rootlog"
)

// SmartSearchParams bundles what strategy selection needs beyond a plain
// hybrid call: whether the corpus has any embeddings at all, the retrieval
// backends and collaborators to run steps against, and the optional
// workflow planner.
type SmartSearchParams struct {
	HasEmbeddings bool
	Searchers     ranking.Searchers
	Collaborators ranking.Collaborators
	Planner       llm.WorkflowPlanner
	Config        ranking.Options
	Hybrid        ranking.HybridParams
}

// SmartSearch picks a retrieval strategy per spec §4.10: no embeddings
// means BM25 alone; otherwise a configured workflow planner is asked to
// plan and execute a small step program, falling back to the default
// hybrid pipeline (internal/ranking.RunHybrid) if no planner is configured,
// planning fails, or execution fails.
func SmartSearch(ctx context.Context, query string, p SmartSearchParams) (ranking.HybridResult, error) {
	if !p.HasEmbeddings {
		items, err := p.Searchers.BM25(ctx, query)
		if err != nil {
			return ranking.HybridResult{}, err
		}
		return ranking.HybridResult{
			Items:    ranking.FinalFilter(items, p.Hybrid.Limit, p.Hybrid.MinScore),
			Strategy: ranking.SourceBM25,
		}, nil
	}

	if p.Planner != nil {
		if result, ok := runPlannedProgram(ctx, query, p); ok {
			return result, nil
		}
	}

	return ranking.RunHybrid(ctx, query, p.Searchers, p.Collaborators, p.Config, p.Hybrid, nil)
}

// runPlannedProgram asks the planner for a step program and executes it,
// reporting ok=false on any planning or execution failure so the caller
// falls back to the default hybrid pipeline.
func runPlannedProgram(ctx context.Context, query string, p SmartSearchParams) (ranking.HybridResult, bool) {
	logger := rootlog.Default()

	steps, err := p.Planner.Plan(ctx, query)
	if err != nil {
		logger.Warn("smart search planner failed, falling back to hybrid", "error", err)
		return ranking.HybridResult{}, false
	}

	items, err := executeProgram(ctx, steps, query, p.Searchers, p.Collaborators, p.Config)
	if err != nil {
		logger.Warn("smart search step program failed, falling back to hybrid", "error", err)
		return ranking.HybridResult{}, false
	}

	ranking.ApplyDirectoryBoost(items, p.Config)
	if len(p.Hybrid.Seen) > 0 {
		ranking.ApplySessionDemotion(items, p.Hybrid.Seen, p.Config)
	}

	return ranking.HybridResult{
		Items:    ranking.FinalFilter(items, p.Hybrid.Limit, p.Hybrid.MinScore),
		Strategy: ranking.SourceHybrid,
	}, true
}

// programState is the executor's working memory: current is "the prior
// step's result list" the spec's contract threads through every step;
// lastBM25/lastVec are kept alongside it so a merge step has two pools to
// fuse (a linear single-list pipe has nothing to merge on its own).
type programState struct {
	current  []ranking.Item
	lastBM25 []ranking.Item
	lastVec  []ranking.Item
}

// executeProgram runs steps strictly in order, each reading the prior
// step's output, and returns the final step's result list (spec §4.10).
func executeProgram(ctx context.Context, steps []llm.Step, original string, searchers ranking.Searchers, collab ranking.Collaborators, cfg ranking.Options) ([]ranking.Item, error) {
	var state programState
	logger := rootlog.Default()

	for _, step := range steps {
		text := step.Query
		if text == "" {
			text = original
		}

		switch step.Action {
		case llm.StepBM25:
			if searchers.BM25 == nil {
				return nil, fmt.Errorf("planner step %q: no bm25 searcher configured", step.Action)
			}
			items, err := searchers.BM25(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("planner step %q: %w", step.Action, err)
			}
			state.lastBM25 = items
			state.current = items

		case llm.StepVector:
			items, warn := ranking.VectorStep(ctx, searchers, collab.Embedder, text, cfg)
			if warn != "" {
				return nil, fmt.Errorf("planner step %q: %s", step.Action, warn)
			}
			state.lastVec = items
			state.current = items

		case llm.StepFilter:
			state.current = ranking.FinalFilter(state.current, step.Limit, step.MinScore)

		case llm.StepRerank:
			if collab.Reranker == nil {
				logger.Warn("planner rerank step skipped: no reranker configured")
				continue
			}
			reranked, err := ranking.Rerank(ctx, collab.Reranker, text, state.current, cfg)
			if err != nil {
				logger.Warn("planner rerank step failed, keeping prior order", "error", err)
				continue
			}
			state.current = reranked

		case llm.StepMerge:
			state.current = ranking.Fuse(state.lastBM25, state.lastVec, cfg)

		default:
			return nil, fmt.Errorf("unknown planner step %q", step.Action)
		}
	}

	return state.current, nil
}
