package llm

import "context"

// Step actions form the fixed vocabulary a WorkflowPlanner's program may
// use: bm25 and vector each (re)populate the working result list from scratch,
// filter narrows it, rerank reorders it, and merge fuses the most recent
// bm25/vector pools with Reciprocal Rank Fusion.
const (
	StepBM25   = "bm25"
	StepVector = "vector"
	StepFilter = "filter"
	StepRerank = "rerank"
	StepMerge  = "merge"
)

// Step is one instruction in a workflow planner's program. Query overrides
// the original search text for bm25/vector/rerank steps; empty means reuse
// whatever text the program was planned for. MinScore/Limit parameterize a
// filter step; zero values leave the working result list unrestricted.
type Step struct {
	Action   string
	Query    string
	MinScore float64
	Limit    int
}

// WorkflowPlanner plans a small ordered program of steps for a smart-search
// query, executed sequentially by internal/query's planner executor. On
// failure, the caller falls back to the default hybrid pipeline (spec
// §4.10; spec §5's failure policy).
type WorkflowPlanner interface {
	Plan(ctx context.Context, query string) ([]Step, error)
	ModelName() string
}
