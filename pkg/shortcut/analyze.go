package shortcut

import "github.com/l3aro/go-branch-query/pkg/cfg"

// Analyze runs the full detection pipeline on one function: classify blocks,
// build the chain forest to a fixed point, verify detected heads against the
// dominance oracle, materialize the edge graph, and report.
//
// The pipeline is synchronous and run-to-completion; the forest is owned by
// this call and discarded with the returned Result. An error indicates a
// structural violation (ErrStructural) that aborts this function's analysis
// only.
func Analyze(fn *cfg.Function, oracle Oracle) (*Result, error) {
	leaf, candidate := classify(fn, oracle)

	nodes, err := buildForest(fn, leaf, candidate)
	if err != nil {
		return nil, err
	}

	heads, failed := verifiedHeads(fn, nodes, oracle)
	buildEdgeGraph(heads)

	return report(fn.Name, heads, failed), nil
}
