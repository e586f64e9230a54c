package shortcut

import "github.com/l3aro/go-branch-query/pkg/cfg"

// verifiedHeads walks the function's blocks in order and returns the heads
// whose block dominates every block in their mid-node set, plus the number
// of heads rejected by that check. A failed check is an expected outcome,
// not an error: it rejects matches whose shared block is also reached from
// unrelated control flow outside the candidate chain.
func verifiedHeads(fn *cfg.Function, nodes map[*cfg.Block]*Node, oracle Oracle) (heads []*Node, failed int) {
	for _, b := range fn.Blocks {
		n := nodes[b]
		if n == nil || !n.IsHead() {
			continue
		}
		if n.verifyDominance(oracle) {
			heads = append(heads, n)
		} else {
			failed++
		}
	}
	return heads, failed
}

// verifyDominance checks that the head's block dominates every block owned
// by nodes in its mid-node set, and the merge target itself. The target
// check is what catches a shared block that unrelated control flow also
// jumps into.
func (n *Node) verifyDominance(oracle Oracle) bool {
	for m := range n.MidNodes {
		if !oracle.Dominates(n.Block, m.Block) {
			return false
		}
	}
	if n.Target != nil && !oracle.Dominates(n.Block, n.Target) {
		return false
	}
	return true
}
