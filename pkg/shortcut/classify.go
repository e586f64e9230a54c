package shortcut

import "github.com/l3aro/go-branch-query/pkg/cfg"

// Oracle answers the two dominance questions the detector needs. It is
// consumed read-only; dom.Tree implements it.
type Oracle interface {
	ReachableFromEntry(b *cfg.Block) bool
	Dominates(a, b *cfg.Block) bool
}

// classify partitions the function's blocks into leaves and candidates.
// A block is a leaf if it is unreachable, does not end in a two-way branch,
// has a back edge, or carries side effects beyond evaluating its condition.
// Every remaining block is a candidate for chain construction. The oracle is
// never queried on unreachable blocks.
func classify(fn *cfg.Function, oracle Oracle) (leaf, candidate map[*cfg.Block]bool) {
	leaf = make(map[*cfg.Block]bool)
	candidate = make(map[*cfg.Block]bool)

	for _, b := range fn.Blocks {
		if !oracle.ReachableFromEntry(b) || !b.IsCondBranch() || hasBackEdge(b, oracle) {
			leaf[b] = true
			continue
		}
		if !isSimpleBranch(b) {
			leaf[b] = true
			continue
		}
		candidate[b] = true
	}
	return leaf, candidate
}

// hasBackEdge reports whether either successor of a reachable two-way branch
// block dominates it, the standard loop-back test.
func hasBackEdge(b *cfg.Block, oracle Oracle) bool {
	for _, succ := range b.Succs {
		if oracle.Dominates(succ, b) {
			return true
		}
	}
	return false
}

// isSimpleBranch reports whether the block does nothing beyond computing its
// branch condition: no instruction writes to memory, and every value defined
// in the block is used only by later instructions of the same block.
func isSimpleBranch(b *cfg.Block) bool {
	seen := make(map[*cfg.Instruction]bool, len(b.Insts))
	for _, inst := range b.Insts {
		seen[inst] = true
		if inst.WritesMemory() {
			return false
		}
		for _, user := range inst.Users() {
			if user.Parent() != b {
				return false
			}
			// A user already seen sits at or before the defining
			// instruction.
			if seen[user] {
				return false
			}
		}
	}
	return true
}
