// Package dom computes dominator trees over the cfg block model and answers
// reachability and dominance queries.
//
// Construction uses the iterative algorithm of Cooper, Harvey and Kennedy
// ("A Simple, Fast Dominance Algorithm") over reverse postorder, with pre-
// and postorder numbering of the dominator tree so that Dominates runs in
// constant time.
package dom

import "github.com/l3aro/go-branch-query/pkg/cfg"

// Tree holds the dominance information for one function.
type Tree struct {
	fn    *cfg.Function
	idom  []*cfg.Block // immediate dominator, indexed by block index
	reach []bool       // reachable from entry, indexed by block index

	// pre/post numbering of the dominator tree
	pre  []int32
	post []int32
}

// New computes the dominator tree of fn. Unreachable blocks have no
// dominance information; callers must check ReachableFromEntry before
// querying Dominates on them.
func New(fn *cfg.Function) *Tree {
	n := len(fn.Blocks)
	t := &Tree{
		fn:    fn,
		idom:  make([]*cfg.Block, n),
		reach: make([]bool, n),
		pre:   make([]int32, n),
		post:  make([]int32, n),
	}
	if n == 0 {
		return t
	}

	entry := fn.Entry()

	// Postorder DFS from the entry.
	postnum := make([]int32, n)
	order := make([]*cfg.Block, 0, n)
	seen := make([]bool, n)
	var dfs func(b *cfg.Block)
	dfs = func(b *cfg.Block) {
		if seen[b.Index] {
			return
		}
		seen[b.Index] = true
		t.reach[b.Index] = true
		for _, succ := range b.Succs {
			dfs(succ)
		}
		postnum[b.Index] = int32(len(order))
		order = append(order, b)
	}
	dfs(entry)

	// Iterate to a fixed point over reverse postorder.
	t.idom[entry.Index] = entry
	changed := true
	for changed {
		changed = false
		for i := len(order) - 2; i >= 0; i-- { // skip entry, last in postorder
			b := order[i]
			var newIdom *cfg.Block
			for _, p := range b.Preds {
				if !t.reach[p.Index] || t.idom[p.Index] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = p
				} else {
					newIdom = t.intersect(p, newIdom, postnum)
				}
			}
			if newIdom != nil && t.idom[b.Index] != newIdom {
				t.idom[b.Index] = newIdom
				changed = true
			}
		}
	}

	t.number(entry)
	return t
}

// intersect walks two blocks up the dominator tree until they meet.
func (t *Tree) intersect(b1, b2 *cfg.Block, postnum []int32) *cfg.Block {
	for b1 != b2 {
		for postnum[b1.Index] < postnum[b2.Index] {
			b1 = t.idom[b1.Index]
		}
		for postnum[b2.Index] < postnum[b1.Index] {
			b2 = t.idom[b2.Index]
		}
	}
	return b1
}

// number assigns pre/post numbers by a DFS over the dominator tree.
func (t *Tree) number(entry *cfg.Block) {
	children := make(map[int][]*cfg.Block, len(t.fn.Blocks))
	for _, b := range t.fn.Blocks {
		if !t.reach[b.Index] || b == entry {
			continue
		}
		if id := t.idom[b.Index]; id != nil {
			children[id.Index] = append(children[id.Index], b)
		}
	}

	var n int32
	var walk func(b *cfg.Block)
	walk = func(b *cfg.Block) {
		t.pre[b.Index] = n
		n++
		for _, c := range children[b.Index] {
			walk(c)
		}
		t.post[b.Index] = n
		n++
	}
	walk(entry)
}

// ReachableFromEntry reports whether b can be reached from the function
// entry block.
func (t *Tree) ReachableFromEntry(b *cfg.Block) bool {
	return t.reach[b.Index]
}

// Dominates reports whether a dominates b: every path from the entry to b
// passes through a. A block dominates itself. Both blocks must be reachable.
func (t *Tree) Dominates(a, b *cfg.Block) bool {
	if !t.reach[a.Index] || !t.reach[b.Index] {
		return false
	}
	return t.pre[a.Index] <= t.pre[b.Index] && t.post[b.Index] <= t.post[a.Index]
}

// Idom returns the immediate dominator of b, or nil for the entry block and
// for unreachable blocks.
func (t *Tree) Idom(b *cfg.Block) *cfg.Block {
	if !t.reach[b.Index] || b == t.fn.Entry() {
		return nil
	}
	return t.idom[b.Index]
}
