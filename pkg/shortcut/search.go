package shortcut

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-branch-query/pkg/cfg"
)

// ErrStructural marks internal contract violations that abort the analysis
// of the current function (other functions are unaffected).
var ErrStructural = errors.New("structural violation")

// searchHit records where a shortcut search found its key block. The parent
// links are rebuilt for every search; they are a traversal aid, not an
// ownership relation.
type searchHit struct {
	mid      *Node // node under which the key appeared as a direct child
	lastLeft bool  // side of mid on which the key was found

	parent      map[*Node]*Node
	isLeftChild map[*Node]bool // whether a node is its parent's left child
}

// findShortcut searches the subtree rooted at root, breadth first, for a
// node that has key as a direct child. A hit means key is reachable two ways
// inside the enclosing node's combined subtree, the structural signature of
// a short-circuit merge. Returns nil when the key does not occur.
func findShortcut(key *cfg.Block, root *Node) *searchHit {
	h := &searchHit{
		parent:      make(map[*Node]*Node),
		isLeftChild: make(map[*Node]bool),
	}

	worklist := []*Node{root}
	marked := map[*Node]bool{root: true}

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]

		if cur.LeftLeaf != nil && cur.LeftLeaf == key {
			h.mid, h.lastLeft = cur, true
			return h
		}
		if cur.RightLeaf != nil && cur.RightLeaf == key {
			h.mid, h.lastLeft = cur, false
			return h
		}
		if cur.Left != nil && !marked[cur.Left] {
			if cur.Left.Block == key {
				h.mid, h.lastLeft = cur, true
				return h
			}
			h.parent[cur.Left] = cur
			h.isLeftChild[cur.Left] = true
			marked[cur.Left] = true
			worklist = append(worklist, cur.Left)
		}
		if cur.Right != nil && !marked[cur.Right] {
			if cur.Right.Block == key {
				h.mid, h.lastLeft = cur, false
				return h
			}
			h.parent[cur.Right] = cur
			h.isLeftChild[cur.Right] = false
			marked[cur.Right] = true
			worklist = append(worklist, cur.Right)
		}
	}
	return nil
}

// path reconstructs the left/right choices from root down to the matched
// mid-node, suffixed with the matched side, in root-to-leaf reading order.
func (h *searchHit) path(root *Node) ([]bool, error) {
	p := []bool{h.lastLeft}
	for n := h.mid; n != root; {
		parent, ok := h.parent[n]
		if !ok {
			return nil, fmt.Errorf("%w: no parent link for %s while unwinding path", ErrStructural, n.Block.Name)
		}
		p = append([]bool{h.isLeftChild[n]}, p...)
		n = parent
	}
	return p, nil
}

// collect walks from the matched mid-node up to the search root and gathers
// the mid-node set and shortcut count. Every traversed node that was itself
// a head is absorbed: its head flag is invalidated and its prior count and
// mid-node set fold into the new, outer head's totals, so nested chains are
// reported exactly once.
func (h *searchHit) collect(root *Node) (map[*Node]struct{}, int, error) {
	set := make(map[*Node]struct{})
	count := 0

	n := h.mid
	for n != root {
		if n.head {
			n.head = false
			count += n.ShortcutCount
			for m := range n.MidNodes {
				set[m] = struct{}{}
			}
		}
		set[n] = struct{}{}

		parent, ok := h.parent[n]
		if !ok {
			return nil, 0, fmt.Errorf("%w: no parent link for %s while collecting mid-nodes", ErrStructural, n.Block.Name)
		}
		n = parent
	}

	count++ // the newly found shortcut itself

	if root.head {
		root.head = false
		count += root.ShortcutCount
		for m := range root.MidNodes {
			set[m] = struct{}{}
		}
	}
	set[root] = struct{}{}

	return set, count, nil
}
