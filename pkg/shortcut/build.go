package shortcut

import (
	"fmt"

	"github.com/l3aro/go-branch-query/pkg/cfg"
)

// buildForest runs the fixed-point chain construction over the candidate
// blocks. A candidate is promoted into a Node once both successors are
// resolved, either as leaves or as already-built nodes. Each pass strictly
// shrinks the unresolved set, so the loop terminates; candidates whose
// successors never resolve (e.g. irreducible cycles) stay out of the forest.
func buildForest(fn *cfg.Function, leaf, candidate map[*cfg.Block]bool) (map[*cfg.Block]*Node, error) {
	nodes := make(map[*cfg.Block]*Node)

	changed := true
	for changed {
		changed = false
		for _, b := range fn.Blocks {
			if !candidate[b] || nodes[b] != nil {
				continue
			}
			left, right := b.Succs[0], b.Succs[1]

			var n *Node
			var err error
			switch {
			case leaf[left] && leaf[right]:
				n = newLeafLeaf(b, left, right)
			case leaf[left] && nodes[right] != nil:
				n, err = newNodeRight(b, left, nodes[right])
			case nodes[left] != nil && leaf[right]:
				n, err = newNodeLeft(b, nodes[left], right)
			case nodes[left] != nil && nodes[right] != nil:
				n, err = newNodeBoth(b, nodes[left], nodes[right])
			default:
				continue // successors not resolved yet
			}
			if err != nil {
				return nil, err
			}
			nodes[b] = n
			changed = true
		}
	}
	return nodes, nil
}

// newNode builds the bare node for one of the four child shapes without
// running the shortcut search.
func newNode(block, leftLeaf *cfg.Block, left *Node, rightLeaf *cfg.Block, right *Node) *Node {
	leftLevel, rightLevel := -1, -1
	if left != nil {
		leftLevel = left.Level
	}
	if right != nil {
		rightLevel = right.Level
	}
	level := leftLevel
	if rightLevel > level {
		level = rightLevel
	}
	return &Node{
		Block:     block,
		Level:     level + 1,
		LeftLeaf:  leftLeaf,
		Left:      left,
		RightLeaf: rightLeaf,
		Right:     right,
	}
}

// newLeafLeaf builds a leaf/leaf shape. A branch whose both targets are the
// same block is a degenerate shortcut: the target is trivially reachable two
// ways, so the node heads a one-element chain of its own.
func newLeafLeaf(block, leftLeaf, rightLeaf *cfg.Block) *Node {
	n := newNode(block, leftLeaf, nil, rightLeaf, nil)
	if leftLeaf == rightLeaf {
		n.head = true
		n.HasShortcut = true
		n.ShortcutOnLeft = true
		n.Target = leftLeaf
		n.Path = []bool{true}
		n.MidNodes = map[*Node]struct{}{n: {}}
		n.ShortcutCount = 1
	}
	return n
}

// newNodeRight builds a leaf/node shape and searches the right subtree for
// the left leaf.
func newNodeRight(block, leftLeaf *cfg.Block, right *Node) (*Node, error) {
	n := newNode(block, leftLeaf, nil, nil, right)
	if hit := findShortcut(leftLeaf, right); hit != nil {
		if err := n.markShortcut(hit, leftLeaf, right, true); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// newNodeLeft builds a node/leaf shape and searches the left subtree for the
// right leaf.
func newNodeLeft(block *cfg.Block, left *Node, rightLeaf *cfg.Block) (*Node, error) {
	n := newNode(block, nil, left, rightLeaf, nil)
	if hit := findShortcut(rightLeaf, left); hit != nil {
		if err := n.markShortcut(hit, rightLeaf, left, false); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// newNodeBoth builds a node/node shape; the search runs once per side. A
// block matching on both sides is a contract violation, not a silently
// accepted state.
func newNodeBoth(block *cfg.Block, left, right *Node) (*Node, error) {
	n := newNode(block, nil, left, nil, right)
	if hit := findShortcut(left.Block, right); hit != nil {
		if err := n.markShortcut(hit, left.Block, right, true); err != nil {
			return nil, err
		}
	}
	if hit := findShortcut(right.Block, left); hit != nil {
		if n.HasShortcut {
			return nil, fmt.Errorf("%w: block %s has shortcuts on both children", ErrStructural, block.Name)
		}
		if err := n.markShortcut(hit, right.Block, left, false); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// markShortcut promotes the node to a head, recording the merge target, the
// mid-node path, and absorbing any nested heads along it.
func (n *Node) markShortcut(hit *searchHit, key *cfg.Block, searchRoot *Node, onLeft bool) error {
	path, err := hit.path(searchRoot)
	if err != nil {
		return err
	}
	set, count, err := hit.collect(searchRoot)
	if err != nil {
		return err
	}

	n.head = true
	n.HasShortcut = true
	if onLeft {
		n.ShortcutOnLeft = true
	} else {
		n.ShortcutOnRight = true
	}
	n.Target = key
	n.Path = path
	n.MidNodes = set
	n.ShortcutCount = count
	return nil
}
