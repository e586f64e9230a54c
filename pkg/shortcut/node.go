// Package shortcut detects short-circuit branch chains in a function's CFG:
// the nested two-way branch shapes a compiler front end emits for compound
// boolean expressions (&&, ||). Detection is purely structural; no access to
// the original source expression is needed.
package shortcut

import "github.com/l3aro/go-branch-query/pkg/cfg"

// Node is one two-way branch block woven into a candidate branch-chain tree.
// Each child is either a leaf block or another Node, never both on the same
// side. Nodes live for one function's analysis and are discarded after
// reporting.
type Node struct {
	Block *cfg.Block
	Level int // max(left level, right level) + 1, 0 when both children are leaves

	// Tagged-union children: for each side exactly one of the pair is set.
	LeftLeaf  *cfg.Block
	RightLeaf *cfg.Block
	Left      *Node
	Right     *Node

	HasShortcut     bool
	ShortcutOnLeft  bool
	ShortcutOnRight bool

	// Target is the recurring merge block of the detected shortcut: the
	// block reachable both as a direct child and through the opposite
	// subtree. Set for heads only.
	Target *cfg.Block

	// Path holds the left/right choices from this head down to the matched
	// mid-node, in head-to-leaf order; true means left.
	Path []bool

	// MidNodes is the set of nodes strictly between this head and the
	// matched node, inclusive of the matched node. Populated for heads only.
	MidNodes map[*Node]struct{}

	// ShortcutCount counts the shortcut occurrences folded into this head:
	// itself plus any nested heads absorbed into MidNodes.
	ShortcutCount int

	// Out0/Out1 are the materialized outgoing edges, In the inbound
	// back-links within a verified head's mid-node set.
	Out0, Out1 *Edge
	In         []*Edge

	head bool
}

// IsHead reports whether the node is the outermost block of a detected
// shortcut chain. A head absorbed into an enclosing chain loses the flag.
func (n *Node) IsHead() bool { return n.head }

// LeftBlock returns the block on the node's left side, regardless of whether
// that side is a leaf or a nested node.
func (n *Node) LeftBlock() *cfg.Block {
	if n.LeftLeaf != nil {
		return n.LeftLeaf
	}
	return n.Left.Block
}

// RightBlock returns the block on the node's right side.
func (n *Node) RightBlock() *cfg.Block {
	if n.RightLeaf != nil {
		return n.RightLeaf
	}
	return n.Right.Block
}

// PathString renders the mid-node path as a string of L/R choices.
func (n *Node) PathString() string {
	buf := make([]byte, len(n.Path))
	for i, left := range n.Path {
		if left {
			buf[i] = 'L'
		} else {
			buf[i] = 'R'
		}
	}
	return string(buf)
}
