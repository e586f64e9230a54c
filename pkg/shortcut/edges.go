package shortcut

import "github.com/l3aro/go-branch-query/pkg/cfg"

// Edge is one outgoing branch target of a node, materialized only for the
// sub-graph relevant to a verified head's mid-node set. Edges carry no
// propagation state yet; an instrumentation pass inserting counters at
// shortcut edges would attach its data here.
type Edge struct {
	From *Node
	To   *cfg.Block
}

// buildEdgeGraph materializes, for each verified head, the outgoing edges of
// every node reachable inside the head's mid-node set, wiring inbound
// back-links on targets within the set.
func buildEdgeGraph(heads []*Node) {
	for _, head := range heads {
		worklist := []*Node{head}
		marked := make(map[*Node]bool)

		for len(worklist) > 0 {
			cur := worklist[0]
			worklist = worklist[1:]
			if marked[cur] {
				continue
			}
			marked[cur] = true
			cur.buildEdges(head.MidNodes)

			if cur.Left != nil {
				if _, ok := head.MidNodes[cur.Left]; ok {
					worklist = append(worklist, cur.Left)
				}
			}
			if cur.Right != nil {
				if _, ok := head.MidNodes[cur.Right]; ok {
					worklist = append(worklist, cur.Right)
				}
			}
		}
	}
}

// buildEdges materializes the node's two outgoing edges. Targets inside the
// mid-node set get an inbound back-link; leaf targets and targets outside
// the set do not.
func (n *Node) buildEdges(midNodes map[*Node]struct{}) {
	if n.LeftLeaf != nil {
		n.Out0 = &Edge{From: n, To: n.LeftLeaf}
	} else {
		n.Out0 = &Edge{From: n, To: n.Left.Block}
		if _, ok := midNodes[n.Left]; ok {
			n.Left.In = append(n.Left.In, n.Out0)
		}
	}
	if n.RightLeaf != nil {
		n.Out1 = &Edge{From: n, To: n.RightLeaf}
	} else {
		n.Out1 = &Edge{From: n, To: n.Right.Block}
		if _, ok := midNodes[n.Right]; ok {
			n.Right.In = append(n.Right.In, n.Out1)
		}
	}
}
