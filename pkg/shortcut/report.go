package shortcut

import (
	"fmt"
	"strings"
)

// Result is the externally observable outcome of analyzing one function.
type Result struct {
	Function            string `json:"function_name"`
	TotalShortcuts      int    `json:"total_shortcuts"`
	TotalShortcutSets   int    `json:"total_shortcut_sets"`
	FailedVerifications int    `json:"failed_verifications"`
	Trace               string `json:"trace,omitempty"`

	// Heads exposes the verified chain heads for downstream consumers
	// (e.g. an instrumentation pass); not serialized.
	Heads []*Node `json:"-" msgpack:"-"`
}

// report accumulates counts across the verified heads and renders the trace.
func report(function string, heads []*Node, failed int) *Result {
	r := &Result{
		Function:            function,
		FailedVerifications: failed,
		Heads:               heads,
	}

	var trace strings.Builder
	for _, head := range heads {
		r.TotalShortcuts += head.ShortcutCount
		r.TotalShortcutSets++

		fmt.Fprintf(&trace, "---- dump start from %s ----\n", head.Block.Name)
		trace.WriteString(head.dump(" ", head.MidNodes, head))
		trace.WriteString("\n")
	}
	r.Trace = trace.String()
	return r
}

// dump renders the node and, when it belongs to the head's shortcut set, its
// edges and child subtrees, with the prefix growing per level.
func (n *Node) dump(prefix string, midNodes map[*Node]struct{}, head *Node) string {
	var sb strings.Builder

	sb.WriteString(prefix + "-" + n.Block.Name + fmt.Sprintf(" L(%d)", n.Level))
	if n.IsHead() {
		sb.WriteString(" (head)")
	}
	if n.HasShortcut {
		sb.WriteString(" (shortcut) path(" + n.PathString() + ")")
	}
	if n.ShortcutOnLeft {
		sb.WriteString(" (left)")
	}
	if n.ShortcutOnRight {
		sb.WriteString(" (right)")
	}
	sb.WriteString("\n")

	_, inSet := midNodes[n]
	if n != head && !inSet {
		return sb.String()
	}

	if n.Out0 != nil {
		sb.WriteString(n.Out0.dump(prefix))
	}
	if n.Out1 != nil {
		sb.WriteString(n.Out1.dump(prefix))
	}

	if n.LeftLeaf != nil {
		sb.WriteString(prefix + " |" + n.LeftLeaf.Name + " (leaf)\n")
	} else {
		sb.WriteString(n.Left.dump(prefix+" |", midNodes, head))
	}
	if n.RightLeaf != nil {
		sb.WriteString(prefix + "  " + n.RightLeaf.Name + " (leaf)\n")
	} else {
		sb.WriteString(n.Right.dump(prefix+"  ", midNodes, head))
	}
	return sb.String()
}

func (e *Edge) dump(prefix string) string {
	return fmt.Sprintf("%s  edge(%s->%s)\n", prefix, e.From.Block.Name, e.To.Name)
}

// Totals accumulates results across functions. Ownership is explicit: the
// caller decides when a run starts (Reset) and merges each function's result
// after its analysis completes.
type Totals struct {
	Functions           int `json:"functions"`
	Shortcuts           int `json:"shortcuts"`
	ShortcutSets        int `json:"shortcut_sets"`
	FailedVerifications int `json:"failed_verifications"`
}

// Add merges one function's result into the totals.
func (t *Totals) Add(r *Result) {
	t.Functions++
	t.Shortcuts += r.TotalShortcuts
	t.ShortcutSets += r.TotalShortcutSets
	t.FailedVerifications += r.FailedVerifications
}

// Reset clears the totals for a new run.
func (t *Totals) Reset() { *t = Totals{} }
