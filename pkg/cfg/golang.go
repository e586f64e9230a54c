package cfg

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// goLowering lowers a parsed Go function into the block model. Conditions
// containing && / || / ! are decomposed into separate two-way branch blocks,
// the shape the shortcut detector later recovers.
type goLowering struct {
	content []byte
	fn      *Function

	// break/continue targets for the innermost enclosing loop
	breakTargets    []*Block
	continueTargets []*Block
}

// ExtractGo parses filePath and lowers the named function into a CFG.
func ExtractGo(filePath, functionName string) (*Function, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}
	fn, err := extractGoSource(content, functionName)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, filePath)
	}
	return fn, nil
}

// ExtractGoAll parses filePath and lowers every function and method
// declaration found in it, in source order.
func ExtractGoAll(filePath string) ([]*Function, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	e := &goLowering{content: content}

	var fns []*Function
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Type() == "function_declaration" || node.Type() == "method_declaration" {
			if name := e.declName(node); name != "" {
				fns = append(fns, e.lowerFunc(node, name))
			}
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	return fns, nil
}

func extractGoSource(content []byte, functionName string) (*Function, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree := parser.Parse(nil, content)
	defer tree.Close()

	e := &goLowering{content: content}

	funcNode := e.findFunction(tree.RootNode(), functionName)
	if funcNode == nil {
		return nil, fmt.Errorf("function %q not found", functionName)
	}
	return e.lowerFunc(funcNode, functionName), nil
}

// declName returns the declared name of a function or method node.
func (e *goLowering) declName(node *sitter.Node) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return e.nodeText(name)
	}
	return ""
}

func (e *goLowering) findFunction(node *sitter.Node, funcName string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "function_declaration" || node.Type() == "method_declaration" {
		if e.declName(node) == funcName {
			return node
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := e.findFunction(node.Child(i), funcName); found != nil {
			return found
		}
	}
	return nil
}

// lowerFunc builds the CFG for one function declaration.
func (e *goLowering) lowerFunc(node *sitter.Node, name string) *Function {
	e.fn = NewFunction(name)
	e.breakTargets = nil
	e.continueTargets = nil

	entry := e.fn.NewBlock("entry")
	cur := entry

	if body := node.ChildByFieldName("body"); body != nil {
		cur = e.lowerBlock(body, cur)
	}
	if cur != nil && cur.Term == TermNone {
		cur.Return("")
	}
	// Blocks left open by lowering dead paths (e.g. a join after two
	// returning branches) still need a terminator.
	for _, b := range e.fn.Blocks {
		if b.Term == TermNone {
			b.Return("")
		}
	}
	return e.fn
}

// lowerBlock lowers the statements of a braces block into cur and returns
// the block holding control after the last statement. A nil return means
// every path through the statements already terminated.
func (e *goLowering) lowerBlock(node *sitter.Node, cur *Block) *Block {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		cur = e.lowerStmt(child, cur)
	}
	return cur
}

// lowerStmt lowers a single statement. A nil cur means the previous
// statement terminated control flow; the statement is unreachable but still
// lowered into a fresh block, which the classifier later treats as a leaf.
func (e *goLowering) lowerStmt(node *sitter.Node, cur *Block) *Block {
	if cur == nil {
		cur = e.fn.NewBlock("")
	}

	switch node.Type() {
	case "if_statement":
		return e.lowerIf(node, cur)

	case "for_statement":
		return e.lowerFor(node, cur)

	case "return_statement":
		cur.Return(strings.TrimSpace(e.nodeText(node)))
		return nil

	case "break_statement":
		if n := len(e.breakTargets); n > 0 {
			cur.Jump(e.breakTargets[n-1])
		} else {
			cur.Terminate(e.nodeText(node))
		}
		return nil

	case "continue_statement":
		if n := len(e.continueTargets); n > 0 {
			cur.Jump(e.continueTargets[n-1])
		} else {
			cur.Terminate(e.nodeText(node))
		}
		return nil

	case "expression_switch_statement", "type_switch_statement", "select_statement":
		return e.lowerSwitch(node, cur)

	case "block":
		return e.lowerBlock(node, cur)

	default:
		stmt := strings.TrimSpace(e.nodeText(node))
		if stmt != "" {
			cur.AddInst(stmt, e.writesMemory(node))
		}
		return cur
	}
}

// lowerIf lowers an if statement, decomposing the condition into branch
// blocks. Returns the join block.
func (e *goLowering) lowerIf(node *sitter.Node, cur *Block) *Block {
	if init := node.ChildByFieldName("initializer"); init != nil {
		cur.AddInst(strings.TrimSpace(e.nodeText(init)), e.writesMemory(init))
	}

	thenEntry := e.fn.NewBlock("if.then")
	join := e.fn.NewBlock("if.end")

	elseEntry := join
	alt := node.ChildByFieldName("alternative")
	if alt != nil {
		elseEntry = e.fn.NewBlock("if.else")
	}

	if cond := node.ChildByFieldName("condition"); cond != nil {
		e.lowerCond(cond, cur, thenEntry, elseEntry)
	} else {
		cur.Jump(thenEntry)
	}

	if thenEnd := e.lowerBranchBody(node.ChildByFieldName("consequence"), thenEntry); thenEnd != nil {
		thenEnd.Jump(join)
	}
	if alt != nil {
		if elseEnd := e.lowerBranchBody(alt, elseEntry); elseEnd != nil {
			elseEnd.Jump(join)
		}
	}
	return join
}

// lowerBranchBody lowers an if arm, which is either a block or a nested
// if statement (else-if).
func (e *goLowering) lowerBranchBody(node *sitter.Node, cur *Block) *Block {
	if node == nil {
		return cur
	}
	if node.Type() == "if_statement" {
		return e.lowerIf(node, cur)
	}
	return e.lowerBlock(node, cur)
}

// lowerCond lowers a boolean expression evaluated in cur, branching to
// ifTrue/ifFalse. Short-circuit operators produce chained branch blocks.
func (e *goLowering) lowerCond(node *sitter.Node, cur, ifTrue, ifFalse *Block) {
	switch node.Type() {
	case "parenthesized_expression":
		if inner := node.NamedChild(0); inner != nil {
			e.lowerCond(inner, cur, ifTrue, ifFalse)
			return
		}

	case "binary_expression":
		op := ""
		if opNode := node.ChildByFieldName("operator"); opNode != nil {
			op = opNode.Type()
		}
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left != nil && right != nil {
			switch op {
			case "&&":
				rhs := e.fn.NewBlock("cond.rhs")
				e.lowerCond(left, cur, rhs, ifFalse)
				e.lowerCond(right, rhs, ifTrue, ifFalse)
				return
			case "||":
				rhs := e.fn.NewBlock("cond.rhs")
				e.lowerCond(left, cur, ifTrue, rhs)
				e.lowerCond(right, rhs, ifTrue, ifFalse)
				return
			}
		}

	case "unary_expression":
		if opNode := node.ChildByFieldName("operator"); opNode != nil && opNode.Type() == "!" {
			if operand := node.ChildByFieldName("operand"); operand != nil {
				e.lowerCond(operand, cur, ifFalse, ifTrue)
				return
			}
		}
	}

	cond := cur.AddInst(strings.TrimSpace(e.nodeText(node)), e.writesMemory(node))
	cur.CondBranch(cond, ifTrue, ifFalse)
}

// lowerFor lowers for statements, including range loops. The loop header
// gets a back edge from the body, which keeps it out of shortcut chains
// rooted below it.
func (e *goLowering) lowerFor(node *sitter.Node, cur *Block) *Block {
	if init := node.ChildByFieldName("initializer"); init != nil {
		cur.AddInst(strings.TrimSpace(e.nodeText(init)), e.writesMemory(init))
	}

	header := e.fn.NewBlock("for.cond")
	cur.Jump(header)

	body := e.fn.NewBlock("for.body")
	end := e.fn.NewBlock("for.end")

	var rangeClause *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil && child.Type() == "range_clause" {
			rangeClause = child
			break
		}
	}

	switch {
	case rangeClause != nil:
		iter := header.AddInst(strings.TrimSpace(e.nodeText(rangeClause)), e.writesMemory(rangeClause))
		header.CondBranch(iter, body, end)
	case node.ChildByFieldName("condition") != nil:
		e.lowerCond(node.ChildByFieldName("condition"), header, body, end)
	default:
		header.Jump(body)
	}

	e.breakTargets = append(e.breakTargets, end)
	e.continueTargets = append(e.continueTargets, header)

	bodyEnd := e.lowerBlock(node.ChildByFieldName("body"), body)

	e.breakTargets = e.breakTargets[:len(e.breakTargets)-1]
	e.continueTargets = e.continueTargets[:len(e.continueTargets)-1]

	if bodyEnd != nil {
		if post := node.ChildByFieldName("update"); post != nil {
			bodyEnd.AddInst(strings.TrimSpace(e.nodeText(post)), e.writesMemory(post))
		}
		bodyEnd.Jump(header)
	}
	return end
}

// lowerSwitch lowers switch and select statements conservatively: one
// multi-way terminator fanning out to the case bodies. Switches never
// participate in shortcut chains, so precise case conditions are not needed.
func (e *goLowering) lowerSwitch(node *sitter.Node, cur *Block) *Block {
	end := e.fn.NewBlock("switch.end")

	var caseBodies []*sitter.Node
	hasDefault := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "expression_case", "type_case", "communication_case":
			caseBodies = append(caseBodies, child)
		case "default_case":
			caseBodies = append(caseBodies, child)
			hasDefault = true
		}
	}

	entries := make([]*Block, 0, len(caseBodies)+1)
	bodies := make([]*Block, 0, len(caseBodies))
	for range caseBodies {
		b := e.fn.NewBlock("case")
		entries = append(entries, b)
		bodies = append(bodies, b)
	}
	if !hasDefault {
		entries = append(entries, end)
	}

	op := node.Type()
	if cond := node.ChildByFieldName("value"); cond != nil {
		op = "switch " + strings.TrimSpace(e.nodeText(cond))
	}
	cur.Terminate(op, entries...)

	e.breakTargets = append(e.breakTargets, end)
	for i, c := range caseBodies {
		caseEnd := bodies[i]
		for j := 0; j < int(c.NamedChildCount()); j++ {
			stmt := c.NamedChild(j)
			if stmt == nil || !isGoStatement(stmt.Type()) {
				// Skip the case expression/type list itself.
				continue
			}
			caseEnd = e.lowerStmt(stmt, caseEnd)
		}
		if caseEnd != nil && caseEnd.Term == TermNone {
			caseEnd.Jump(end)
		}
	}
	e.breakTargets = e.breakTargets[:len(e.breakTargets)-1]

	return end
}

// isGoStatement reports whether a tree-sitter node type is a statement as
// opposed to a case expression or type list.
func isGoStatement(nodeType string) bool {
	return strings.HasSuffix(nodeType, "statement") ||
		nodeType == "block" ||
		nodeType == "short_var_declaration" ||
		nodeType == "var_declaration" ||
		nodeType == "const_declaration"
}

// writesMemory reports whether lowering must assume the statement or
// expression may store to memory: assignments, sends, increments, and
// anything containing a call.
func (e *goLowering) writesMemory(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "assignment_statement", "inc_statement", "dec_statement",
		"send_statement", "go_statement", "defer_statement",
		"call_expression", "var_declaration":
		return true
	case "short_var_declaration":
		// A new local is a plain definition; only the RHS can write.
		if right := node.ChildByFieldName("right"); right != nil {
			return e.writesMemory(right)
		}
		return false
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if e.writesMemory(node.NamedChild(i)) {
			return true
		}
	}
	return false
}

func (e *goLowering) nodeText(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(e.content)
}
