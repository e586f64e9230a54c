// Package cfg defines the basic-block representation used by the branch
// analyses, plus a tree-sitter frontend that lowers source functions into it.
// Blocks carry an instruction list and a terminator; instructions answer the
// two queries the analyses need (does it write memory, who uses its value).
package cfg

// TermKind represents the kind of a block terminator.
type TermKind string

const (
	TermNone       TermKind = "none"   // Block not yet terminated
	TermJump       TermKind = "jump"   // Unconditional jump, one successor
	TermCondBranch TermKind = "branch" // Two-way conditional branch
	TermReturn     TermKind = "return" // Function return, no successors
	TermOther      TermKind = "other"  // Switch, select, anything else
)

// Instruction is a single operation inside a block. Op is a human-readable
// rendering of the source statement; the analyses only look at the memory
// and use relations.
type Instruction struct {
	Op string // Source text of the statement

	writesMemory bool
	users        []*Instruction
	block        *Block
	pos          int // Position within the owning block
}

// WritesMemory reports whether the instruction may write to memory.
func (i *Instruction) WritesMemory() bool { return i.writesMemory }

// Users returns the instructions that consume the value this instruction
// defines. The slice must not be modified.
func (i *Instruction) Users() []*Instruction { return i.users }

// Parent returns the block owning this instruction.
func (i *Instruction) Parent() *Block { return i.block }

// Pos returns the instruction's position within its block.
func (i *Instruction) Pos() int { return i.pos }

// Block is a basic block: a straight-line instruction sequence ending in a
// terminator. Identity is stable for the duration of an analysis; blocks are
// never created or destroyed by the analyses themselves.
type Block struct {
	Name  string
	Index int // Position in Function.Blocks

	Insts []*Instruction // Includes the terminator as the last entry
	Term  TermKind
	Succs []*Block
	Preds []*Block
}

// IsCondBranch reports whether the block ends in a two-way conditional
// branch with exactly two successors.
func (b *Block) IsCondBranch() bool {
	return b.Term == TermCondBranch && len(b.Succs) == 2
}

// Terminator returns the block's terminator instruction, or nil if the block
// has not been terminated yet.
func (b *Block) Terminator() *Instruction {
	if b.Term == TermNone || len(b.Insts) == 0 {
		return nil
	}
	return b.Insts[len(b.Insts)-1]
}

// Function is a CFG: an ordered list of blocks. Blocks[0] is the entry.
type Function struct {
	Name   string
	Blocks []*Block
}

// Entry returns the function's entry block, or nil for an empty function.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}
