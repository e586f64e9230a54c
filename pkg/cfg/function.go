package cfg

import "fmt"

// NewFunction creates an empty function. The first block added becomes the
// entry block.
func NewFunction(name string) *Function {
	return &Function{Name: name}
}

// NewBlock appends a new, unterminated block to the function. If name is
// empty, a name is generated from the block index.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{
		Name:  name,
		Index: len(f.Blocks),
		Term:  TermNone,
	}
	if b.Name == "" {
		b.Name = fmt.Sprintf("b%d", b.Index)
	}
	f.Blocks = append(f.Blocks, b)
	return b
}

// AddInst appends an instruction to the block. writesMemory marks
// instructions that may store to memory (assignments through pointers,
// calls, sends, ...); the branch analyses use it to tell pure condition
// evaluation apart from side effects.
func (b *Block) AddInst(op string, writesMemory bool) *Instruction {
	inst := &Instruction{
		Op:           op,
		writesMemory: writesMemory,
		block:        b,
		pos:          len(b.Insts),
	}
	b.Insts = append(b.Insts, inst)
	return inst
}

// AddUser records that user consumes the value defined by i.
func (i *Instruction) AddUser(user *Instruction) {
	i.users = append(i.users, user)
}

// Jump terminates the block with an unconditional jump to target.
func (b *Block) Jump(target *Block) {
	b.terminate("jmp "+target.Name, TermJump, target)
}

// CondBranch terminates the block with a two-way conditional branch. cond is
// the instruction computing the branch condition; it may be nil when the
// condition is not materialized (synthetic CFGs in tests). The terminator is
// recorded as a user of cond.
func (b *Block) CondBranch(cond *Instruction, ifTrue, ifFalse *Block) {
	term := b.terminate(fmt.Sprintf("br %s, %s", ifTrue.Name, ifFalse.Name), TermCondBranch, ifTrue, ifFalse)
	if cond != nil {
		cond.AddUser(term)
	}
}

// Return terminates the block with a function return.
func (b *Block) Return(op string) {
	if op == "" {
		op = "ret"
	}
	b.terminate(op, TermReturn)
}

// Terminate ends the block with an arbitrary terminator kind (switch,
// select, ...) and an explicit successor list.
func (b *Block) Terminate(op string, succs ...*Block) {
	b.terminate(op, TermOther, succs...)
}

func (b *Block) terminate(op string, kind TermKind, succs ...*Block) *Instruction {
	if b.Term != TermNone {
		panic(fmt.Sprintf("cfg: block %s terminated twice", b.Name))
	}
	term := b.AddInst(op, false)
	b.Term = kind
	b.Succs = append(b.Succs, succs...)
	for _, s := range succs {
		s.Preds = append(s.Preds, b)
	}
	return term
}
