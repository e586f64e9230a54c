package cfg

// BlockInfo is a serializable view of a single block.
type BlockInfo struct {
	Name         string   `json:"name"`
	Index        int      `json:"index"`
	Terminator   TermKind `json:"terminator"`
	Statements   []string `json:"statements"`
	Successors   []string `json:"successors"`
	Predecessors []string `json:"predecessors"`
}

// FunctionInfo is a serializable view of a complete function CFG, suitable
// for JSON output.
type FunctionInfo struct {
	FunctionName string      `json:"function_name"`
	EntryBlock   string      `json:"entry_block"`
	Blocks       []BlockInfo `json:"blocks"`
}

// Snapshot converts a Function into its serializable view.
func Snapshot(f *Function) *FunctionInfo {
	info := &FunctionInfo{FunctionName: f.Name}
	if entry := f.Entry(); entry != nil {
		info.EntryBlock = entry.Name
	}
	for _, b := range f.Blocks {
		bi := BlockInfo{
			Name:       b.Name,
			Index:      b.Index,
			Terminator: b.Term,
		}
		for _, inst := range b.Insts {
			bi.Statements = append(bi.Statements, inst.Op)
		}
		for _, s := range b.Succs {
			bi.Successors = append(bi.Successors, s.Name)
		}
		for _, p := range b.Preds {
			bi.Predecessors = append(bi.Predecessors, p.Name)
		}
		info.Blocks = append(info.Blocks, bi)
	}
	return info
}
