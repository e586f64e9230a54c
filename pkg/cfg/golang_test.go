package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func condBlocks(fn *Function) []*Block {
	var out []*Block
	for _, b := range fn.Blocks {
		if b.IsCondBranch() {
			out = append(out, b)
		}
	}
	return out
}

func TestLowerShortCircuitConditions(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		funcName      string
		wantCondBlock int
	}{
		{
			name: "plain if",
			code: `package p
func f(a bool) int {
	if a {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantCondBlock: 1,
		},
		{
			name: "and chains two branch blocks",
			code: `package p
func f(a, b bool) int {
	if a && b {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantCondBlock: 2,
		},
		{
			name: "or chains two branch blocks",
			code: `package p
func f(a, b bool) int {
	if a || b {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantCondBlock: 2,
		},
		{
			name: "three-term conjunction",
			code: `package p
func f(a, b, c bool) int {
	if a && b && c {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantCondBlock: 3,
		},
		{
			name: "negation swaps targets without extra block",
			code: `package p
func f(a, b bool) int {
	if !a && b {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantCondBlock: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := extractGoSource([]byte(tt.code), tt.funcName)
			if err != nil {
				t.Fatal(err)
			}
			got := condBlocks(fn)
			if len(got) != tt.wantCondBlock {
				t.Errorf("expected %d conditional blocks, got %d", tt.wantCondBlock, len(got))
			}
			for _, b := range got {
				if len(b.Succs) != 2 {
					t.Errorf("conditional block %s has %d successors", b.Name, len(b.Succs))
				}
			}
		})
	}
}

func TestLowerForLoopHasBackEdge(t *testing.T) {
	code := `package p
func f(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}`
	fn, err := extractGoSource([]byte(code), "f")
	if err != nil {
		t.Fatal(err)
	}

	var header *Block
	for _, b := range fn.Blocks {
		if b.Name == "for.cond" {
			header = b
		}
	}
	if header == nil {
		t.Fatal("loop header block not found")
	}

	// The body must jump back to the header.
	backEdge := false
	for _, p := range header.Preds {
		if p.Index > header.Index {
			backEdge = true
		}
	}
	if !backEdge {
		t.Errorf("expected a predecessor of the loop header from inside the loop")
	}
}

func TestConditionWithCallWritesMemory(t *testing.T) {
	code := `package p
func f(a bool) int {
	if a && g() {
		return 1
	}
	return 0
}
func g() bool { return true }`
	fn, err := extractGoSource([]byte(code), "f")
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, b := range fn.Blocks {
		for _, inst := range b.Insts {
			if inst.Op == "g()" {
				found = true
				if !inst.WritesMemory() {
					t.Errorf("call condition should be treated as memory-writing")
				}
			}
		}
	}
	if !found {
		t.Fatalf("condition instruction for g() not lowered")
	}
}

func TestCondUseIsRecordedOnTerminator(t *testing.T) {
	code := `package p
func f(a bool) int {
	if a {
		return 1
	}
	return 0
}`
	fn, err := extractGoSource([]byte(code), "f")
	if err != nil {
		t.Fatal(err)
	}

	entry := fn.Entry()
	if !entry.IsCondBranch() {
		t.Fatalf("entry should end in a conditional branch, got %s", entry.Term)
	}
	cond := entry.Insts[0]
	if len(cond.Users()) != 1 || cond.Users()[0] != entry.Terminator() {
		t.Errorf("condition should be used by the block terminator only")
	}
}

func TestExtractGoAll(t *testing.T) {
	code := `package p
func one() {}
func two(a bool) {
	if a {
		println(a)
	}
}
type T struct{}
func (t T) three() int { return 3 }`

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	fns, err := ExtractGoAll(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(fns) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(fns))
	}
	names := []string{fns[0].Name, fns[1].Name, fns[2].Name}
	want := []string{"one", "two", "three"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("function %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestExtractGoFunctionNotFound(t *testing.T) {
	_, err := extractGoSource([]byte("package p\nfunc f() {}"), "missing")
	if err == nil {
		t.Fatal("expected an error for a missing function")
	}
}

func TestEveryBlockTerminated(t *testing.T) {
	code := `package p
func f(a, b bool) int {
	if a {
		return 1
	} else if b {
		return 2
	}
	for i := 0; i < 3; i++ {
		if a && b {
			break
		}
	}
	switch {
	case a:
		return 3
	default:
		return 4
	}
}`
	fn, err := extractGoSource([]byte(code), "f")
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range fn.Blocks {
		if b.Term == TermNone {
			t.Errorf("block %s left unterminated", b.Name)
		}
		if b.Terminator() == nil {
			t.Errorf("block %s has no terminator instruction", b.Name)
		}
	}
}
