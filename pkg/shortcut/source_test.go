package shortcut

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l3aro/go-branch-query/pkg/cfg"
	"github.com/l3aro/go-branch-query/pkg/dom"
)

func analyzeGoSource(t *testing.T, code, funcName string) *Result {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	fn, err := cfg.ExtractGo(path, funcName)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Analyze(fn, dom.New(fn))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestDetectFromGoSource(t *testing.T) {
	tests := []struct {
		name          string
		code          string
		funcName      string
		wantShortcuts int
		wantSets      int
	}{
		{
			name: "plain if has no shortcut",
			code: `package p
func f(a bool) int {
	if a {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantShortcuts: 0,
			wantSets:      0,
		},
		{
			name: "conjunction of two terms",
			code: `package p
func f(a, b bool) int {
	if a && b {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantShortcuts: 1,
			wantSets:      1,
		},
		{
			name: "disjunction of two terms",
			code: `package p
func f(a, b bool) int {
	if a || b {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantShortcuts: 1,
			wantSets:      1,
		},
		{
			name: "three-term conjunction folds into one set",
			code: `package p
func f(a, b, c bool) int {
	if a && b && c {
		return 1
	}
	return 0
}`,
			funcName:      "f",
			wantShortcuts: 2,
			wantSets:      1,
		},
		{
			name: "call in condition breaks the chain",
			code: `package p
func f(a bool) int {
	if a && g() {
		return 1
	}
	return 0
}
func g() bool { return true }`,
			funcName:      "f",
			wantShortcuts: 0,
			wantSets:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyzeGoSource(t, tt.code, tt.funcName)
			if res.TotalShortcuts != tt.wantShortcuts {
				t.Errorf("shortcuts: expected %d, got %d", tt.wantShortcuts, res.TotalShortcuts)
			}
			if res.TotalShortcutSets != tt.wantSets {
				t.Errorf("shortcut sets: expected %d, got %d", tt.wantSets, res.TotalShortcutSets)
			}
		})
	}
}

func TestFixtureFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "go", "sample.go")

	fns, err := cfg.ExtractGoAll(path)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]struct {
		shortcuts int
		sets      int
	}{
		"validRange": {shortcuts: 1, sets: 1},
		"classify":   {shortcuts: 3, sets: 2},
		"abs":        {shortcuts: 0, sets: 0},
		"guarded":    {shortcuts: 0, sets: 0},
		"main":       {shortcuts: 0, sets: 0},
	}

	seen := make(map[string]bool)
	for _, fn := range fns {
		w, ok := want[fn.Name]
		if !ok {
			t.Errorf("unexpected function %s in fixture", fn.Name)
			continue
		}
		seen[fn.Name] = true

		res, err := Analyze(fn, dom.New(fn))
		if err != nil {
			t.Fatalf("%s: %v", fn.Name, err)
		}
		if res.TotalShortcuts != w.shortcuts {
			t.Errorf("%s: shortcuts: expected %d, got %d", fn.Name, w.shortcuts, res.TotalShortcuts)
		}
		if res.TotalShortcutSets != w.sets {
			t.Errorf("%s: shortcut sets: expected %d, got %d", fn.Name, w.sets, res.TotalShortcutSets)
		}
		if res.FailedVerifications != 0 {
			t.Errorf("%s: expected no failed verifications, got %d", fn.Name, res.FailedVerifications)
		}
	}

	for name := range want {
		if !seen[name] {
			t.Errorf("function %s missing from fixture", name)
		}
	}
}
