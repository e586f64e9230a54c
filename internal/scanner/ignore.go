package scanner

import (
	"bufio"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreList is an ordered set of .gbqignore rules. Rules are evaluated
// top to bottom with last-match-wins semantics, so a later negation
// ("!keep.go") can re-include a path an earlier rule excluded.
type IgnoreList struct {
	rules []ignoreRule
}

// ignoreRule is one parsed .gbqignore line. Supported forms are a
// trailing "/" for directory rules, a leading "/" to anchor at the
// scan root, a leading "!" for negation, "**" spanning any number of
// path segments, and the usual *, ? and [...] globs within a segment.
type ignoreRule struct {
	negate  bool
	dirOnly bool
	rooted  bool
	segs    []string
}

// ParseIgnoreFile reads .gbqignore rules from r, skipping blank lines
// and # comments.
func ParseIgnoreFile(r io.Reader) (*IgnoreList, error) {
	var list IgnoreList
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list.rules = append(list.rules, parseIgnoreRule(line))
	}
	return &list, sc.Err()
}

func parseIgnoreRule(line string) ignoreRule {
	var r ignoreRule
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.rooted = true
		line = line[1:]
	}
	r.segs = strings.Split(line, "/")
	return r
}

// Extend appends other's rules after l's own, matching how a nested
// .gbqignore refines the rules inherited from the root.
func (l *IgnoreList) Extend(other *IgnoreList) {
	l.rules = append(l.rules, other.rules...)
}

// Len returns the number of rules in the list.
func (l *IgnoreList) Len() int {
	return len(l.rules)
}

// Ignored reports whether the file at the given root-relative path is
// excluded by the list.
func (l *IgnoreList) Ignored(relPath string) bool {
	segs := strings.Split(filepath.ToSlash(relPath), "/")
	ignored := false
	for _, r := range l.rules {
		if r.match(segs) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r ignoreRule) match(segs []string) bool {
	last := 0
	if !r.rooted {
		last = len(segs) - 1
	}
	for i := 0; i <= last; i++ {
		if r.dirOnly {
			// A directory rule matches files strictly below the
			// directory, never the entry itself.
			for j := i + 1; j < len(segs); j++ {
				if matchSegs(r.segs, segs[i:j]) {
					return true
				}
			}
		} else if matchSegs(r.segs, segs[i:]) {
			return true
		}
	}
	return false
}

// matchSegs matches pattern segments against path segments, both fully
// consumed. "**" spans zero or more segments; everything else goes
// through path.Match one segment at a time.
func matchSegs(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegs(pat[1:], segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pat[0], segs[0]); err != nil || !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}
