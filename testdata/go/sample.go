package main

import "fmt"

// validRange checks a half-open interval with one chained condition.
func validRange(lo, hi, v int) bool {
	if lo <= v && v < hi {
		return true
	}
	return false
}

// classify has two independent chains, the second three conditions long.
func classify(n int) string {
	if n < 0 || n > 100 {
		return "out"
	}
	if n > 10 && n < 90 && n != 50 {
		return "mid"
	}
	return "edge"
}

// abs branches on a single condition, so no chain forms.
func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// guarded calls into the runtime inside the condition, which keeps the
// branch blocks impure.
func guarded(s string) bool {
	if len(s) > 0 && s[0] == '/' {
		return true
	}
	return false
}

func main() {
	fmt.Println(validRange(0, 10, 5))
	fmt.Println(classify(42))
	fmt.Println(abs(-3))
	fmt.Println(guarded("/tmp"))
}
