package domain

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Selector restricts a compilation to a subset of a compiler's sources.
// The zero Selector selects everything.
type Selector struct {
	// Patterns are doublestar patterns relative to the compiler's source root.
	Patterns []string
}

// SelectAll returns a selector matching every source.
func SelectAll() Selector {
	return Selector{}
}

// Select returns a selector matching the given patterns.
func Select(patterns ...string) Selector {
	return Selector{Patterns: patterns}
}

// All reports whether the selector matches every source.
func (s Selector) All() bool {
	return len(s.Patterns) == 0
}

// Matches reports whether the slash separated path is selected.
func (s Selector) Matches(path string) bool {
	if s.All() {
		return true
	}
	path = strings.TrimPrefix(path, "./")
	for _, p := range s.Patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
