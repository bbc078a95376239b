package scan

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Predicate decides whether an entry with the given base name is yielded.
type Predicate func(name string) bool

// Names matches any of the exact base names.
func Names(names ...string) Predicate {
	names = slices.Clone(names)
	return func(name string) bool {
		return slices.Contains(names, name)
	}
}

// Glob matches base names against doublestar patterns. Invalid patterns never match.
func Glob(patterns ...string) Predicate {
	patterns = slices.Clone(patterns)
	return func(name string) bool {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, name); ok {
				return true
			}
		}
		return false
	}
}

// Any matches every entry.
func Any() Predicate {
	return func(string) bool { return true }
}
