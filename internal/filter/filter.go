// Package filter implements the client-side search used by list views.
package filter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

// Match reports whether name contains term, ignoring case. An empty term
// matches everything.
func Match(term, name string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	// A cases.Caser keeps state and is not safe for concurrent use.
	f := cases.Fold()
	return strings.Contains(f.String(name), f.String(term))
}

// Glob reports whether name matches a doublestar glob pattern. An empty
// pattern matches everything and a malformed one matches nothing.
func Glob(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// Options selects list items.
type Options struct {
	Search string
	Glob   string
}

// Apply returns the items whose name satisfies opts, preserving order.
func Apply[T any](items []T, name func(T) string, opts Options) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		n := name(it)
		if Match(opts.Search, n) && Glob(opts.Glob, n) {
			out = append(out, it)
		}
	}
	return out
}
