// ABOUTME: Derived views: memoized pure projections over collections
// ABOUTME: Recomputed only when the source collection's version moves
package engine

import (
	"sort"
	"sync"
)

// View memoizes project over c. Get recomputes only when the collection has
// published since the last call; the projection must be pure.
type View[E Entity, R any] struct {
	c       *Collection[E]
	project func([]E) R

	mu      sync.Mutex
	valid   bool
	version uint64
	value   R
}

// NewView creates a memoized projection of c.
func NewView[E Entity, R any](c *Collection[E], project func([]E) R) *View[E, R] {
	return &View[E, R]{c: c, project: project}
}

// Get returns the projected value, recomputing if the source changed.
func (v *View[E, R]) Get() R {
	ver := v.c.Version()
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.valid || v.version != ver {
		v.value = v.project(v.c.Items())
		v.version = ver
		v.valid = true
	}
	return v.value
}

// Matching returns the items satisfying pred, preserving order.
func Matching[E any](items []E, pred func(E) bool) []E {
	var out []E
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// GroupBy buckets items by key, preserving order within each bucket.
func GroupBy[E any, K comparable](items []E, key func(E) K) map[K][]E {
	out := make(map[K][]E)
	for _, it := range items {
		out[key(it)] = append(out[key(it)], it)
	}
	return out
}

// TopN sorts a copy of items by less and returns the first n.
func TopN[E any](items []E, n int, less func(a, b E) bool) []E {
	out := make([]E, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
