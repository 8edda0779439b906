// ABOUTME: Typed observable collection with cache-aware fetching
// ABOUTME: Serves fresh partitions from cache and records per-collection loading/error state
package engine

import (
	"context"
	"encoding/json"
	"sync"
)

// CollectionOption configures a Collection at registration time.
type CollectionOption[E Entity] func(*Collection[E])

// WithFilterFunc supplies the collection's current filter for refreshes.
// Without it, refreshes use the unfiltered partition.
func WithFilterFunc[E Entity](fn func() Filter) CollectionOption[E] {
	return func(c *Collection[E]) { c.filterFn = fn }
}

// WithInvalidates adds cache prefixes (aggregates such as stats) that every
// mutation on this collection also drops.
func WithInvalidates[E Entity](prefixes ...string) CollectionOption[E] {
	return func(c *Collection[E]) { c.alsoInvalidates = prefixes }
}

// Collection is one entity kind's ordered in-memory list plus its loading and
// error slots. Identifiers are unique within a collection; insertion order is
// display order.
type Collection[E Entity] struct {
	m               *Module
	name            string
	fetchCommand    string
	filterFn        func() Filter
	alsoInvalidates []string

	mu       sync.Mutex
	items    []E
	loading  bool
	errMsg   string
	version  uint64
	watchers map[int]func()
	nextID   int
}

// NewCollection registers a collection named name on m, fetched with
// fetchCommand.
func NewCollection[E Entity](m *Module, name, fetchCommand string, opts ...CollectionOption[E]) *Collection[E] {
	c := &Collection[E]{
		m:            m,
		name:         name,
		fetchCommand: fetchCommand,
		watchers:     make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	m.register(c)
	return c
}

func (c *Collection[E]) collectionName() string { return c.name }

// cachePrefix namespaces this collection's partitions, "crm:contacts".
func (c *Collection[E]) cachePrefix() string { return c.m.name + ":" + c.name }

func (c *Collection[E]) cacheKey(f Filter) string { return c.cachePrefix() + ":" + f.Key() }

func (c *Collection[E]) currentFilter() Filter {
	if c.filterFn != nil {
		if f := c.filterFn(); f != nil {
			return f
		}
	}
	return NoFilter{}
}

func (c *Collection[E]) refresh(ctx context.Context) {
	_ = c.Fetch(ctx, c.currentFilter())
}

// Items returns the current entities. The returned slice is shared; treat it
// as read-only.
func (c *Collection[E]) Items() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Loading reports whether a fetch for this collection is in flight.
func (c *Collection[E]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last fetch error message, empty when settled or loading.
func (c *Collection[E]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Version increments on every published change. Derived views memoize on it.
func (c *Collection[E]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Watch registers fn to run after every published change. The returned cancel
// removes the watcher.
func (c *Collection[E]) Watch(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}

func (c *Collection[E]) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Fetch loads the partition selected by f. A fresh cache entry is published
// without touching the network; otherwise the read command runs with f as
// args, and the result lands in both observable state and the cache. A nil
// filter means the unfiltered partition.
func (c *Collection[E]) Fetch(ctx context.Context, f Filter) error {
	if f == nil {
		f = NoFilter{}
	}
	gen := c.m.generation()
	key := c.cacheKey(f)

	if raw, ok := c.m.deps.Cache.Get(key); ok {
		var items []E
		if err := json.Unmarshal(raw, &items); err == nil {
			c.publish(gen, items)
			return nil
		}
		// Undecodable entry: treat as a miss.
		c.m.deps.Cache.InvalidatePrefix(key)
	}

	c.setLoading(gen)
	raw, err := c.m.deps.Bridge.Call(ctx, c.fetchCommand, f)
	if err != nil {
		c.setError(gen, err.Error())
		return err
	}
	var items []E
	if err := json.Unmarshal(raw, &items); err != nil {
		c.setError(gen, err.Error())
		return err
	}
	c.m.deps.Cache.Set(key, raw)
	c.publish(gen, items)
	return nil
}

// setLoading marks the collection loading and clears its error slot; loading
// and errored are mutually exclusive within one request cycle.
func (c *Collection[E]) setLoading(gen uint64) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.version++
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[E]) setError(gen uint64, msg string) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	c.loading = false
	c.errMsg = msg
	c.version++
	c.mu.Unlock()
	c.notify()
}

// publish replaces the collection's items and settles its loading/error slots.
// A stale generation (module deactivated since the fetch started) is a no-op.
func (c *Collection[E]) publish(gen uint64, items []E) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	c.items = items
	c.loading = false
	c.errMsg = ""
	c.version++
	c.mu.Unlock()
	c.notify()
}
