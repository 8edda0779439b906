// ABOUTME: Singleton observable aggregate, used for per-module stats blocks
// ABOUTME: Cached under a fixed literal key, refreshed with the module
package engine

import (
	"context"
	"encoding/json"
	"sync"
)

// Value is a single observable aggregate (stats, insights) with the same
// cache and loading/error semantics as a Collection, minus filters.
type Value[T any] struct {
	m            *Module
	name         string
	fetchCommand string

	mu      sync.Mutex
	val     T
	loading bool
	errMsg  string
	version uint64
}

// NewValue registers a singleton aggregate named name on m.
func NewValue[T any](m *Module, name, fetchCommand string) *Value[T] {
	v := &Value[T]{m: m, name: name, fetchCommand: fetchCommand}
	m.register(v)
	return v
}

func (v *Value[T]) collectionName() string { return v.name }

// cachePrefix doubles as the full cache key, "crm:stats".
func (v *Value[T]) cachePrefix() string { return v.m.name + ":" + v.name }

func (v *Value[T]) refresh(ctx context.Context) { _ = v.Fetch(ctx) }

// CacheKey exposes the literal key so collections can declare it as an
// aggregate they invalidate.
func (v *Value[T]) CacheKey() string { return v.cachePrefix() }

// Get returns the current aggregate.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val
}

// Loading reports whether a fetch is in flight.
func (v *Value[T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Err returns the last fetch error message.
func (v *Value[T]) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// Version increments on every published change.
func (v *Value[T]) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Fetch loads the aggregate, serving a fresh cache entry without a bridge
// call.
func (v *Value[T]) Fetch(ctx context.Context) error {
	gen := v.m.generation()
	key := v.cachePrefix()

	if raw, ok := v.m.deps.Cache.Get(key); ok {
		var val T
		if err := json.Unmarshal(raw, &val); err == nil {
			v.publish(gen, val)
			return nil
		}
		v.m.deps.Cache.InvalidatePrefix(key)
	}

	v.setLoading(gen)
	raw, err := v.m.deps.Bridge.Call(ctx, v.fetchCommand, nil)
	if err != nil {
		v.setError(gen, err.Error())
		return err
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		v.setError(gen, err.Error())
		return err
	}
	v.m.deps.Cache.Set(key, raw)
	v.publish(gen, val)
	return nil
}

func (v *Value[T]) setLoading(gen uint64) {
	if !v.m.publishable(gen) {
		return
	}
	v.mu.Lock()
	v.loading = true
	v.errMsg = ""
	v.version++
	v.mu.Unlock()
}

func (v *Value[T]) setError(gen uint64, msg string) {
	if !v.m.publishable(gen) {
		return
	}
	v.mu.Lock()
	v.loading = false
	v.errMsg = msg
	v.version++
	v.mu.Unlock()
}

func (v *Value[T]) publish(gen uint64, val T) {
	if !v.m.publishable(gen) {
		return
	}
	v.mu.Lock()
	v.val = val
	v.loading = false
	v.errMsg = ""
	v.version++
	v.mu.Unlock()
}
