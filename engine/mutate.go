// ABOUTME: Mutation pipeline: backend-confirmed create, update, delete, transition
// ABOUTME: Local state is untouched until the write command resolves; no optimistic rollback exists
package engine

import (
	"context"

	"github.com/harperreed/officesync/bridge"
)

// Create runs a create command and prepends the backend's authoritative
// entity. On error nothing local changes.
func (c *Collection[E]) Create(ctx context.Context, command string, args any) (E, error) {
	gen := c.m.generation()
	ent, err := bridge.Invoke[E](ctx, c.m.deps.Bridge, command, args)
	if err != nil {
		return ent, err
	}
	c.applyPrepend(gen, ent)
	c.invalidateMutated()
	return ent, nil
}

// Update runs an update command and replaces the entity whose identifier
// matches the result. Transitions (stage moves, completions, score changes)
// are updates with a different command name.
func (c *Collection[E]) Update(ctx context.Context, command string, args any) (E, error) {
	gen := c.m.generation()
	ent, err := bridge.Invoke[E](ctx, c.m.deps.Bridge, command, args)
	if err != nil {
		return ent, err
	}
	c.applyReplace(gen, ent, false)
	c.invalidateMutated()
	return ent, nil
}

// Delete runs a delete command. The backend answers with a boolean; the local
// entity is removed only when it reports true.
func (c *Collection[E]) Delete(ctx context.Context, command string, args any, id string) (bool, error) {
	gen := c.m.generation()
	ok, err := bridge.Invoke[bool](ctx, c.m.deps.Bridge, command, args)
	if err != nil {
		return false, err
	}
	if ok {
		c.applyRemove(gen, id)
	}
	c.invalidateMutated()
	return ok, nil
}

// invalidateMutated drops this collection's cache partitions plus any
// aggregate prefixes the mutation feeds.
func (c *Collection[E]) invalidateMutated() {
	c.m.deps.Cache.InvalidatePrefix(c.cachePrefix())
	for _, prefix := range c.alsoInvalidates {
		c.m.deps.Cache.InvalidatePrefix(prefix)
	}
}

func (c *Collection[E]) applyPrepend(gen uint64, ent E) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	c.items = append([]E{ent}, c.items...)
	c.version++
	c.mu.Unlock()
	c.notify()
}

// applyReplace swaps the entity with a matching identifier. With upsert set,
// a missing identifier prepends instead; otherwise the entity is dropped
// (assumed to live in a partition that is not loaded).
func (c *Collection[E]) applyReplace(gen uint64, ent E, upsert bool) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	replaced := false
	for i, cur := range c.items {
		if cur.EntityID() == ent.EntityID() {
			next := make([]E, len(c.items))
			copy(next, c.items)
			next[i] = ent
			c.items = next
			replaced = true
			break
		}
	}
	if !replaced && upsert {
		c.items = append([]E{ent}, c.items...)
		replaced = true
	}
	if !replaced {
		c.mu.Unlock()
		return
	}
	c.version++
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[E]) applyRemove(gen uint64, id string) {
	if !c.m.publishable(gen) {
		return
	}
	c.mu.Lock()
	removed := false
	next := make([]E, 0, len(c.items))
	for _, cur := range c.items {
		if cur.EntityID() == id {
			removed = true
			continue
		}
		next = append(next, cur)
	}
	if !removed {
		c.mu.Unlock()
		return
	}
	c.items = next
	c.version++
	c.mu.Unlock()
	c.notify()
}
