// ABOUTME: Module lifecycle for the generic state-synchronization engine
// ABOUTME: Owns activation scope, push subscriptions, refresh scheduling, and filter binding
package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/officesync/bridge"
	"github.com/harperreed/officesync/cache"
	"github.com/harperreed/officesync/events"
)

// Entity is anything with a stable unique identifier. The engine never
// mutates an entity in place; it replaces it wholesale.
type Entity interface {
	EntityID() string
}

// Filter narrows which subset of a collection the backend returns. Key must
// be deterministic: distinct filter values are distinct cache partitions.
// Filters are also the args sent with the read command, so implementations
// carry json tags.
type Filter interface {
	Key() string
}

// NoFilter is the unfiltered partition.
type NoFilter struct{}

func (NoFilter) Key() string { return "all" }

// Deps are the collaborators a module needs. Cache is process-wide and shared
// across modules; everything else is per module.
type Deps struct {
	Bridge bridge.Caller
	Cache  *cache.Store
	Events events.Subscriber
	Logger *log.Logger

	// RefreshInterval enables the periodic full refresh when positive.
	RefreshInterval time.Duration
}

// Part is the untyped face of Collection[E] and Value[T] the module drives
// refreshes through. Only engine types satisfy it.
type Part interface {
	collectionName() string
	cachePrefix() string
	refresh(ctx context.Context)
}

type binding struct {
	topic   string
	handler events.Handler
}

// Module is one domain module's sync state: its collections, push-topic
// bindings, refresh timer, and filter dependencies. Construct with New,
// register collections, bind topics, then Activate.
type Module struct {
	name string
	deps Deps
	log  *log.Logger

	mu       sync.Mutex
	active   bool
	gen      uint64
	parts    []Part
	bindings []binding
	cancels  []func()
	stop     chan struct{}
	fields   map[string][]Part
}

// New creates a module named name (the cache-key namespace). The module
// starts mounted: fetches publish immediately, realtime starts on Activate.
func New(name string, deps Deps) *Module {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Module{
		name:   name,
		deps:   deps,
		log:    logger.With("module", name),
		active: true,
		fields: make(map[string][]Part),
	}
}

// Name returns the module's cache-key namespace.
func (m *Module) Name() string { return m.name }

func (m *Module) register(r Part) {
	m.mu.Lock()
	m.parts = append(m.parts, r)
	m.mu.Unlock()
}

func (m *Module) bind(topic string, h events.Handler) {
	m.mu.Lock()
	m.bindings = append(m.bindings, binding{topic: topic, handler: h})
	m.mu.Unlock()
}

// generation returns the scope token a publish must present. Deactivate bumps
// it, so responses that arrive after teardown are dropped.
func (m *Module) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *Module) publishable(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active && m.gen == gen
}

// Activate subscribes the bound push topics and starts the refresh timer.
// Subscription failures are logged and skipped: the module keeps working off
// polled refreshes. Calling Activate on an active module only re-arms what is
// not yet armed; the usual sequence is New, bind, Activate.
func (m *Module) Activate(ctx context.Context) {
	m.mu.Lock()
	if len(m.cancels) > 0 {
		m.mu.Unlock()
		return
	}
	m.active = true
	bindings := make([]binding, len(m.bindings))
	copy(bindings, m.bindings)
	m.mu.Unlock()

	if m.deps.Events != nil {
		var cancels []func()
		for _, b := range bindings {
			cancel, err := m.deps.Events.Subscribe(b.topic, b.handler)
			if err != nil {
				m.log.Warn("push subscription failed, continuing without realtime", "topic", b.topic, "err", err)
				continue
			}
			cancels = append(cancels, cancel)
		}
		m.mu.Lock()
		m.cancels = cancels
		m.mu.Unlock()
	}

	if m.deps.RefreshInterval > 0 {
		stop := make(chan struct{})
		m.mu.Lock()
		m.stop = stop
		m.mu.Unlock()
		go m.runScheduler(ctx, stop)
	}
}

// runScheduler fires a full refresh every interval. There is no overlap
// guard: the cache and per-collection loading flags keep overlapping
// refreshes harmless.
func (m *Module) runScheduler(ctx context.Context, stop chan struct{}) {
	ticker := time.NewTicker(m.deps.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Deactivate releases the push subscriptions and refresh timer and bumps the
// generation so in-flight fetch responses become no-ops. Safe to call on an
// already-inactive module.
func (m *Module) Deactivate() {
	m.mu.Lock()
	cancels := m.cancels
	stop := m.stop
	m.cancels = nil
	m.stop = nil
	m.active = false
	m.gen++
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if stop != nil {
		close(stop)
	}
}

// Refresh drops every cache partition the module owns and refetches each
// collection with its current filter. This is both the manual refresh entry
// point and what the scheduler and the generic refresh topic invoke.
func (m *Module) Refresh(ctx context.Context) {
	m.mu.Lock()
	parts := make([]Part, len(m.parts))
	copy(parts, m.parts)
	m.mu.Unlock()

	for _, p := range parts {
		m.deps.Cache.InvalidatePrefix(p.cachePrefix())
	}
	for _, p := range parts {
		p.refresh(ctx)
	}
}

// BindRefresh wires the module's generic refresh topic to Refresh.
func (m *Module) BindRefresh(topic string) {
	m.bind(topic, func(json.RawMessage) {
		m.Refresh(context.Background())
	})
}

// BindFilter declares which collections depend on a filter field. When the
// field changes, only those collections are refetched.
func (m *Module) BindFilter(field string, parts ...Part) {
	m.mu.Lock()
	m.fields[field] = append(m.fields[field], parts...)
	m.mu.Unlock()
}

// FilterChanged refetches the collections bound to field. The cache is left
// alone: re-selecting a still-fresh partition serves it from cache.
func (m *Module) FilterChanged(ctx context.Context, field string) {
	m.mu.Lock()
	parts := make([]Part, len(m.fields[field]))
	copy(parts, m.fields[field])
	m.mu.Unlock()

	for _, p := range parts {
		p.refresh(ctx)
	}
}
