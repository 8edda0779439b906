// ABOUTME: Shared test fixtures for engine tests
// ABOUTME: Provides a canned bridge, a fake-clock cache, and filter types
package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/harperreed/officesync/bridge/bridgetest"
	"github.com/harperreed/officesync/cache"
	"github.com/harperreed/officesync/events"
)

// stageFilter scopes a collection to one stage.
type stageFilter struct {
	Stage string `json:"stage"`
}

func (f stageFilter) Key() string { return "stage=" + f.Stage }

type testEnv struct {
	bridge *bridgetest.Bridge
	cache  *cache.Store
	bus    *events.Bus

	mu  sync.Mutex
	now time.Time
}

// newTestEnv builds module deps around a canned bridge and a controllable
// clock.
func newTestEnv(t *testing.T) (*testEnv, Deps) {
	t.Helper()
	env := &testEnv{
		bridge: bridgetest.New(),
		cache:  cache.New(60 * time.Second),
		bus:    events.NewBus(),
		now:    time.Now(),
	}
	env.cache.SetClock(func() time.Time {
		env.mu.Lock()
		defer env.mu.Unlock()
		return env.now
	})
	deps := Deps{
		Bridge: env.bridge,
		Cache:  env.cache,
		Events: env.bus,
	}
	return env, deps
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	e.now = e.now.Add(d)
	e.mu.Unlock()
}
