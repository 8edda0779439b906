// ABOUTME: Canned-response command bridge for tests
// ABOUTME: Counts calls per command and records the last args seen
package bridgetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Bridge answers commands from canned JSON responses.
type Bridge struct {
	mu        sync.Mutex
	responses map[string]json.RawMessage
	errs      map[string]error
	calls     map[string]int
	lastArgs  map[string]any
}

func New() *Bridge {
	return &Bridge{
		responses: make(map[string]json.RawMessage),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		lastArgs:  make(map[string]any),
	}
}

// Respond sets the canned JSON payload for command, clearing any canned error.
func (b *Bridge) Respond(command, payload string) {
	b.mu.Lock()
	b.responses[command] = json.RawMessage(payload)
	delete(b.errs, command)
	b.mu.Unlock()
}

// Fail makes command return err.
func (b *Bridge) Fail(command string, err error) {
	b.mu.Lock()
	b.errs[command] = err
	b.mu.Unlock()
}

// Calls reports how many times command ran.
func (b *Bridge) Calls(command string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[command]
}

// LastArgs returns the args of command's most recent call.
func (b *Bridge) LastArgs(command string) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastArgs[command]
}

func (b *Bridge) Call(_ context.Context, command string, args any) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[command]++
	b.lastArgs[command] = args
	if err, ok := b.errs[command]; ok {
		return nil, err
	}
	resp, ok := b.responses[command]
	if !ok {
		return nil, fmt.Errorf("no canned response for %s", command)
	}
	return resp, nil
}
