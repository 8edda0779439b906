// ABOUTME: Command-bridge contract consumed by the sync engine
// ABOUTME: Every remote read and write is one Call against this interface
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCommand is returned by bridge implementations for commands they
// do not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Caller is the request/response side of the backend. Args are marshaled to
// JSON by the implementation; the result is the backend's raw JSON payload.
type Caller interface {
	Call(ctx context.Context, command string, args any) (json.RawMessage, error)
}

// CommandError carries the failing command name alongside the backend's
// message so fetch error slots stay human readable.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// Invoke calls command and decodes the result into T.
func Invoke[T any](ctx context.Context, c Caller, command string, args any) (T, error) {
	var out T
	raw, err := c.Call(ctx, command, args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s result: %w", command, err)
	}
	return out, nil
}
