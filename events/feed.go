// ABOUTME: Websocket feed that relays backend push frames onto the local bus
// ABOUTME: Reconnects with capped backoff; losing the feed degrades to polling only
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	readTimeout    = 90 * time.Second
)

// Frame is the wire shape of one push event.
type Frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Feed dials the backend's push endpoint and republishes each frame on a Bus.
type Feed struct {
	url string
	bus *Bus

	closeOnce sync.Once
	closed    chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewFeed creates a feed for url publishing into bus. Call Run to start it.
func NewFeed(url string, bus *Bus) *Feed {
	return &Feed{
		url:    url,
		bus:    bus,
		closed: make(chan struct{}),
	}
}

// Run connects and relays frames until ctx is done or Close is called.
// Connection failures are retried with capped backoff and never returned:
// without the feed the application still works off polled refreshes.
func (f *Feed) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.closed:
			return
		default:
		}

		if err := f.relay(ctx); err != nil {
			log.Warn("push feed disconnected", "url", f.url, "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-f.closed:
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (f *Feed) relay(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial push endpoint: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.conn = nil
		f.mu.Unlock()
		_ = conn.Close()
	}()

	log.Debug("push feed connected", "url", f.url)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		frame, err := DecodeFrame(data)
		if err != nil {
			log.Warn("dropping malformed push frame", "err", err)
			continue
		}
		f.bus.Publish(frame.Topic, frame.Payload)
	}
}

// DecodeFrame parses one wire frame. Frames without a topic are rejected.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Topic == "" {
		return Frame{}, fmt.Errorf("frame has no topic")
	}
	return frame, nil
}

// Close stops the feed. Safe to call more than once.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		close(f.closed)
		f.mu.Lock()
		if f.conn != nil {
			_ = f.conn.Close()
		}
		f.mu.Unlock()
	})
}
