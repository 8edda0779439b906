// ABOUTME: In-process push-event bus with topic subscriptions
// ABOUTME: Handlers run synchronously in publish order, no buffering or coalescing
package events

import (
	"encoding/json"
	"sync"
)

// Handler receives the raw JSON payload of one push event.
type Handler func(payload json.RawMessage)

// Subscriber is the push-channel contract the sync engine consumes. The
// returned cancel function releases the subscription and is safe to call
// more than once.
type Subscriber interface {
	Subscribe(topic string, h Handler) (cancel func(), err error)
}

type subscription struct {
	topic   string
	handler Handler
}

// Bus fans published events out to topic subscribers. Delivery is synchronous:
// Publish returns after every handler for the topic has run, so events apply
// in receipt order.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]*subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// Subscribe registers h for topic.
func (b *Bus) Subscribe(topic string, h Handler) (func(), error) {
	sub := &subscription{topic: topic, handler: h}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.remove(sub) })
	}
	return cancel, nil
}

func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.topic]
	for i, s := range list {
		if s == sub {
			b.subs[sub.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}
}

// Publish delivers payload to every subscriber of topic, in subscription
// order. Unknown topics are a no-op.
func (b *Bus) Publish(topic string, payload json.RawMessage) {
	b.mu.RLock()
	list := make([]*subscription, len(b.subs[topic]))
	copy(list, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range list {
		s.handler(payload)
	}
}

// SubscriberCount reports how many handlers are registered for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
