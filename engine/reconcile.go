// ABOUTME: Realtime reconciler: merges push-event payloads into collections by identity
// ABOUTME: Updates replace-if-present, creates prepend-if-absent, malformed payloads are dropped
package engine

import "encoding/json"

// decodeEntity parses a push payload into E, rejecting payloads without an
// identifier so they cannot silently corrupt a merge.
func decodeEntity[E Entity](payload json.RawMessage) (E, bool) {
	var ent E
	if err := json.Unmarshal(payload, &ent); err != nil {
		return ent, false
	}
	if ent.EntityID() == "" {
		return ent, false
	}
	return ent, true
}

// BindUpdated merges "entity updated" events for topic into c: the entity
// with the matching identifier is replaced. No match means the entity belongs
// to a partition that is not loaded, and the event is ignored. Replays of the
// same event are idempotent.
func BindUpdated[E Entity](m *Module, topic string, c *Collection[E]) {
	m.bind(topic, func(payload json.RawMessage) {
		ent, ok := decodeEntity[E](payload)
		if !ok {
			m.log.Warn("dropping malformed push payload", "topic", topic)
			return
		}
		c.applyReplace(m.generation(), ent, false)
	})
}

// BindCreated merges "entity created" events for topic into c. An unseen
// identifier prepends; a known one replaces, so redelivered create events do
// not produce duplicate rows. Notification topics bind the same way against
// the notification collection.
func BindCreated[E Entity](m *Module, topic string, c *Collection[E]) {
	m.bind(topic, func(payload json.RawMessage) {
		ent, ok := decodeEntity[E](payload)
		if !ok {
			m.log.Warn("dropping malformed push payload", "topic", topic)
			return
		}
		c.applyReplace(m.generation(), ent, true)
	})
}
