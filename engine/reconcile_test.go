// ABOUTME: Tests for realtime push reconciliation
// ABOUTME: Covers replace/prepend merge rules, idempotent redelivery, and refresh topics
package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/officesync/models"
)

func TestUpdatedEventReplacesByIdentifier(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("marketing", deps)
	leads := NewCollection[models.Lead](m, "leads", "marketing_get_leads")
	BindUpdated(m, "marketing-lead-updated", leads)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("marketing_get_leads", `[{"id":"L1","name":"Lena","stage":"hot","score":92}]`)
	require.NoError(t, leads.Fetch(context.Background(), NoFilter{}))

	env.bus.Publish("marketing-lead-updated", json.RawMessage(`{"id":"L1","name":"Lena","stage":"hot","score":97}`))

	assert.Equal(t, 97, leads.Items()[0].Score)
	assert.Equal(t, 1, env.bridge.Calls("marketing_get_leads"),
		"push merges must not trigger network calls")
}

func TestUpdatedEventIsIdempotent(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("marketing", deps)
	leads := NewCollection[models.Lead](m, "leads", "marketing_get_leads")
	BindUpdated(m, "marketing-lead-updated", leads)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("marketing_get_leads", `[{"id":"L1","name":"Lena","stage":"hot","score":85}]`)
	require.NoError(t, leads.Fetch(context.Background(), NoFilter{}))

	event := json.RawMessage(`{"id":"L1","name":"Lena","stage":"hot","score":97}`)
	env.bus.Publish("marketing-lead-updated", event)
	once := leads.Items()
	env.bus.Publish("marketing-lead-updated", event)

	assert.Equal(t, once, leads.Items())
	assert.Len(t, leads.Items(), 1)
}

func TestUpdatedEventForUnloadedPartitionIsIgnored(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("marketing", deps)
	leads := NewCollection[models.Lead](m, "leads", "marketing_get_leads")
	BindUpdated(m, "marketing-lead-updated", leads)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("marketing_get_leads", `[{"id":"L1","name":"Lena","stage":"hot","score":85}]`)
	require.NoError(t, leads.Fetch(context.Background(), NoFilter{}))

	env.bus.Publish("marketing-lead-updated", json.RawMessage(`{"id":"L9","name":"Kim","stage":"warm","score":30}`))

	require.Len(t, leads.Items(), 1)
	assert.Equal(t, "L1", leads.Items()[0].ID)
}

func TestCreatedEventPrependsOnce(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	BindCreated(m, "crm-contact-created", contacts)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("crm_get_contacts", `[{"id":"C1","name":"Ada","status":"customer"}]`)
	require.NoError(t, contacts.Fetch(context.Background(), NoFilter{}))

	event := json.RawMessage(`{"id":"C2","name":"Grace","status":"lead"}`)
	env.bus.Publish("crm-contact-created", event)
	env.bus.Publish("crm-contact-created", event) // redelivery

	items := contacts.Items()
	require.Len(t, items, 2, "redelivered create events must not duplicate rows")
	assert.Equal(t, "C2", items[0].ID)
}

func TestNotificationEventPrependsToQueue(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	notifications := NewCollection[models.Notification](m, "notifications", "crm_get_notifications")
	BindCreated(m, "crm-notification", notifications)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bus.Publish("crm-notification", json.RawMessage(`{"id":"N1","module":"crm","title":"Deal closed"}`))
	env.bus.Publish("crm-notification", json.RawMessage(`{"id":"N2","module":"crm","title":"New lead"}`))

	items := notifications.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "N2", items[0].ID, "newest notification sits at the head")
	assert.False(t, items[0].Read)
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	BindUpdated(m, "crm-contact-updated", contacts)
	BindCreated(m, "crm-contact-created", contacts)
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("crm_get_contacts", `[{"id":"C1","name":"Ada","status":"customer"}]`)
	require.NoError(t, contacts.Fetch(context.Background(), NoFilter{}))

	env.bus.Publish("crm-contact-updated", json.RawMessage(`not json`))
	env.bus.Publish("crm-contact-updated", json.RawMessage(`{"name":"no identifier"}`))
	env.bus.Publish("crm-contact-created", json.RawMessage(`{"name":"no identifier"}`))

	require.Len(t, contacts.Items(), 1)
	assert.Equal(t, "Ada", contacts.Items()[0].Name)
}

func TestRefreshTopicSupersedesCache(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	m.BindRefresh("crm-refresh")
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("crm_get_contacts", `[{"id":"C1","name":"Ada","status":"customer"}]`)
	require.NoError(t, contacts.Fetch(context.Background(), NoFilter{}))

	env.bridge.Respond("crm_get_contacts", `[{"id":"C1","name":"Ada Lovelace","status":"customer"}]`)
	env.bus.Publish("crm-refresh", json.RawMessage(`{}`))

	assert.Equal(t, 2, env.bridge.Calls("crm_get_contacts"),
		"a generic refresh bypasses the still-fresh cache entry")
	assert.Equal(t, "Ada Lovelace", contacts.Items()[0].Name)
}

func TestDeactivateUnsubscribesTopics(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	BindCreated(m, "crm-contact-created", contacts)

	m.Activate(context.Background())
	assert.Equal(t, 1, env.bus.SubscriberCount("crm-contact-created"))

	m.Deactivate()
	assert.Zero(t, env.bus.SubscriberCount("crm-contact-created"))

	env.bus.Publish("crm-contact-created", json.RawMessage(`{"id":"C5","name":"Late"}`))
	assert.Empty(t, contacts.Items())
}
