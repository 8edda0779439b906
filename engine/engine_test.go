// ABOUTME: Tests for module lifecycle, refresh scheduling, and filter binding
// ABOUTME: Covers interval refresh, degraded realtime, and selective refetch on filter change
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/officesync/events"
	"github.com/harperreed/officesync/models"
)

// failingSubscriber refuses every subscription.
type failingSubscriber struct{}

func (failingSubscriber) Subscribe(string, events.Handler) (func(), error) {
	return nil, errors.New("push channel down")
}

func TestSchedulerInvokesFullRefresh(t *testing.T) {
	env, deps := newTestEnv(t)
	deps.RefreshInterval = 20 * time.Millisecond
	m := New("crm", deps)
	NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	env.bridge.Respond("crm_get_contacts", `[]`)

	m.Activate(context.Background())
	defer m.Deactivate()

	deadline := time.After(2 * time.Second)
	for env.bridge.Calls("crm_get_contacts") < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler never fired twice")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDeactivateStopsScheduler(t *testing.T) {
	env, deps := newTestEnv(t)
	deps.RefreshInterval = 10 * time.Millisecond
	m := New("crm", deps)
	NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	env.bridge.Respond("crm_get_contacts", `[]`)

	m.Activate(context.Background())
	time.Sleep(35 * time.Millisecond)
	m.Deactivate()

	settled := env.bridge.Calls("crm_get_contacts")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, env.bridge.Calls("crm_get_contacts"))
}

func TestActivateSurvivesSubscriptionFailure(t *testing.T) {
	env, deps := newTestEnv(t)
	deps.Events = failingSubscriber{}
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	BindCreated(m, "crm-contact-created", contacts)

	m.Activate(context.Background())
	defer m.Deactivate()

	// Degraded but functional: fetches still work without realtime.
	env.bridge.Respond("crm_get_contacts", `[{"id":"C1","name":"Ada","status":"customer"}]`)
	require.NoError(t, contacts.Fetch(context.Background(), NoFilter{}))
	assert.Len(t, contacts.Items(), 1)
}

func TestFilterChangedRefetchesOnlyBoundCollections(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("marketing", deps)

	stage := "hot"
	leads := NewCollection[models.Lead](m, "leads", "marketing_get_leads",
		WithFilterFunc[models.Lead](func() Filter { return stageFilter{Stage: stage} }))
	campaigns := NewCollection[models.Campaign](m, "campaigns", "marketing_get_campaigns")
	m.BindFilter("lead_stage", leads)

	env.bridge.Respond("marketing_get_leads", `[]`)
	env.bridge.Respond("marketing_get_campaigns", `[]`)
	require.NoError(t, leads.Fetch(context.Background(), stageFilter{Stage: stage}))
	require.NoError(t, campaigns.Fetch(context.Background(), NoFilter{}))

	stage = "warm"
	m.FilterChanged(context.Background(), "lead_stage")

	assert.Equal(t, 2, env.bridge.Calls("marketing_get_leads"),
		"changing the lead stage refetches leads")
	assert.Equal(t, 1, env.bridge.Calls("marketing_get_campaigns"),
		"campaigns do not depend on the lead stage")
}

func TestFilterChangeDoesNotInvalidateCache(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("marketing", deps)

	stage := "hot"
	leads := NewCollection[models.Lead](m, "leads", "marketing_get_leads",
		WithFilterFunc[models.Lead](func() Filter { return stageFilter{Stage: stage} }))
	m.BindFilter("lead_stage", leads)

	env.bridge.Respond("marketing_get_leads", `[{"id":"L1","name":"Lena","stage":"hot","score":85}]`)
	require.NoError(t, leads.Fetch(context.Background(), stageFilter{Stage: "hot"}))

	stage = "warm"
	m.FilterChanged(context.Background(), "lead_stage")

	// Re-selecting the previous stage inside the TTL serves from cache.
	stage = "hot"
	m.FilterChanged(context.Background(), "lead_stage")
	assert.Equal(t, 2, env.bridge.Calls("marketing_get_leads"))
	assert.Equal(t, "L1", leads.Items()[0].ID)
}

func TestModuleRefreshDropsAllOwnedPartitions(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	contacts := NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	stats := NewValue[models.CRMStats](m, "stats", "crm_get_stats")

	env.bridge.Respond("crm_get_contacts", `[]`)
	env.bridge.Respond("crm_get_stats", `{}`)
	require.NoError(t, contacts.Fetch(context.Background(), NoFilter{}))
	require.NoError(t, stats.Fetch(context.Background()))

	m.Refresh(context.Background())

	assert.Equal(t, 2, env.bridge.Calls("crm_get_contacts"))
	assert.Equal(t, 2, env.bridge.Calls("crm_get_stats"))
}

func TestBindRefreshPayloadIgnored(t *testing.T) {
	env, deps := newTestEnv(t)
	m := New("crm", deps)
	NewCollection[models.Contact](m, "contacts", "crm_get_contacts")
	m.BindRefresh("crm-refresh")
	m.Activate(context.Background())
	defer m.Deactivate()

	env.bridge.Respond("crm_get_contacts", `[]`)
	env.bus.Publish("crm-refresh", json.RawMessage(`whatever`))

	assert.Equal(t, 1, env.bridge.Calls("crm_get_contacts"))
}
