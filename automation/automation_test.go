// ABOUTME: Scenario tests for the automation module configuration
// ABOUTME: Covers flow save semantics, execution pushes, and toggle mutations
package automation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/officesync/bridge/bridgetest"
	"github.com/harperreed/officesync/cache"
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/events"
)

func newTestAutomation(t *testing.T) (*Automation, *bridgetest.Bridge, *events.Bus) {
	t.Helper()
	br := bridgetest.New()
	bus := events.NewBus()
	a := New(engine.Deps{
		Bridge: br,
		Cache:  cache.New(60 * time.Second),
		Events: bus,
	})
	return a, br, bus
}

func TestSaveFlowCreatesWhenIDEmpty(t *testing.T) {
	a, br, _ := newTestAutomation(t)
	ctx := context.Background()
	br.Respond("automation_load_flows", `[{"id":"F1","name":"Welcome drip","status":"enabled"}]`)
	br.Respond("automation_save_flow", `{"id":"F2","name":"Churn alert","status":"disabled"}`)

	require.NoError(t, a.Flows.Fetch(ctx, nil))

	flow, err := a.SaveFlow(ctx, SaveFlowInput{Name: "Churn alert"})
	require.NoError(t, err)
	assert.Equal(t, "F2", flow.ID)

	items := a.Flows.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "F2", items[0].ID, "new flow lands at the head")
}

func TestSaveFlowReplacesWhenIDSet(t *testing.T) {
	a, br, _ := newTestAutomation(t)
	ctx := context.Background()
	br.Respond("automation_load_flows", `[{"id":"F1","name":"Welcome drip","status":"enabled"}]`)
	br.Respond("automation_save_flow", `{"id":"F1","name":"Welcome drip v2","status":"enabled"}`)

	require.NoError(t, a.Flows.Fetch(ctx, nil))

	_, err := a.SaveFlow(ctx, SaveFlowInput{ID: "F1", Name: "Welcome drip v2"})
	require.NoError(t, err)

	items := a.Flows.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Welcome drip v2", items[0].Name)
}

func TestExecuteFlowPrependsExecution(t *testing.T) {
	a, br, _ := newTestAutomation(t)
	ctx := context.Background()
	br.Respond("automation_get_executions", `[{"id":"E1","flow_id":"F1","status":"completed"}]`)
	br.Respond("automation_execute_flow", `{"id":"E2","flow_id":"F1","status":"running"}`)

	require.NoError(t, a.Executions.Fetch(ctx, nil))

	exec, err := a.ExecuteFlow(ctx, "F1")
	require.NoError(t, err)
	assert.Equal(t, "running", exec.Status)
	assert.Equal(t, "E2", a.Executions.Items()[0].ID)
}

func TestExecutionUpdatedPushSettlesRun(t *testing.T) {
	a, br, bus := newTestAutomation(t)
	ctx := context.Background()
	br.Respond("automation_get_executions", `[{"id":"E1","flow_id":"F1","status":"running"}]`)

	a.Activate(ctx)
	defer a.Deactivate()
	require.NoError(t, a.Executions.Fetch(ctx, nil))

	bus.Publish("automation-execution-updated", []byte(`{"id":"E1","flow_id":"F1","status":"completed"}`))

	assert.Equal(t, "completed", a.Executions.Items()[0].Status)
}

func TestToggleFlowInvalidatesStats(t *testing.T) {
	a, br, _ := newTestAutomation(t)
	ctx := context.Background()
	br.Respond("automation_load_flows", `[{"id":"F1","name":"Welcome drip","status":"enabled"}]`)
	br.Respond("automation_get_stats", `{"enabled_flows":1}`)
	br.Respond("automation_toggle_flow", `{"id":"F1","name":"Welcome drip","status":"disabled"}`)

	require.NoError(t, a.Flows.Fetch(ctx, nil))
	require.NoError(t, a.Stats.Fetch(ctx))

	_, err := a.ToggleFlow(ctx, "F1")
	require.NoError(t, err)

	br.Respond("automation_get_stats", `{"enabled_flows":0}`)
	require.NoError(t, a.Stats.Fetch(ctx))
	assert.Equal(t, 2, br.Calls("automation_get_stats"))
	assert.Equal(t, 0, a.Stats.Get().EnabledFlows)
}
