// ABOUTME: Scenario tests for the research module configuration
// ABOUTME: Covers project runs, report generation pushes, and competitor tracking
package research

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

func newTestResearch(t *testing.T) (*Research, *bridgetest.Bridge, *events.Bus) {
	t.Helper()
	br := bridgetest.New()
	bus := events.NewBus()
	r := New(engine.Deps{
		Bridge: br,
		Cache:  cache.New(60 * time.Second),
		Events: bus,
	})
	return r, br, bus
}

func TestRunProjectMarksRunning(t *testing.T) {
	r, br, _ := newTestResearch(t)
	ctx := context.Background()
	br.Respond("research_get_projects", `[{"id":"R1","name":"Market scan","status":"active"}]`)
	br.Respond("research_run_project", `{"id":"R1","name":"Market scan","status":"running"}`)

	require.NoError(t, r.Projects.Fetch(ctx, nil))

	proj, err := r.RunProject(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "running", proj.Status)
	assert.Equal(t, "running", r.Projects.Items()[0].Status)
}

func TestReportCreatedPushPrepends(t *testing.T) {
	r, br, bus := newTestResearch(t)
	ctx := context.Background()
	br.Respond("research_get_reports", `[{"id":"RP1","project_id":"R1","status":"completed"}]`)

	r.Activate(ctx)
	defer r.Deactivate()
	require.NoError(t, r.Reports.Fetch(ctx, nil))

	bus.Publish("research-report-created", []byte(`{"id":"RP2","project_id":"R1","status":"completed"}`))

	items := r.Reports.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "RP2", items[0].ID)
}

func TestRemoveCompetitorConfirmed(t *testing.T) {
	r, br, _ := newTestResearch(t)
	ctx := context.Background()
	br.Respond("research_get_competitors", `[
		{"id":"CP1","name":"Initech"},
		{"id":"CP2","name":"Globex"}
	]`)
	br.Respond("research_remove_competitor", `true`)

	require.NoError(t, r.Competitors.Fetch(ctx, nil))

	ok, err := r.RemoveCompetitor(ctx, "CP1")
	require.NoError(t, err)
	assert.True(t, ok)

	items := r.Competitors.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "CP2", items[0].ID)
}

func TestProjectStatusFilterPartitions(t *testing.T) {
	r, br, _ := newTestResearch(t)
	ctx := context.Background()
	br.Respond("research_get_projects", `[]`)

	r.SetProjectStatus(ctx, "active")
	r.SetProjectStatus(ctx, "active")
	assert.Equal(t, 1, br.Calls("research_get_projects"))

	r.SetProjectStatus(ctx, "completed")
	assert.Equal(t, 2, br.Calls("research_get_projects"))
}
