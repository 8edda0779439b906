// ABOUTME: Automation module configuration for the sync engine
// ABOUTME: Binds flows, executions, and stats to the backend command set
package automation

import (
	"context"
	"sync"

	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Filters is the automation module's filter record.
type Filters struct {
	FlowStatus string
	Search     string
}

type flowsFilter struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f flowsFilter) Key() string {
	if f.Status == "" && f.Search == "" {
		return "all"
	}
	return "status=" + f.Status + "&q=" + f.Search
}

type byID struct {
	ID string `json:"id"`
}

// Automation is the hook surface for the automation UI.
type Automation struct {
	mod *engine.Module

	mu      sync.Mutex
	filters Filters

	Flows         *engine.Collection[models.Flow]
	Executions    *engine.Collection[models.Execution]
	Notifications *engine.Collection[models.Notification]
	Stats         *engine.Value[models.AutomationStats]
}

// New wires the automation module.
func New(deps engine.Deps) *Automation {
	a := &Automation{mod: engine.New("automation", deps)}

	a.Stats = engine.NewValue[models.AutomationStats](a.mod, "stats", "automation_get_stats")

	a.Flows = engine.NewCollection[models.Flow](a.mod, "flows", "automation_load_flows",
		engine.WithInvalidates[models.Flow](a.Stats.CacheKey()),
		engine.WithFilterFunc[models.Flow](func() engine.Filter {
			f := a.Filters()
			return flowsFilter{Status: f.FlowStatus, Search: f.Search}
		}))
	a.Executions = engine.NewCollection[models.Execution](a.mod, "executions", "automation_get_executions",
		engine.WithInvalidates[models.Execution](a.Stats.CacheKey()))
	a.Notifications = engine.NewCollection[models.Notification](a.mod, "notifications", "automation_get_notifications")

	engine.BindUpdated(a.mod, "automation-flow-updated", a.Flows)
	engine.BindCreated(a.mod, "automation-execution-created", a.Executions)
	engine.BindUpdated(a.mod, "automation-execution-updated", a.Executions)
	engine.BindCreated(a.mod, "automation-notification", a.Notifications)
	a.mod.BindRefresh("automation-refresh")

	a.mod.BindFilter("flow_status", a.Flows)
	a.mod.BindFilter("search", a.Flows)

	return a
}

func (a *Automation) Activate(ctx context.Context) { a.mod.Activate(ctx) }
func (a *Automation) Deactivate()                  { a.mod.Deactivate() }
func (a *Automation) Refresh(ctx context.Context)  { a.mod.Refresh(ctx) }

// Filters returns the current filter record.
func (a *Automation) Filters() Filters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filters
}

func (a *Automation) SetFlowStatus(ctx context.Context, status string) {
	a.mu.Lock()
	a.filters.FlowStatus = status
	a.mu.Unlock()
	a.mod.FilterChanged(ctx, "flow_status")
}

func (a *Automation) SetSearch(ctx context.Context, search string) {
	a.mu.Lock()
	a.filters.Search = search
	a.mu.Unlock()
	a.mod.FilterChanged(ctx, "search")
}

// SaveFlowInput is the save command's payload; saving an existing flow
// replaces it.
type SaveFlowInput struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Trigger     string `json:"trigger,omitempty"`
}

// SaveFlow creates a new flow when in.ID is empty, otherwise replaces it.
func (a *Automation) SaveFlow(ctx context.Context, in SaveFlowInput) (models.Flow, error) {
	if in.ID == "" {
		return a.Flows.Create(ctx, "automation_save_flow", in)
	}
	return a.Flows.Update(ctx, "automation_save_flow", in)
}

func (a *Automation) DeleteFlow(ctx context.Context, id string) (bool, error) {
	return a.Flows.Delete(ctx, "automation_delete_flow", byID{ID: id}, id)
}

// ToggleFlow flips a flow between enabled and disabled.
func (a *Automation) ToggleFlow(ctx context.Context, id string) (models.Flow, error) {
	return a.Flows.Update(ctx, "automation_toggle_flow", byID{ID: id})
}

// ExecuteFlow starts a run; the returned execution lands at the head of the
// executions collection.
func (a *Automation) ExecuteFlow(ctx context.Context, flowID string) (models.Execution, error) {
	return a.Executions.Create(ctx, "automation_execute_flow", struct {
		FlowID string `json:"flow_id"`
	}{FlowID: flowID})
}
