// ABOUTME: Derived views over the automation collections
package automation

import (
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Views bundles the automation module's memoized projections.
type Views struct {
	EnabledFlows      *engine.View[models.Flow, []models.Flow]
	RunningExecutions *engine.View[models.Execution, []models.Execution]
	RecentExecutions  *engine.View[models.Execution, []models.Execution]
	ByStatus          *engine.View[models.Execution, map[string][]models.Execution]
}

// NewViews builds the derived views for a.
func NewViews(a *Automation) *Views {
	return &Views{
		EnabledFlows: engine.NewView(a.Flows, func(items []models.Flow) []models.Flow {
			return engine.Matching(items, func(f models.Flow) bool { return f.Status == models.FlowEnabled })
		}),
		RunningExecutions: engine.NewView(a.Executions, func(items []models.Execution) []models.Execution {
			return engine.Matching(items, func(e models.Execution) bool {
				return e.Status == models.ExecutionRunning
			})
		}),
		RecentExecutions: engine.NewView(a.Executions, func(items []models.Execution) []models.Execution {
			return engine.TopN(items, 10, func(x, y models.Execution) bool {
				return x.StartedAt.After(y.StartedAt)
			})
		}),
		ByStatus: engine.NewView(a.Executions, func(items []models.Execution) map[string][]models.Execution {
			return engine.GroupBy(items, func(e models.Execution) string { return e.Status })
		}),
	}
}
