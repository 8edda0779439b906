// ABOUTME: Derived views over the research collections
package research

import (
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Views bundles the research module's memoized projections.
type Views struct {
	ActiveProjects   *engine.View[models.Project, []models.Project]
	ProjectsByStatus *engine.View[models.Project, map[string][]models.Project]
	CompletedReports *engine.View[models.Report, []models.Report]
	RecentReports    *engine.View[models.Report, []models.Report]
}

// NewViews builds the derived views for r.
func NewViews(r *Research) *Views {
	return &Views{
		ActiveProjects: engine.NewView(r.Projects, func(items []models.Project) []models.Project {
			return engine.Matching(items, func(p models.Project) bool {
				return p.Status == models.ProjectActive || p.Status == models.ProjectRunning
			})
		}),
		ProjectsByStatus: engine.NewView(r.Projects, func(items []models.Project) map[string][]models.Project {
			return engine.GroupBy(items, func(p models.Project) string { return p.Status })
		}),
		CompletedReports: engine.NewView(r.Reports, func(items []models.Report) []models.Report {
			return engine.Matching(items, func(rep models.Report) bool { return rep.Status == "completed" })
		}),
		RecentReports: engine.NewView(r.Reports, func(items []models.Report) []models.Report {
			return engine.TopN(items, 5, func(a, b models.Report) bool {
				return a.CreatedAt.After(b.CreatedAt)
			})
		}),
	}
}
