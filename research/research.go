// ABOUTME: Research module configuration for the sync engine
// ABOUTME: Binds projects, reports, competitors, and stats to the backend command set
package research

import (
	"context"
	"sync"

	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Filters is the research module's filter record.
type Filters struct {
	ProjectStatus string
	ProjectType   string
	Search        string
}

type projectsFilter struct {
	Status string `json:"status,omitempty"`
	Type   string `json:"type,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f projectsFilter) Key() string {
	if f.Status == "" && f.Type == "" && f.Search == "" {
		return "all"
	}
	return "status=" + f.Status + "&type=" + f.Type + "&q=" + f.Search
}

type byID struct {
	ID string `json:"id"`
}

// Research is the hook surface for the research UI.
type Research struct {
	mod *engine.Module

	mu      sync.Mutex
	filters Filters

	Projects      *engine.Collection[models.Project]
	Reports       *engine.Collection[models.Report]
	Competitors   *engine.Collection[models.Competitor]
	Notifications *engine.Collection[models.Notification]
	Stats         *engine.Value[models.ResearchStats]
}

// New wires the research module.
func New(deps engine.Deps) *Research {
	r := &Research{mod: engine.New("research", deps)}

	r.Stats = engine.NewValue[models.ResearchStats](r.mod, "stats", "research_get_stats")

	r.Projects = engine.NewCollection[models.Project](r.mod, "projects", "research_get_projects",
		engine.WithInvalidates[models.Project](r.Stats.CacheKey()),
		engine.WithFilterFunc[models.Project](func() engine.Filter {
			f := r.Filters()
			return projectsFilter{Status: f.ProjectStatus, Type: f.ProjectType, Search: f.Search}
		}))
	r.Reports = engine.NewCollection[models.Report](r.mod, "reports", "research_get_reports",
		engine.WithInvalidates[models.Report](r.Stats.CacheKey()))
	r.Competitors = engine.NewCollection[models.Competitor](r.mod, "competitors", "research_get_competitors",
		engine.WithInvalidates[models.Competitor](r.Stats.CacheKey()))
	r.Notifications = engine.NewCollection[models.Notification](r.mod, "notifications", "research_get_notifications")

	engine.BindCreated(r.mod, "research-project-created", r.Projects)
	engine.BindUpdated(r.mod, "research-project-updated", r.Projects)
	engine.BindCreated(r.mod, "research-report-created", r.Reports)
	engine.BindCreated(r.mod, "research-notification", r.Notifications)
	r.mod.BindRefresh("research-refresh")

	r.mod.BindFilter("project_status", r.Projects)
	r.mod.BindFilter("project_type", r.Projects)
	r.mod.BindFilter("search", r.Projects)

	return r
}

func (r *Research) Activate(ctx context.Context) { r.mod.Activate(ctx) }
func (r *Research) Deactivate()                  { r.mod.Deactivate() }
func (r *Research) Refresh(ctx context.Context)  { r.mod.Refresh(ctx) }

// Filters returns the current filter record.
func (r *Research) Filters() Filters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filters
}

func (r *Research) SetProjectStatus(ctx context.Context, status string) {
	r.mu.Lock()
	r.filters.ProjectStatus = status
	r.mu.Unlock()
	r.mod.FilterChanged(ctx, "project_status")
}

func (r *Research) SetProjectType(ctx context.Context, typ string) {
	r.mu.Lock()
	r.filters.ProjectType = typ
	r.mu.Unlock()
	r.mod.FilterChanged(ctx, "project_type")
}

func (r *Research) SetSearch(ctx context.Context, search string) {
	r.mu.Lock()
	r.filters.Search = search
	r.mu.Unlock()
	r.mod.FilterChanged(ctx, "search")
}

// CreateProjectInput is the create command's payload.
type CreateProjectInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Query string `json:"query,omitempty"`
}

func (r *Research) CreateProject(ctx context.Context, in CreateProjectInput) (models.Project, error) {
	return r.Projects.Create(ctx, "research_create_project", in)
}

// UpdateProjectInput is the update command's payload.
type UpdateProjectInput struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Query string `json:"query,omitempty"`
}

func (r *Research) UpdateProject(ctx context.Context, in UpdateProjectInput) (models.Project, error) {
	return r.Projects.Update(ctx, "research_update_project", in)
}

func (r *Research) DeleteProject(ctx context.Context, id string) (bool, error) {
	return r.Projects.Delete(ctx, "research_delete_project", byID{ID: id}, id)
}

// RunProject starts a research run; the backend returns the project with its
// status moved to running.
func (r *Research) RunProject(ctx context.Context, id string) (models.Project, error) {
	return r.Projects.Update(ctx, "research_run_project", byID{ID: id})
}

// AddCompetitorInput is the add command's payload.
type AddCompetitorInput struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Domain    string `json:"domain,omitempty"`
}

func (r *Research) AddCompetitor(ctx context.Context, in AddCompetitorInput) (models.Competitor, error) {
	return r.Competitors.Create(ctx, "research_add_competitor", in)
}

func (r *Research) RemoveCompetitor(ctx context.Context, id string) (bool, error) {
	return r.Competitors.Delete(ctx, "research_remove_competitor", byID{ID: id}, id)
}

// GenerateReport asks the backend for a new report over a project's sources.
func (r *Research) GenerateReport(ctx context.Context, projectID string) (models.Report, error) {
	return r.Reports.Create(ctx, "research_generate_report", struct {
		ProjectID string `json:"project_id"`
	}{ProjectID: projectID})
}
