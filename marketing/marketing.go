// ABOUTME: Marketing module configuration for the sync engine
// ABOUTME: Binds campaigns, leads, templates, segments, and stats to the backend command set
package marketing

import (
	"context"
	"sync"

	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Filters is the marketing module's filter record.
type Filters struct {
	CampaignStatus string
	LeadStage      string
	Search         string
}

type campaignsFilter struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f campaignsFilter) Key() string {
	if f.Status == "" && f.Search == "" {
		return "all"
	}
	return "status=" + f.Status + "&q=" + f.Search
}

type leadsFilter struct {
	Stage  string `json:"stage,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f leadsFilter) Key() string {
	if f.Stage == "" && f.Search == "" {
		return "all"
	}
	return "stage=" + f.Stage + "&q=" + f.Search
}

type byID struct {
	ID string `json:"id"`
}

// Marketing is the hook surface for the marketing UI.
type Marketing struct {
	mod *engine.Module

	mu      sync.Mutex
	filters Filters

	Campaigns     *engine.Collection[models.Campaign]
	Leads         *engine.Collection[models.Lead]
	Templates     *engine.Collection[models.Template]
	Segments      *engine.Collection[models.Segment]
	Notifications *engine.Collection[models.Notification]
	Stats         *engine.Value[models.MarketingStats]
}

// New wires the marketing module.
func New(deps engine.Deps) *Marketing {
	m := &Marketing{mod: engine.New("marketing", deps)}

	m.Stats = engine.NewValue[models.MarketingStats](m.mod, "stats", "marketing_get_stats")

	m.Campaigns = engine.NewCollection[models.Campaign](m.mod, "campaigns", "marketing_get_campaigns",
		engine.WithInvalidates[models.Campaign](m.Stats.CacheKey()),
		engine.WithFilterFunc[models.Campaign](func() engine.Filter {
			f := m.Filters()
			return campaignsFilter{Status: f.CampaignStatus, Search: f.Search}
		}))
	m.Leads = engine.NewCollection[models.Lead](m.mod, "leads", "marketing_get_leads",
		engine.WithInvalidates[models.Lead](m.Stats.CacheKey()),
		engine.WithFilterFunc[models.Lead](func() engine.Filter {
			f := m.Filters()
			return leadsFilter{Stage: f.LeadStage, Search: f.Search}
		}))
	m.Templates = engine.NewCollection[models.Template](m.mod, "templates", "marketing_get_templates")
	m.Segments = engine.NewCollection[models.Segment](m.mod, "segments", "marketing_get_segments")
	m.Notifications = engine.NewCollection[models.Notification](m.mod, "notifications", "marketing_get_notifications")

	engine.BindCreated(m.mod, "marketing-campaign-created", m.Campaigns)
	engine.BindUpdated(m.mod, "marketing-campaign-updated", m.Campaigns)
	engine.BindCreated(m.mod, "marketing-lead-created", m.Leads)
	engine.BindUpdated(m.mod, "marketing-lead-updated", m.Leads)
	engine.BindCreated(m.mod, "marketing-notification", m.Notifications)
	m.mod.BindRefresh("marketing-refresh")

	m.mod.BindFilter("campaign_status", m.Campaigns)
	m.mod.BindFilter("lead_stage", m.Leads)
	m.mod.BindFilter("search", m.Campaigns, m.Leads)

	return m
}

func (m *Marketing) Activate(ctx context.Context) { m.mod.Activate(ctx) }
func (m *Marketing) Deactivate()                  { m.mod.Deactivate() }
func (m *Marketing) Refresh(ctx context.Context)  { m.mod.Refresh(ctx) }

// Filters returns the current filter record.
func (m *Marketing) Filters() Filters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters
}

func (m *Marketing) SetCampaignStatus(ctx context.Context, status string) {
	m.mu.Lock()
	m.filters.CampaignStatus = status
	m.mu.Unlock()
	m.mod.FilterChanged(ctx, "campaign_status")
}

func (m *Marketing) SetLeadStage(ctx context.Context, stage string) {
	m.mu.Lock()
	m.filters.LeadStage = stage
	m.mu.Unlock()
	m.mod.FilterChanged(ctx, "lead_stage")
}

func (m *Marketing) SetSearch(ctx context.Context, search string) {
	m.mu.Lock()
	m.filters.Search = search
	m.mu.Unlock()
	m.mod.FilterChanged(ctx, "search")
}

// CreateCampaignInput is the create command's payload.
type CreateCampaignInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Subject string `json:"subject,omitempty"`
	Budget  int64  `json:"budget,omitempty"`
}

func (m *Marketing) CreateCampaign(ctx context.Context, in CreateCampaignInput) (models.Campaign, error) {
	return m.Campaigns.Create(ctx, "marketing_create_campaign", in)
}

// UpdateCampaignInput is the update command's payload.
type UpdateCampaignInput struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Subject string `json:"subject,omitempty"`
	Status  string `json:"status,omitempty"`
	Budget  *int64 `json:"budget,omitempty"`
}

func (m *Marketing) UpdateCampaign(ctx context.Context, in UpdateCampaignInput) (models.Campaign, error) {
	return m.Campaigns.Update(ctx, "marketing_update_campaign", in)
}

func (m *Marketing) DeleteCampaign(ctx context.Context, id string) (bool, error) {
	return m.Campaigns.Delete(ctx, "marketing_delete_campaign", byID{ID: id}, id)
}

// SendCampaign kicks off delivery; the backend returns the campaign with its
// status moved to active.
func (m *Marketing) SendCampaign(ctx context.Context, id string) (models.Campaign, error) {
	return m.Campaigns.Update(ctx, "marketing_send_campaign", byID{ID: id})
}

// CreateLeadInput is the create command's payload.
type CreateLeadInput struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Source string `json:"source,omitempty"`
}

func (m *Marketing) CreateLead(ctx context.Context, in CreateLeadInput) (models.Lead, error) {
	return m.Leads.Create(ctx, "marketing_create_lead", in)
}

// UpdateLeadScore sets a lead's score.
func (m *Marketing) UpdateLeadScore(ctx context.Context, id string, score int) (models.Lead, error) {
	return m.Leads.Update(ctx, "marketing_update_lead_score", struct {
		ID    string `json:"id"`
		Score int    `json:"score"`
	}{ID: id, Score: score})
}

// MoveLeadStage advances a lead through the funnel.
func (m *Marketing) MoveLeadStage(ctx context.Context, id, stage string) (models.Lead, error) {
	return m.Leads.Update(ctx, "marketing_move_lead_stage", struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
	}{ID: id, Stage: stage})
}

// CreateTemplateInput is the create command's payload.
type CreateTemplateInput struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body,omitempty"`
}

func (m *Marketing) CreateTemplate(ctx context.Context, in CreateTemplateInput) (models.Template, error) {
	return m.Templates.Create(ctx, "marketing_create_template", in)
}

func (m *Marketing) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	return m.Templates.Delete(ctx, "marketing_delete_template", byID{ID: id}, id)
}

// CreateSegmentInput is the create command's payload.
type CreateSegmentInput struct {
	Name     string `json:"name"`
	Criteria string `json:"criteria,omitempty"`
}

func (m *Marketing) CreateSegment(ctx context.Context, in CreateSegmentInput) (models.Segment, error) {
	return m.Segments.Create(ctx, "marketing_create_segment", in)
}

func (m *Marketing) DeleteSegment(ctx context.Context, id string) (bool, error) {
	return m.Segments.Delete(ctx, "marketing_delete_segment", byID{ID: id}, id)
}
