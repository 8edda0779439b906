// ABOUTME: CRM module configuration for the sync engine
// ABOUTME: Binds contacts, companies, deals, activities, and stats to the backend command set
package crm

import (
	"context"
	"sync"

	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Filters is the CRM module's filter record. Distinct values are distinct
// cache partitions.
type Filters struct {
	ContactStatus string
	DealStage     string
	Search        string
}

type contactsFilter struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f contactsFilter) Key() string {
	if f.Status == "" && f.Search == "" {
		return "all"
	}
	return "status=" + f.Status + "&q=" + f.Search
}

type dealsFilter struct {
	Stage  string `json:"stage,omitempty"`
	Search string `json:"search,omitempty"`
}

func (f dealsFilter) Key() string {
	if f.Stage == "" && f.Search == "" {
		return "all"
	}
	return "stage=" + f.Stage + "&q=" + f.Search
}

type byID struct {
	ID string `json:"id"`
}

// CRM is the hook surface the CRM UI consumes: observable collections, the
// stats aggregate, action methods, and derived views.
type CRM struct {
	mod *engine.Module

	mu      sync.Mutex
	filters Filters

	Contacts      *engine.Collection[models.Contact]
	Companies     *engine.Collection[models.Company]
	Deals         *engine.Collection[models.Deal]
	Activities    *engine.Collection[models.Activity]
	Notifications *engine.Collection[models.Notification]
	Stats         *engine.Value[models.CRMStats]
}

// New wires the CRM module. Call Activate to start realtime and the refresh
// timer, Deactivate on unmount.
func New(deps engine.Deps) *CRM {
	c := &CRM{mod: engine.New("crm", deps)}

	c.Stats = engine.NewValue[models.CRMStats](c.mod, "stats", "crm_get_stats")

	c.Contacts = engine.NewCollection[models.Contact](c.mod, "contacts", "crm_get_contacts",
		engine.WithInvalidates[models.Contact](c.Stats.CacheKey()),
		engine.WithFilterFunc[models.Contact](func() engine.Filter {
			f := c.Filters()
			return contactsFilter{Status: f.ContactStatus, Search: f.Search}
		}))
	c.Companies = engine.NewCollection[models.Company](c.mod, "companies", "crm_get_companies",
		engine.WithInvalidates[models.Company](c.Stats.CacheKey()))
	c.Deals = engine.NewCollection[models.Deal](c.mod, "deals", "crm_get_deals",
		engine.WithInvalidates[models.Deal](c.Stats.CacheKey()),
		engine.WithFilterFunc[models.Deal](func() engine.Filter {
			f := c.Filters()
			return dealsFilter{Stage: f.DealStage, Search: f.Search}
		}))
	c.Activities = engine.NewCollection[models.Activity](c.mod, "activities", "crm_get_activities",
		engine.WithInvalidates[models.Activity](c.Stats.CacheKey()))
	c.Notifications = engine.NewCollection[models.Notification](c.mod, "notifications", "crm_get_notifications")

	engine.BindCreated(c.mod, "crm-contact-created", c.Contacts)
	engine.BindUpdated(c.mod, "crm-contact-updated", c.Contacts)
	engine.BindCreated(c.mod, "crm-deal-created", c.Deals)
	engine.BindUpdated(c.mod, "crm-deal-updated", c.Deals)
	engine.BindUpdated(c.mod, "crm-activity-updated", c.Activities)
	engine.BindCreated(c.mod, "crm-notification", c.Notifications)
	c.mod.BindRefresh("crm-refresh")

	c.mod.BindFilter("contact_status", c.Contacts)
	c.mod.BindFilter("deal_stage", c.Deals)
	c.mod.BindFilter("search", c.Contacts, c.Deals)

	return c
}

// Activate subscribes push topics and starts the refresh timer.
func (c *CRM) Activate(ctx context.Context) { c.mod.Activate(ctx) }

// Deactivate releases subscriptions and timers; late responses become no-ops.
func (c *CRM) Deactivate() { c.mod.Deactivate() }

// Refresh drops the module's cache partitions and refetches everything.
func (c *CRM) Refresh(ctx context.Context) { c.mod.Refresh(ctx) }

// Filters returns the current filter record.
func (c *CRM) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetContactStatus narrows the contacts partition and refetches it.
func (c *CRM) SetContactStatus(ctx context.Context, status string) {
	c.mu.Lock()
	c.filters.ContactStatus = status
	c.mu.Unlock()
	c.mod.FilterChanged(ctx, "contact_status")
}

// SetDealStage narrows the deals partition and refetches it.
func (c *CRM) SetDealStage(ctx context.Context, stage string) {
	c.mu.Lock()
	c.filters.DealStage = stage
	c.mu.Unlock()
	c.mod.FilterChanged(ctx, "deal_stage")
}

// SetSearch refetches every collection that depends on the search text.
func (c *CRM) SetSearch(ctx context.Context, search string) {
	c.mu.Lock()
	c.filters.Search = search
	c.mu.Unlock()
	c.mod.FilterChanged(ctx, "search")
}

// CreateContactInput is the create command's payload.
type CreateContactInput struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Position  string `json:"position,omitempty"`
	Status    string `json:"status,omitempty"`
}

// UpdateContactInput is the update command's payload.
type UpdateContactInput struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
	Status   string `json:"status,omitempty"`
	Score    *int   `json:"score,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (c *CRM) CreateContact(ctx context.Context, in CreateContactInput) (models.Contact, error) {
	return c.Contacts.Create(ctx, "crm_create_contact", in)
}

func (c *CRM) UpdateContact(ctx context.Context, in UpdateContactInput) (models.Contact, error) {
	return c.Contacts.Update(ctx, "crm_update_contact", in)
}

func (c *CRM) DeleteContact(ctx context.Context, id string) (bool, error) {
	return c.Contacts.Delete(ctx, "crm_delete_contact", byID{ID: id}, id)
}

// ToggleFavorite flips a contact's favorite flag.
func (c *CRM) ToggleFavorite(ctx context.Context, id string) (models.Contact, error) {
	return c.Contacts.Update(ctx, "crm_toggle_favorite", byID{ID: id})
}

// CreateCompanyInput is the create command's payload.
type CreateCompanyInput struct {
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`
	Size     string `json:"size,omitempty"`
}

func (c *CRM) CreateCompany(ctx context.Context, in CreateCompanyInput) (models.Company, error) {
	return c.Companies.Create(ctx, "crm_create_company", in)
}

func (c *CRM) DeleteCompany(ctx context.Context, id string) (bool, error) {
	return c.Companies.Delete(ctx, "crm_delete_company", byID{ID: id}, id)
}

// CreateDealInput is the create command's payload.
type CreateDealInput struct {
	Title     string `json:"title"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Stage     string `json:"stage,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
}

func (c *CRM) CreateDeal(ctx context.Context, in CreateDealInput) (models.Deal, error) {
	return c.Deals.Create(ctx, "crm_create_deal", in)
}

// UpdateDealStage advances a deal through the pipeline.
func (c *CRM) UpdateDealStage(ctx context.Context, id, stage string) (models.Deal, error) {
	return c.Deals.Update(ctx, "crm_update_deal_stage", struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
	}{ID: id, Stage: stage})
}

func (c *CRM) DeleteDeal(ctx context.Context, id string) (bool, error) {
	return c.Deals.Delete(ctx, "crm_delete_deal", byID{ID: id}, id)
}

// CreateActivityInput is the create command's payload.
type CreateActivityInput struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	ContactID string `json:"contact_id,omitempty"`
	DealID    string `json:"deal_id,omitempty"`
	Priority  string `json:"priority,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
}

func (c *CRM) CreateActivity(ctx context.Context, in CreateActivityInput) (models.Activity, error) {
	return c.Activities.Create(ctx, "crm_create_activity", in)
}

// CompleteActivity marks an activity done.
func (c *CRM) CompleteActivity(ctx context.Context, id string) (models.Activity, error) {
	return c.Activities.Update(ctx, "crm_complete_activity", byID{ID: id})
}

func (c *CRM) DeleteActivity(ctx context.Context, id string) (bool, error) {
	return c.Activities.Delete(ctx, "crm_delete_activity", byID{ID: id}, id)
}
