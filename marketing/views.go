// ABOUTME: Derived views over the marketing collections
// ABOUTME: Hot-lead and campaign projections for the marketing dashboard
package marketing

import (
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// HotLeadThreshold is the score at which a lead counts as hot.
const HotLeadThreshold = 80

// Views bundles the marketing module's memoized projections.
type Views struct {
	ActiveCampaigns *engine.View[models.Campaign, []models.Campaign]
	HotLeads        *engine.View[models.Lead, []models.Lead]
	LeadsByStage    *engine.View[models.Lead, map[string][]models.Lead]
	RecentLeads     *engine.View[models.Lead, []models.Lead]
}

// NewViews builds the derived views for m.
func NewViews(m *Marketing) *Views {
	return &Views{
		ActiveCampaigns: engine.NewView(m.Campaigns, func(items []models.Campaign) []models.Campaign {
			return engine.Matching(items, func(c models.Campaign) bool {
				return c.Status == models.CampaignActive || c.Status == models.CampaignScheduled
			})
		}),
		HotLeads: engine.NewView(m.Leads, func(items []models.Lead) []models.Lead {
			return engine.Matching(items, func(l models.Lead) bool { return l.Score >= HotLeadThreshold })
		}),
		LeadsByStage: engine.NewView(m.Leads, func(items []models.Lead) map[string][]models.Lead {
			return engine.GroupBy(items, func(l models.Lead) string { return l.Stage })
		}),
		RecentLeads: engine.NewView(m.Leads, func(items []models.Lead) []models.Lead {
			return engine.TopN(items, 10, func(a, b models.Lead) bool {
				return a.CreatedAt.After(b.CreatedAt)
			})
		}),
	}
}
