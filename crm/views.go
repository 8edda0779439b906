// ABOUTME: Derived views over the CRM collections
// ABOUTME: Memoized projections for dashboards, recomputed per collection version
package crm

import (
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// HighScoreThreshold marks a contact as a priority target.
const HighScoreThreshold = 80

// Views bundles the CRM module's memoized projections.
type Views struct {
	ActiveContacts    *engine.View[models.Contact, []models.Contact]
	HighScoreContacts *engine.View[models.Contact, []models.Contact]
	RecentContacts    *engine.View[models.Contact, []models.Contact]
	DealsByStage      *engine.View[models.Deal, map[string][]models.Deal]
	OpenDeals         *engine.View[models.Deal, []models.Deal]
	OverdueActivities *engine.View[models.Activity, []models.Activity]
	Unread            *engine.View[models.Notification, []models.Notification]
}

// NewViews builds the derived views for c.
func NewViews(c *CRM) *Views {
	return &Views{
		ActiveContacts: engine.NewView(c.Contacts, func(items []models.Contact) []models.Contact {
			return engine.Matching(items, func(ct models.Contact) bool {
				return ct.Status == models.ContactCustomer || ct.Status == models.ContactProspect
			})
		}),
		HighScoreContacts: engine.NewView(c.Contacts, func(items []models.Contact) []models.Contact {
			return engine.Matching(items, func(ct models.Contact) bool {
				return ct.Score >= HighScoreThreshold
			})
		}),
		RecentContacts: engine.NewView(c.Contacts, func(items []models.Contact) []models.Contact {
			return engine.TopN(items, 5, func(a, b models.Contact) bool {
				return a.CreatedAt.After(b.CreatedAt)
			})
		}),
		DealsByStage: engine.NewView(c.Deals, func(items []models.Deal) map[string][]models.Deal {
			return engine.GroupBy(items, func(d models.Deal) string { return d.Stage })
		}),
		OpenDeals: engine.NewView(c.Deals, func(items []models.Deal) []models.Deal {
			return engine.Matching(items, func(d models.Deal) bool {
				return d.Stage != models.StageClosedWon && d.Stage != models.StageClosedLost
			})
		}),
		OverdueActivities: engine.NewView(c.Activities, func(items []models.Activity) []models.Activity {
			return engine.Matching(items, func(a models.Activity) bool {
				return a.Status == models.ActivityOverdue
			})
		}),
		Unread: engine.NewView(c.Notifications, func(items []models.Notification) []models.Notification {
			return engine.Matching(items, func(n models.Notification) bool { return !n.Read })
		}),
	}
}
