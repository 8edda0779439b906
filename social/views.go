// ABOUTME: Derived views over the social collections
package social

import (
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Views bundles the social module's memoized projections.
type Views struct {
	ConnectedAccounts *engine.View[models.Account, []models.Account]
	ScheduledPosts    *engine.View[models.Post, []models.Post]
	PublishedPosts    *engine.View[models.Post, []models.Post]
	PostsByPlatform   *engine.View[models.Post, map[string][]models.Post]
}

// NewViews builds the derived views for s.
func NewViews(s *Social) *Views {
	return &Views{
		ConnectedAccounts: engine.NewView(s.Accounts, func(items []models.Account) []models.Account {
			return engine.Matching(items, func(a models.Account) bool { return a.Connected })
		}),
		ScheduledPosts: engine.NewView(s.Posts, func(items []models.Post) []models.Post {
			return engine.Matching(items, func(p models.Post) bool { return p.Status == models.PostScheduled })
		}),
		PublishedPosts: engine.NewView(s.Posts, func(items []models.Post) []models.Post {
			return engine.Matching(items, func(p models.Post) bool { return p.Status == models.PostPublished })
		}),
		PostsByPlatform: engine.NewView(s.Posts, func(items []models.Post) map[string][]models.Post {
			return engine.GroupBy(items, func(p models.Post) string { return p.Platform })
		}),
	}
}
