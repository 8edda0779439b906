// ABOUTME: Social module configuration for the sync engine
// ABOUTME: Binds connected accounts, posts, and stats to the backend command set
package social

import (
	"context"
	"sync"

	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/models"
)

// Filters is the social module's filter record.
type Filters struct {
	Platform   string
	PostStatus string
	Search     string
}

type postsFilter struct {
	Platform string `json:"platform,omitempty"`
	Status   string `json:"status,omitempty"`
	Search   string `json:"search,omitempty"`
}

func (f postsFilter) Key() string {
	if f.Platform == "" && f.Status == "" && f.Search == "" {
		return "all"
	}
	return "platform=" + f.Platform + "&status=" + f.Status + "&q=" + f.Search
}

type byID struct {
	ID string `json:"id"`
}

// Social is the hook surface for the social UI.
type Social struct {
	mod *engine.Module

	mu      sync.Mutex
	filters Filters

	Accounts      *engine.Collection[models.Account]
	Posts         *engine.Collection[models.Post]
	Notifications *engine.Collection[models.Notification]
	Stats         *engine.Value[models.SocialStats]
}

// New wires the social module.
func New(deps engine.Deps) *Social {
	s := &Social{mod: engine.New("social", deps)}

	s.Stats = engine.NewValue[models.SocialStats](s.mod, "stats", "social_get_stats")

	s.Accounts = engine.NewCollection[models.Account](s.mod, "accounts", "social_get_accounts",
		engine.WithInvalidates[models.Account](s.Stats.CacheKey()))
	s.Posts = engine.NewCollection[models.Post](s.mod, "posts", "social_get_posts",
		engine.WithInvalidates[models.Post](s.Stats.CacheKey()),
		engine.WithFilterFunc[models.Post](func() engine.Filter {
			f := s.Filters()
			return postsFilter{Platform: f.Platform, Status: f.PostStatus, Search: f.Search}
		}))
	s.Notifications = engine.NewCollection[models.Notification](s.mod, "notifications", "social_get_notifications")

	engine.BindUpdated(s.mod, "social-account-updated", s.Accounts)
	engine.BindCreated(s.mod, "social-post-created", s.Posts)
	engine.BindUpdated(s.mod, "social-post-updated", s.Posts)
	engine.BindCreated(s.mod, "social-notification", s.Notifications)
	s.mod.BindRefresh("social-refresh")

	s.mod.BindFilter("platform", s.Posts)
	s.mod.BindFilter("post_status", s.Posts)
	s.mod.BindFilter("search", s.Posts)

	return s
}

func (s *Social) Activate(ctx context.Context) { s.mod.Activate(ctx) }
func (s *Social) Deactivate()                  { s.mod.Deactivate() }
func (s *Social) Refresh(ctx context.Context)  { s.mod.Refresh(ctx) }

// Filters returns the current filter record.
func (s *Social) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Social) SetPlatform(ctx context.Context, platform string) {
	s.mu.Lock()
	s.filters.Platform = platform
	s.mu.Unlock()
	s.mod.FilterChanged(ctx, "platform")
}

func (s *Social) SetPostStatus(ctx context.Context, status string) {
	s.mu.Lock()
	s.filters.PostStatus = status
	s.mu.Unlock()
	s.mod.FilterChanged(ctx, "post_status")
}

func (s *Social) SetSearch(ctx context.Context, search string) {
	s.mu.Lock()
	s.filters.Search = search
	s.mu.Unlock()
	s.mod.FilterChanged(ctx, "search")
}

// ConnectAccountInput is the connect command's payload.
type ConnectAccountInput struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

func (s *Social) ConnectAccount(ctx context.Context, in ConnectAccountInput) (models.Account, error) {
	return s.Accounts.Create(ctx, "social_connect_account", in)
}

func (s *Social) DisconnectAccount(ctx context.Context, id string) (bool, error) {
	return s.Accounts.Delete(ctx, "social_disconnect_account", byID{ID: id}, id)
}

// SyncAccount pulls fresh follower and engagement numbers for one account.
func (s *Social) SyncAccount(ctx context.Context, id string) (models.Account, error) {
	return s.Accounts.Update(ctx, "social_sync_account", byID{ID: id})
}

// CreatePostInput is the create command's payload.
type CreatePostInput struct {
	AccountID string   `json:"account_id,omitempty"`
	Platform  string   `json:"platform"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

func (s *Social) CreatePost(ctx context.Context, in CreatePostInput) (models.Post, error) {
	return s.Posts.Create(ctx, "social_create_post", in)
}

// UpdatePostInput is the update command's payload.
type UpdatePostInput struct {
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
}

func (s *Social) UpdatePost(ctx context.Context, in UpdatePostInput) (models.Post, error) {
	return s.Posts.Update(ctx, "social_update_post", in)
}

func (s *Social) DeletePost(ctx context.Context, id string) (bool, error) {
	return s.Posts.Delete(ctx, "social_delete_post", byID{ID: id}, id)
}

// SchedulePost queues a post for publication at when (RFC 3339).
func (s *Social) SchedulePost(ctx context.Context, id, when string) (models.Post, error) {
	return s.Posts.Update(ctx, "social_schedule_post", struct {
		ID          string `json:"id"`
		ScheduledAt string `json:"scheduled_at"`
	}{ID: id, ScheduledAt: when})
}

// PublishPost publishes immediately.
func (s *Social) PublishPost(ctx context.Context, id string) (models.Post, error) {
	return s.Posts.Update(ctx, "social_publish_post", byID{ID: id})
}
