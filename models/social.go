// ABOUTME: Social entity models for connected accounts and posts
// ABOUTME: Mirrors the backend social command payloads
package models

import "time"

// Post statuses.
const (
	PostDraft     = "draft"
	PostScheduled = "scheduled"
	PostPublished = "published"
	PostFailed    = "failed"
)

type Account struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"` // twitter, linkedin, instagram, ...
	Handle      string     `json:"handle"`
	DisplayName string     `json:"display_name,omitempty"`
	Connected   bool       `json:"connected"`
	Followers   int        `json:"followers"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a Account) EntityID() string { return a.ID }

type Post struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id,omitempty"`
	Platform    string     `json:"platform"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	MediaURLs   []string   `json:"media_urls,omitempty"`
	Likes       int        `json:"likes"`
	Shares      int        `json:"shares"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p Post) EntityID() string { return p.ID }

// SocialStats is the aggregate block for the social dashboard.
type SocialStats struct {
	ConnectedAccounts int `json:"connected_accounts"`
	TotalPosts        int `json:"total_posts"`
	ScheduledPosts    int `json:"scheduled_posts"`
	TotalFollowers    int `json:"total_followers"`
	EngagementTotal   int `json:"engagement_total"`
}
