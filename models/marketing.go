// ABOUTME: Marketing entity models for campaigns, leads, templates, and segments
// ABOUTME: Mirrors the backend marketing command payloads
package models

import "time"

// Campaign statuses.
const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignActive    = "active"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
)

// Lead stages.
const (
	LeadNew       = "new"
	LeadWarm      = "warm"
	LeadHot       = "hot"
	LeadQualified = "qualified"
	LeadConverted = "converted"
	LeadLost      = "lost"
)

type Campaign struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"` // email, social, ads
	Status      string     `json:"status"`
	Subject     string     `json:"subject,omitempty"`
	Budget      int64      `json:"budget,omitempty"`
	Sent        int        `json:"sent"`
	Opened      int        `json:"opened"`
	Clicked     int        `json:"clicked"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (c Campaign) EntityID() string { return c.ID }

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Source    string    `json:"source,omitempty"`
	Stage     string    `json:"stage"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l Lead) EntityID() string { return l.ID }

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Template) EntityID() string { return t.ID }

type Segment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Criteria  string    `json:"criteria,omitempty"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Segment) EntityID() string { return s.ID }

// MarketingStats is the aggregate block for the marketing dashboard.
type MarketingStats struct {
	TotalCampaigns  int     `json:"total_campaigns"`
	ActiveCampaigns int     `json:"active_campaigns"`
	TotalLeads      int     `json:"total_leads"`
	HotLeads        int     `json:"hot_leads"`
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
}
