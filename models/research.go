// ABOUTME: Research entity models for projects, reports, and competitors
// ABOUTME: Mirrors the backend research command payloads
package models

import "time"

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectRunning   = "running"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"` // market, competitor, trend
	Status      string     `json:"status"`
	Query       string     `json:"query,omitempty"`
	SourceCount int        `json:"source_count"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p Project) EntityID() string { return p.ID }

type Report struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"` // generating, completed
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Report) EntityID() string { return r.ID }

type Competitor struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"project_id"`
	Name       string     `json:"name"`
	Domain     string     `json:"domain,omitempty"`
	Score      int        `json:"score"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c Competitor) EntityID() string { return c.ID }

// ResearchStats is the aggregate block for the research dashboard.
type ResearchStats struct {
	TotalProjects    int `json:"total_projects"`
	ActiveProjects   int `json:"active_projects"`
	TotalReports     int `json:"total_reports"`
	TotalCompetitors int `json:"total_competitors"`
}
