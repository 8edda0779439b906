// ABOUTME: Automation entity models for flows and flow executions
// ABOUTME: Mirrors the backend automation command payloads
package models

import "time"

// Flow statuses.
const (
	FlowEnabled  = "enabled"
	FlowDisabled = "disabled"
)

// Execution statuses.
const (
	ExecutionRunning   = "running"
	ExecutionCompleted = "completed"
	ExecutionFailed    = "failed"
	ExecutionCancelled = "cancelled"
)

type Flow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Trigger     string    `json:"trigger,omitempty"` // manual, schedule, event
	StepCount   int       `json:"step_count"`
	RunCount    int       `json:"run_count"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f Flow) EntityID() string { return f.ID }

type Execution struct {
	ID         string     `json:"id"`
	FlowID     string     `json:"flow_id"`
	FlowName   string     `json:"flow_name,omitempty"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (e Execution) EntityID() string { return e.ID }

// AutomationStats is the aggregate block for the automation dashboard.
type AutomationStats struct {
	TotalFlows     int `json:"total_flows"`
	EnabledFlows   int `json:"enabled_flows"`
	TotalRuns      int `json:"total_runs"`
	RunningNow     int `json:"running_now"`
	FailedLastWeek int `json:"failed_last_week"`
}
