// ABOUTME: CRM entity models shared by the sync engine and the local bridge
// ABOUTME: Defines Contact, Company, Deal, Activity, and CRM stats structures
package models

import "time"

// Contact statuses.
const (
	ContactLead     = "lead"
	ContactProspect = "prospect"
	ContactCustomer = "customer"
	ContactChurned  = "churned"
)

// Deal stages.
const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

// Activity statuses.
const (
	ActivityPending   = "pending"
	ActivityCompleted = "completed"
	ActivityOverdue   = "overdue"
	ActivityCancelled = "cancelled"
)

type Contact struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CompanyID string     `json:"company_id,omitempty"`
	Company   string     `json:"company,omitempty"`
	Position  string     `json:"position,omitempty"`
	Status    string     `json:"status"`
	Score     int        `json:"score"`
	Favorite  bool       `json:"favorite"`
	Tags      []string   `json:"tags,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c Contact) EntityID() string { return c.ID }

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Industry  string    `json:"industry,omitempty"`
	Size      string    `json:"size,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Company) EntityID() string { return c.ID }

type Deal struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Amount            int64      `json:"amount,omitempty"` // in cents
	Currency          string     `json:"currency"`
	Stage             string     `json:"stage"`
	Probability       int        `json:"probability"`
	CompanyID         string     `json:"company_id,omitempty"`
	ContactID         string     `json:"contact_id,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastActivityAt    time.Time  `json:"last_activity_at"`
}

func (d Deal) EntityID() string { return d.ID }

type Activity struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"` // call, email, meeting, task, note
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ContactID   string     `json:"contact_id,omitempty"`
	DealID      string     `json:"deal_id,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a Activity) EntityID() string { return a.ID }

// CRMStats is the aggregate block shown on the CRM dashboard.
type CRMStats struct {
	TotalContacts  int   `json:"total_contacts"`
	TotalCompanies int   `json:"total_companies"`
	TotalDeals     int   `json:"total_deals"`
	OpenDeals      int   `json:"open_deals"`
	PipelineValue  int64 `json:"pipeline_value"`
	WonValue       int64 `json:"won_value"`
}
