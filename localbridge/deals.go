// ABOUTME: Deal command handlers for the local bridge
// ABOUTME: Implements list, create, stage moves, and delete over SQLite
package localbridge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/officesync/models"
)

type dealsQuery struct {
	Stage  string `json:"stage,omitempty"`
	Search string `json:"search,omitempty"`
}

type createDealInput struct {
	Title     string `json:"title"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Stage     string `json:"stage,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
}

type updateDealStageInput struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
}

// stageProbability maps a pipeline stage to its default win probability.
var stageProbability = map[string]int{
	models.StageLead:        10,
	models.StageQualified:   25,
	models.StageProposal:    50,
	models.StageNegotiation: 75,
	models.StageClosedWon:   100,
	models.StageClosedLost:  0,
}

const dealColumns = `id, title, amount, currency, stage, probability, company_id, contact_id, expected_close_date, created_at, updated_at, last_activity_at`

func scanDeal(row interface{ Scan(...any) error }) (models.Deal, error) {
	var d models.Deal
	var amount sql.NullInt64
	var companyID, contactID sql.NullString
	var closeDate sql.NullTime
	err := row.Scan(&d.ID, &d.Title, &amount, &d.Currency, &d.Stage, &d.Probability,
		&companyID, &contactID, &closeDate, &d.CreatedAt, &d.UpdatedAt, &d.LastActivityAt)
	if err != nil {
		return d, err
	}
	d.Amount = amount.Int64
	d.CompanyID = companyID.String
	d.ContactID = contactID.String
	if closeDate.Valid {
		t := closeDate.Time
		d.ExpectedCloseDate = &t
	}
	return d, nil
}

func (b *Bridge) listDeals(args any) (json.RawMessage, error) {
	q, err := decode[dealsQuery](args)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + dealColumns + ` FROM deals`
	var clauses []string
	var params []any
	if q.Stage != "" {
		clauses = append(clauses, "stage = ?")
		params = append(params, q.Stage)
	}
	if q.Search != "" {
		clauses = append(clauses, "LOWER(title) LIKE ?")
		params = append(params, "%"+strings.ToLower(q.Search)+"%")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY last_activity_at DESC"

	rows, err := b.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return respond(deals)
}

func (b *Bridge) getDeal(id string) (models.Deal, error) {
	row := b.db.QueryRow(`SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)
	return scanDeal(row)
}

func (b *Bridge) createDeal(args any) (json.RawMessage, error) {
	in, err := decode[createDealInput](args)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("deal title is required")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Stage == "" {
		in.Stage = models.StageLead
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	_, err = b.db.Exec(`
		INSERT INTO deals (id, title, amount, currency, stage, probability, company_id, contact_id, created_at, updated_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)
	`, id, in.Title, in.Amount, in.Currency, in.Stage, stageProbability[in.Stage],
		in.CompanyID, in.ContactID, now, now, now)
	if err != nil {
		return nil, err
	}

	d, err := b.getDeal(id)
	if err != nil {
		return nil, err
	}
	b.publish("crm-deal-created", d)
	return respond(d)
}

func (b *Bridge) updateDealStage(args any) (json.RawMessage, error) {
	in, err := decode[updateDealStageInput](args)
	if err != nil {
		return nil, err
	}
	if _, ok := stageProbability[in.Stage]; !ok {
		return nil, fmt.Errorf("unknown deal stage %q", in.Stage)
	}

	now := time.Now().UTC()
	res, err := b.db.Exec(`
		UPDATE deals SET stage = ?, probability = ?, updated_at = ?, last_activity_at = ? WHERE id = ?
	`, in.Stage, stageProbability[in.Stage], now, now, in.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("deal %s not found", in.ID)
	}

	d, err := b.getDeal(in.ID)
	if err != nil {
		return nil, err
	}
	b.publish("crm-deal-updated", d)
	if in.Stage == models.StageClosedWon {
		b.notify("crm", "Deal won", fmt.Sprintf("%s closed won", d.Title))
	}
	return respond(d)
}

func (b *Bridge) deleteDeal(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	res, err := b.db.Exec(`DELETE FROM deals WHERE id = ?`, in.ID)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return respond(n > 0)
}
