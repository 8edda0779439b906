// ABOUTME: Activity command handlers for the local bridge
// ABOUTME: Implements list, create, completion, and delete over SQLite
package localbridge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/officesync/models"
)

type createActivityInput struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	ContactID string `json:"contact_id,omitempty"`
	DealID    string `json:"deal_id,omitempty"`
	Priority  string `json:"priority,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
}

const activityColumns = `id, type, title, description, contact_id, deal_id, status, priority, due_date, completed_at, created_at, updated_at`

func scanActivity(row interface{ Scan(...any) error }) (models.Activity, error) {
	var a models.Activity
	var desc, contactID, dealID, priority sql.NullString
	var due, completed sql.NullTime
	err := row.Scan(&a.ID, &a.Type, &a.Title, &desc, &contactID, &dealID,
		&a.Status, &priority, &due, &completed, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	a.Description = desc.String
	a.ContactID = contactID.String
	a.DealID = dealID.String
	a.Priority = priority.String
	if due.Valid {
		t := due.Time
		a.DueDate = &t
	}
	if completed.Valid {
		t := completed.Time
		a.CompletedAt = &t
	}
	return a, nil
}

func (b *Bridge) listActivities() (json.RawMessage, error) {
	rows, err := b.db.Query(`SELECT ` + activityColumns + ` FROM activities ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		// Pending activities past their due date surface as overdue.
		if a.Status == models.ActivityPending && a.DueDate != nil && a.DueDate.Before(time.Now()) {
			a.Status = models.ActivityOverdue
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return respond(activities)
}

func (b *Bridge) getActivity(id string) (models.Activity, error) {
	row := b.db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

func (b *Bridge) createActivity(args any) (json.RawMessage, error) {
	in, err := decode[createActivityInput](args)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("activity title is required")
	}
	if in.Type == "" {
		in.Type = "task"
	}

	var due *time.Time
	if in.DueDate != "" {
		t, err := time.Parse(time.RFC3339, in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("parse due date: %w", err)
		}
		due = &t
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	_, err = b.db.Exec(`
		INSERT INTO activities (id, type, title, contact_id, deal_id, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?)
	`, id, in.Type, in.Title, in.ContactID, in.DealID, models.ActivityPending, in.Priority, due, now, now)
	if err != nil {
		return nil, err
	}

	a, err := b.getActivity(id)
	if err != nil {
		return nil, err
	}
	return respond(a)
}

func (b *Bridge) completeActivity(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := b.db.Exec(`
		UPDATE activities SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?
	`, models.ActivityCompleted, now, now, in.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("activity %s not found", in.ID)
	}

	a, err := b.getActivity(in.ID)
	if err != nil {
		return nil, err
	}
	b.publish("crm-activity-updated", a)
	return respond(a)
}

func (b *Bridge) deleteActivity(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	res, err := b.db.Exec(`DELETE FROM activities WHERE id = ?`, in.ID)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return respond(n > 0)
}
