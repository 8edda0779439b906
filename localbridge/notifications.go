// ABOUTME: Notification storage and the CRM stats aggregate for the local bridge
// ABOUTME: Notifications get ULID identifiers so insertion order survives sorting
package localbridge

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/officesync/models"
)

// notify stores a notification and pushes it on the module's notification
// topic. ULIDs keep lexicographic order aligned with creation order.
func (b *Bridge) notify(module, title, body string) {
	n := models.Notification{
		ID:        ulid.Make().String(),
		Module:    module,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	_, err := b.db.Exec(`
		INSERT INTO notifications (id, module, title, body, read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, n.ID, n.Module, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		b.log.Warn("notification insert failed", "err", err)
		return
	}
	b.publish(module+"-notification", n)
}

func (b *Bridge) listNotifications() (json.RawMessage, error) {
	rows, err := b.db.Query(`
		SELECT id, module, title, body, read, created_at
		FROM notifications ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var body string
		if err := rows.Scan(&n.ID, &n.Module, &n.Title, &body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Body = body
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return respond(notifications)
}

func (b *Bridge) stats() (json.RawMessage, error) {
	var s models.CRMStats
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&s.TotalContacts); err != nil {
		return nil, err
	}
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&s.TotalCompanies); err != nil {
		return nil, err
	}
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM deals`).Scan(&s.TotalDeals); err != nil {
		return nil, err
	}
	err := b.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM deals WHERE stage NOT IN (?, ?)
	`, models.StageClosedWon, models.StageClosedLost).Scan(&s.OpenDeals, &s.PipelineValue)
	if err != nil {
		return nil, err
	}
	err = b.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM deals WHERE stage = ?
	`, models.StageClosedWon).Scan(&s.WonValue)
	if err != nil {
		return nil, err
	}
	return respond(s)
}
