// ABOUTME: Contact command handlers for the local bridge
// ABOUTME: Implements list, create, update, delete, and favorite toggling over SQLite
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

type contactsQuery struct {
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

type createContactInput struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Position  string `json:"position,omitempty"`
	Status    string `json:"status,omitempty"`
}

type updateContactInput struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
	Status   string `json:"status,omitempty"`
	Score    *int   `json:"score,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type idArg struct {
	ID string `json:"id"`
}

const contactColumns = `id, name, email, phone, company_id, position, status, score, favorite, notes, last_contacted_at, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (models.Contact, error) {
	var c models.Contact
	var email, phone, companyID, position, notes sql.NullString
	var lastContacted sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &email, &phone, &companyID, &position,
		&c.Status, &c.Score, &c.Favorite, &notes, &lastContacted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Email = email.String
	c.Phone = phone.String
	c.CompanyID = companyID.String
	c.Position = position.String
	c.Notes = notes.String
	if lastContacted.Valid {
		t := lastContacted.Time
		c.LastContactedAt = &t
	}
	return c, nil
}

func (b *Bridge) listContacts(args any) (json.RawMessage, error) {
	q, err := decode[contactsQuery](args)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + contactColumns + ` FROM contacts`
	var clauses []string
	var params []any
	if q.Status != "" {
		clauses = append(clauses, "status = ?")
		params = append(params, q.Status)
	}
	if q.Search != "" {
		clauses = append(clauses, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		pattern := "%" + strings.ToLower(q.Search) + "%"
		params = append(params, pattern, pattern)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := b.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return respond(contacts)
}

func (b *Bridge) getContact(id string) (models.Contact, error) {
	row := b.db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	return scanContact(row)
}

func (b *Bridge) createContact(args any) (json.RawMessage, error) {
	in, err := decode[createContactInput](args)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("contact name is required")
	}
	if in.Status == "" {
		in.Status = models.ContactLead
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	_, err = b.db.Exec(`
		INSERT INTO contacts (id, name, email, phone, company_id, position, status, score, favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, 0, 0, ?, ?)
	`, id, in.Name, in.Email, in.Phone, in.CompanyID, in.Position, in.Status, now, now)
	if err != nil {
		return nil, err
	}

	c, err := b.getContact(id)
	if err != nil {
		return nil, err
	}
	b.publish("crm-contact-created", c)
	b.notify("crm", "New contact", fmt.Sprintf("%s was added", c.Name))
	return respond(c)
}

func (b *Bridge) updateContact(args any) (json.RawMessage, error) {
	in, err := decode[updateContactInput](args)
	if err != nil {
		return nil, err
	}

	var sets []string
	var params []any
	set := func(column string, v any) {
		sets = append(sets, column+" = ?")
		params = append(params, v)
	}
	if in.Name != "" {
		set("name", in.Name)
	}
	if in.Email != "" {
		set("email", in.Email)
	}
	if in.Phone != "" {
		set("phone", in.Phone)
	}
	if in.Position != "" {
		set("position", in.Position)
	}
	if in.Status != "" {
		set("status", in.Status)
	}
	if in.Score != nil {
		set("score", *in.Score)
	}
	if in.Notes != "" {
		set("notes", in.Notes)
	}
	set("updated_at", time.Now().UTC())
	params = append(params, in.ID)

	res, err := b.db.Exec(`UPDATE contacts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, params...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("contact %s not found", in.ID)
	}

	c, err := b.getContact(in.ID)
	if err != nil {
		return nil, err
	}
	b.publish("crm-contact-updated", c)
	return respond(c)
}

// deleteContact refuses contacts that still carry open deals; the caller gets
// false rather than an error, matching the confirmed-delete contract.
func (b *Bridge) deleteContact(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	var openDeals int
	err = b.db.QueryRow(`
		SELECT COUNT(*) FROM deals
		WHERE contact_id = ? AND stage NOT IN (?, ?)
	`, in.ID, models.StageClosedWon, models.StageClosedLost).Scan(&openDeals)
	if err != nil {
		return nil, err
	}
	if openDeals > 0 {
		b.log.Info("delete refused, contact has open deals", "contact", in.ID, "deals", openDeals)
		return respond(false)
	}

	res, err := b.db.Exec(`DELETE FROM contacts WHERE id = ?`, in.ID)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return respond(n > 0)
}

func (b *Bridge) toggleFavorite(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	res, err := b.db.Exec(`
		UPDATE contacts SET favorite = NOT favorite, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), in.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("contact %s not found", in.ID)
	}

	c, err := b.getContact(in.ID)
	if err != nil {
		return nil, err
	}
	b.publish("crm-contact-updated", c)
	return respond(c)
}
