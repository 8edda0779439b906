// ABOUTME: Company command handlers for the local bridge
// ABOUTME: Implements list, create, and delete over SQLite
package localbridge

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/officesync/models"
)

type createCompanyInput struct {
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	Industry string `json:"industry,omitempty"`
	Size     string `json:"size,omitempty"`
}

const companyColumns = `id, name, domain, industry, size, notes, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (models.Company, error) {
	var c models.Company
	var domain, industry, size, notes sql.NullString
	err := row.Scan(&c.ID, &c.Name, &domain, &industry, &size, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Domain = domain.String
	c.Industry = industry.String
	c.Size = size.String
	c.Notes = notes.String
	return c, nil
}

func (b *Bridge) listCompanies() (json.RawMessage, error) {
	rows, err := b.db.Query(`SELECT ` + companyColumns + ` FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return respond(companies)
}

func (b *Bridge) createCompany(args any) (json.RawMessage, error) {
	in, err := decode[createCompanyInput](args)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("company name is required")
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	_, err = b.db.Exec(`
		INSERT INTO companies (id, name, domain, industry, size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, in.Name, in.Domain, in.Industry, in.Size, now, now)
	if err != nil {
		return nil, err
	}

	row := b.db.QueryRow(`SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row)
	if err != nil {
		return nil, err
	}
	return respond(c)
}

// deleteCompany refuses companies that still have contacts attached.
func (b *Bridge) deleteCompany(args any) (json.RawMessage, error) {
	in, err := decode[idArg](args)
	if err != nil {
		return nil, err
	}

	var attached int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE company_id = ?`, in.ID).Scan(&attached); err != nil {
		return nil, err
	}
	if attached > 0 {
		b.log.Info("delete refused, company has contacts", "company", in.ID, "contacts", attached)
		return respond(false)
	}

	res, err := b.db.Exec(`DELETE FROM companies WHERE id = ?`, in.ID)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return respond(n > 0)
}
