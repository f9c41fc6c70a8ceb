// ABOUTME: Prospect database operations
// ABOUTME: Handles CRUD operations, lookups, and enrichment snapshot persistence
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitum/outreach/models"
)

func CreateProspect(db *sql.DB, prospect *models.Prospect) error {
	prospect.ID = uuid.New()
	now := time.Now()
	prospect.CreatedAt = now
	prospect.UpdatedAt = now
	if prospect.EmailValidity == "" {
		prospect.EmailValidity = models.EmailUnknown
	}
	if prospect.EmailingStatus == "" {
		prospect.EmailingStatus = models.EmailingNone
	}

	enrichment, err := marshalEnrichment(prospect.Enrichment)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO prospects (id, first_name, last_name, email, job_title, company,
			registration_id, sector_code, sector_label, website, profile_url, company_page_url,
			email_validity, emailing_status, enrichment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, prospect.ID.String(), prospect.FirstName, prospect.LastName, prospect.Email, prospect.JobTitle,
		prospect.Company, prospect.RegistrationID, prospect.SectorCode, prospect.SectorLabel,
		prospect.Website, prospect.ProfileURL, prospect.CompanyPageURL,
		prospect.EmailValidity, prospect.EmailingStatus, enrichment,
		prospect.CreatedAt, prospect.UpdatedAt)

	return err
}

func GetProspect(db *sql.DB, id uuid.UUID) (*models.Prospect, error) {
	row := db.QueryRow(`
		SELECT id, first_name, last_name, email, job_title, company,
			registration_id, sector_code, sector_label, website, profile_url, company_page_url,
			email_validity, emailing_status, enrichment, created_at, updated_at
		FROM prospects WHERE id = ?
	`, id.String())

	prospect, err := scanProspect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return prospect, err
}

func FindProspects(db *sql.DB, query string, limit int) ([]models.Prospect, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	var err error

	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		rows, err = db.Query(`
			SELECT id, first_name, last_name, email, job_title, company,
				registration_id, sector_code, sector_label, website, profile_url, company_page_url,
				email_validity, emailing_status, enrichment, created_at, updated_at
			FROM prospects
			WHERE LOWER(company) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?
			ORDER BY created_at DESC
			LIMIT ?
		`, pattern, pattern, pattern, limit)
	} else {
		rows, err = db.Query(`
			SELECT id, first_name, last_name, email, job_title, company,
				registration_id, sector_code, sector_label, website, profile_url, company_page_url,
				email_validity, emailing_status, enrichment, created_at, updated_at
			FROM prospects
			ORDER BY created_at DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var prospects []models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, *p)
	}

	return prospects, rows.Err()
}

func UpdateProspect(db *sql.DB, prospect *models.Prospect) error {
	prospect.UpdatedAt = time.Now()

	enrichment, err := marshalEnrichment(prospect.Enrichment)
	if err != nil {
		return err
	}

	result, err := db.Exec(`
		UPDATE prospects
		SET first_name = ?, last_name = ?, email = ?, job_title = ?, company = ?,
			registration_id = ?, sector_code = ?, sector_label = ?, website = ?,
			profile_url = ?, company_page_url = ?, email_validity = ?, emailing_status = ?,
			enrichment = ?, updated_at = ?
		WHERE id = ?
	`, prospect.FirstName, prospect.LastName, prospect.Email, prospect.JobTitle, prospect.Company,
		prospect.RegistrationID, prospect.SectorCode, prospect.SectorLabel, prospect.Website,
		prospect.ProfileURL, prospect.CompanyPageURL, prospect.EmailValidity, prospect.EmailingStatus,
		enrichment, prospect.UpdatedAt, prospect.ID.String())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("prospect %s not found", prospect.ID)
	}
	return nil
}

// UpsertProspect matches on registration id (when present) or company+email
// and updates the existing row, otherwise creates a new one.
func UpsertProspect(db *sql.DB, prospect *models.Prospect) error {
	var existingID string
	var err error
	if prospect.RegistrationID != "" {
		err = db.QueryRow(`SELECT id FROM prospects WHERE registration_id = ?`,
			prospect.RegistrationID).Scan(&existingID)
	} else {
		err = db.QueryRow(`SELECT id FROM prospects WHERE company = ? AND email = ?`,
			prospect.Company, prospect.Email).Scan(&existingID)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return CreateProspect(db, prospect)
	}
	if err != nil {
		return err
	}

	prospect.ID, err = uuid.Parse(existingID)
	if err != nil {
		return fmt.Errorf("failed to parse prospect ID: %w", err)
	}
	return UpdateProspect(db, prospect)
}

// SaveEnrichment persists a finished snapshot on the prospect row. This is
// the write that makes an enrichment count as having happened.
func SaveEnrichment(db *sql.DB, id uuid.UUID, snapshot *models.EnrichmentSnapshot) error {
	enrichment, err := marshalEnrichment(snapshot)
	if err != nil {
		return err
	}

	result, err := db.Exec(`
		UPDATE prospects SET enrichment = ?, updated_at = ? WHERE id = ?
	`, enrichment, time.Now(), id.String())
	if err != nil {
		return fmt.Errorf("failed to save enrichment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("prospect %s not found", id)
	}
	return nil
}

// SetEmailingStatus updates only the emailing status column.
func SetEmailingStatus(db *sql.DB, id uuid.UUID, status string) error {
	_, err := db.Exec(`
		UPDATE prospects SET emailing_status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now(), id.String())
	return err
}

func DeleteProspect(db *sql.DB, id uuid.UUID) error {
	_, err := db.Exec(`DELETE FROM prospects WHERE id = ?`, id.String())
	return err
}

func marshalEnrichment(snapshot *models.EnrichmentSnapshot) (interface{}, error) {
	if snapshot == nil {
		return nil, nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enrichment: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProspect(row rowScanner) (*models.Prospect, error) {
	prospect := &models.Prospect{}
	var idStr string
	var enrichment sql.NullString

	err := row.Scan(
		&idStr,
		&prospect.FirstName,
		&prospect.LastName,
		&prospect.Email,
		&prospect.JobTitle,
		&prospect.Company,
		&prospect.RegistrationID,
		&prospect.SectorCode,
		&prospect.SectorLabel,
		&prospect.Website,
		&prospect.ProfileURL,
		&prospect.CompanyPageURL,
		&prospect.EmailValidity,
		&prospect.EmailingStatus,
		&enrichment,
		&prospect.CreatedAt,
		&prospect.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	prospect.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prospect ID: %w", err)
	}

	if enrichment.Valid && enrichment.String != "" {
		var snapshot models.EnrichmentSnapshot
		if err := json.Unmarshal([]byte(enrichment.String), &snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal enrichment: %w", err)
		}
		prospect.Enrichment = &snapshot
	}

	return prospect, nil
}
