// ABOUTME: Data models for prospects and their lifecycle
// ABOUTME: Defines Prospect, status constants, and identity field helpers
package models

import (
	"time"

	"github.com/google/uuid"
)

type Prospect struct {
	ID             uuid.UUID           `json:"id"`
	FirstName      string              `json:"first_name,omitempty"`
	LastName       string              `json:"last_name,omitempty"`
	Email          string              `json:"email,omitempty"`
	JobTitle       string              `json:"job_title,omitempty"`
	Company        string              `json:"company"`
	RegistrationID string              `json:"registration_id,omitempty"`
	SectorCode     string              `json:"sector_code,omitempty"`
	SectorLabel    string              `json:"sector_label,omitempty"`
	Website        string              `json:"website,omitempty"`
	ProfileURL     string              `json:"profile_url,omitempty"`
	CompanyPageURL string              `json:"company_page_url,omitempty"`
	EmailValidity  string              `json:"email_validity,omitempty"`
	EmailingStatus string              `json:"emailing_status,omitempty"`
	Enrichment     *EnrichmentSnapshot `json:"enrichment,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Emailing status constants.
const (
	EmailingNone      = "none"
	EmailingScheduled = "scheduled"
	EmailingSent      = "sent"
	EmailingReplied   = "replied"
)

// Email validity constants.
const (
	EmailValid   = "valid"
	EmailInvalid = "invalid"
	EmailUnknown = "unknown"
)

// FullName returns the prospect's display name, falling back to the company.
func (p *Prospect) FullName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.Company
	}
	return name
}

// IdentityFields returns the scalar descriptive fields that feed the
// completeness baseline, keyed by field name. Empty values are omitted.
func (p *Prospect) IdentityFields() map[string]string {
	all := map[string]string{
		"first_name":       p.FirstName,
		"last_name":        p.LastName,
		"email":            p.Email,
		"job_title":        p.JobTitle,
		"company":          p.Company,
		"registration_id":  p.RegistrationID,
		"sector_code":      p.SectorCode,
		"website":          p.Website,
		"profile_url":      p.ProfileURL,
		"company_page_url": p.CompanyPageURL,
	}
	present := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			present[k] = v
		}
	}
	return present
}
