// ABOUTME: Prospect MCP tool handlers
// ABOUTME: Implements add_prospect, find_prospects, and update_prospect tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/profitum/outreach/cache"
	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/enrich"
	"github.com/profitum/outreach/models"
)

type ProspectHandlers struct {
	db    *sql.DB
	cache *cache.Store
}

func NewProspectHandlers(database *sql.DB, store *cache.Store) *ProspectHandlers {
	return &ProspectHandlers{db: database, cache: store}
}

type AddProspectInput struct {
	Company        string `json:"company" jsonschema:"Company name (required)"`
	FirstName      string `json:"first_name,omitempty" jsonschema:"Contact first name"`
	LastName       string `json:"last_name,omitempty" jsonschema:"Contact last name"`
	Email          string `json:"email,omitempty" jsonschema:"Contact email address"`
	JobTitle       string `json:"job_title,omitempty" jsonschema:"Contact job title"`
	RegistrationID string `json:"registration_id,omitempty" jsonschema:"Company registration number"`
	SectorCode     string `json:"sector_code,omitempty" jsonschema:"Industry sector code"`
	SectorLabel    string `json:"sector_label,omitempty" jsonschema:"Industry sector label"`
	Website        string `json:"website,omitempty" jsonschema:"Company website URL"`
	ProfileURL     string `json:"profile_url,omitempty" jsonschema:"Contact professional profile URL"`
	CompanyPageURL string `json:"company_page_url,omitempty" jsonschema:"Company page URL"`
}

type ProspectOutput struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	JobTitle          string `json:"job_title,omitempty"`
	Company           string `json:"company"`
	SectorLabel       string `json:"sector_label,omitempty"`
	EmailingStatus    string `json:"emailing_status"`
	CompletenessScore int    `json:"completeness_score"`
	Enriched          bool   `json:"enriched"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func (h *ProspectHandlers) AddProspect(_ context.Context, _ *mcp.CallToolRequest, input AddProspectInput) (*mcp.CallToolResult, ProspectOutput, error) {
	if input.Company == "" {
		return nil, ProspectOutput{}, fmt.Errorf("company is required")
	}

	prospect := &models.Prospect{
		Company:        input.Company,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		JobTitle:       input.JobTitle,
		RegistrationID: input.RegistrationID,
		SectorCode:     input.SectorCode,
		SectorLabel:    input.SectorLabel,
		Website:        input.Website,
		ProfileURL:     input.ProfileURL,
		CompanyPageURL: input.CompanyPageURL,
	}

	if err := db.UpsertProspect(h.db, prospect); err != nil {
		return nil, ProspectOutput{}, fmt.Errorf("failed to save prospect: %w", err)
	}

	return nil, prospectToOutput(prospect), nil
}

type FindProspectsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (matches company, last name, or email)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindProspectsOutput struct {
	Prospects []ProspectOutput `json:"prospects"`
}

func (h *ProspectHandlers) FindProspects(_ context.Context, _ *mcp.CallToolRequest, input FindProspectsInput) (*mcp.CallToolResult, FindProspectsOutput, error) {
	prospects, err := db.FindProspects(h.db, input.Query, input.Limit)
	if err != nil {
		return nil, FindProspectsOutput{}, fmt.Errorf("failed to find prospects: %w", err)
	}

	result := make([]ProspectOutput, len(prospects))
	for i, prospect := range prospects {
		result[i] = prospectToOutput(&prospect)
	}
	return nil, FindProspectsOutput{Prospects: result}, nil
}

type UpdateProspectInput struct {
	ID        string `json:"id" jsonschema:"Prospect ID (required)"`
	FirstName string `json:"first_name,omitempty" jsonschema:"Updated first name"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Updated last name"`
	Email     string `json:"email,omitempty" jsonschema:"Updated email address"`
	JobTitle  string `json:"job_title,omitempty" jsonschema:"Updated job title"`
	Website   string `json:"website,omitempty" jsonschema:"Updated website URL"`
}

func (h *ProspectHandlers) UpdateProspect(_ context.Context, _ *mcp.CallToolRequest, input UpdateProspectInput) (*mcp.CallToolResult, ProspectOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ProspectOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	prospect, err := db.GetProspect(h.db, id)
	if err != nil {
		return nil, ProspectOutput{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, ProspectOutput{}, fmt.Errorf("prospect %s not found", input.ID)
	}

	if input.FirstName != "" {
		prospect.FirstName = input.FirstName
	}
	if input.LastName != "" {
		prospect.LastName = input.LastName
	}
	if input.Email != "" {
		prospect.Email = input.Email
		prospect.EmailValidity = models.EmailUnknown
	}
	if input.JobTitle != "" {
		prospect.JobTitle = input.JobTitle
	}
	if input.Website != "" {
		prospect.Website = input.Website
	}

	if err := db.UpdateProspect(h.db, prospect); err != nil {
		return nil, ProspectOutput{}, fmt.Errorf("failed to update prospect: %w", err)
	}

	// Mutated identity data invalidates cached research.
	h.cache.Invalidate(prospect.ID)

	return nil, prospectToOutput(prospect), nil
}

func prospectToOutput(p *models.Prospect) ProspectOutput {
	return ProspectOutput{
		ID:                p.ID.String(),
		Name:              p.FullName(),
		Email:             p.Email,
		JobTitle:          p.JobTitle,
		Company:           p.Company,
		SectorLabel:       p.SectorLabel,
		EmailingStatus:    p.EmailingStatus,
		CompletenessScore: enrich.Score(p).Score,
		Enriched:          p.Enrichment.Usable(),
		CreatedAt:         p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:         p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
