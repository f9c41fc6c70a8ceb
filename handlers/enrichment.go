// ABOUTME: Enrichment MCP tool handlers
// ABOUTME: Implements enrich_prospect, check_completeness, and invalidate_cache tools
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

type EnrichmentHandlers struct {
	db           *sql.DB
	cache        *cache.Store
	orchestrator *enrich.Orchestrator
}

func NewEnrichmentHandlers(database *sql.DB, store *cache.Store, orchestrator *enrich.Orchestrator) *EnrichmentHandlers {
	return &EnrichmentHandlers{db: database, cache: store, orchestrator: orchestrator}
}

type EnrichProspectInput struct {
	ID           string `json:"id" jsonschema:"Prospect ID (required)"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"Recompute every facet even if cached data exists"`
}

type EnrichProspectOutput struct {
	ID                  string `json:"id"`
	Version             string `json:"version"`
	EnrichedAt          string `json:"enriched_at"`
	ProfileConfidence   int    `json:"profile_confidence"`
	PresenceConfidence  int    `json:"presence_confidence"`
	OperationalScore    int    `json:"operational_score"`
	TimingAction        string `json:"timing_action,omitempty"`
	TimingScore         int    `json:"timing_score"`
	AttractivenessScore int    `json:"attractiveness_score"`
}

func (h *EnrichmentHandlers) EnrichProspect(ctx context.Context, _ *mcp.CallToolRequest, input EnrichProspectInput) (*mcp.CallToolResult, EnrichProspectOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, EnrichProspectOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	prospect, err := db.GetProspect(h.db, id)
	if err != nil {
		return nil, EnrichProspectOutput{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, EnrichProspectOutput{}, fmt.Errorf("prospect %s not found", input.ID)
	}

	snapshot, err := h.orchestrator.EnrichProspect(ctx, prospect, input.ForceRefresh)
	if err != nil {
		return nil, EnrichProspectOutput{}, fmt.Errorf("enrichment failed: %w", err)
	}

	output := EnrichProspectOutput{
		ID:         prospect.ID.String(),
		Version:    snapshot.Version,
		EnrichedAt: snapshot.EnrichedAt.Format("2006-01-02 15:04:05"),
	}
	if snapshot.Profile != nil {
		output.ProfileConfidence = snapshot.Profile.Confidence
	}
	if snapshot.Presence != nil {
		output.PresenceConfidence = snapshot.Presence.Confidence
	}
	if snapshot.Operational != nil {
		output.OperationalScore = snapshot.Operational.DataCompleteness
		output.AttractivenessScore = snapshot.Operational.AttractivenessScore
	}
	if snapshot.Timing != nil {
		output.TimingAction = snapshot.Timing.Action
		output.TimingScore = snapshot.Timing.TimingScore
	}
	return nil, output, nil
}

type CheckCompletenessInput struct {
	ID string `json:"id" jsonschema:"Prospect ID (required)"`
}

type CheckCompletenessOutput struct {
	Score          int      `json:"score"`
	Recommendation string   `json:"recommendation"`
	MissingFields  []string `json:"missing_fields,omitempty"`
	PartialFields  []string `json:"partial_fields,omitempty"`
	HasProfile     bool     `json:"has_profile"`
	HasPresence    bool     `json:"has_presence"`
	HasOperational bool     `json:"has_operational"`
	HasTiming      bool     `json:"has_timing"`
}

func (h *EnrichmentHandlers) CheckCompleteness(_ context.Context, _ *mcp.CallToolRequest, input CheckCompletenessInput) (*mcp.CallToolResult, CheckCompletenessOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, CheckCompletenessOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	prospect, err := db.GetProspect(h.db, id)
	if err != nil {
		return nil, CheckCompletenessOutput{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, CheckCompletenessOutput{}, fmt.Errorf("prospect %s not found", input.ID)
	}

	result := enrich.Score(prospect)
	return nil, CheckCompletenessOutput{
		Score:          result.Score,
		Recommendation: result.Recommendation,
		MissingFields:  result.MissingFields,
		PartialFields:  result.PartialFields,
		HasProfile:     result.HasProfile,
		HasPresence:    result.HasPresence,
		HasOperational: result.HasOperational,
		HasTiming:      result.HasTiming,
	}, nil
}

type SummaryInput struct {
	ID string `json:"id" jsonschema:"Prospect ID (required)"`
}

func (h *EnrichmentHandlers) ProspectSummary(_ context.Context, _ *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, enrich.Synthesis, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, enrich.Synthesis{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	prospect, err := db.GetProspect(h.db, id)
	if err != nil {
		return nil, enrich.Synthesis{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, enrich.Synthesis{}, fmt.Errorf("prospect %s not found", input.ID)
	}

	return nil, enrich.Synthesize(prospect, prospect.Enrichment), nil
}

type InvalidateCacheInput struct {
	ID    string `json:"id" jsonschema:"Prospect ID (required)"`
	Facet string `json:"facet,omitempty" jsonschema:"Facet to invalidate (profile, presence, operational, timing, full); all when omitted"`
}

type InvalidateCacheOutput struct {
	ID          string `json:"id"`
	Invalidated string `json:"invalidated"`
}

func (h *EnrichmentHandlers) InvalidateCache(_ context.Context, _ *mcp.CallToolRequest, input InvalidateCacheInput) (*mcp.CallToolResult, InvalidateCacheOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, InvalidateCacheOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	if input.Facet == "" {
		h.cache.Invalidate(id)
		return nil, InvalidateCacheOutput{ID: input.ID, Invalidated: "all"}, nil
	}

	kind := models.FacetKind(input.Facet)
	switch kind {
	case models.FacetProfile, models.FacetPresence, models.FacetOperational, models.FacetTiming, models.FacetFull:
	default:
		return nil, InvalidateCacheOutput{}, fmt.Errorf("unknown facet %q", input.Facet)
	}

	h.cache.Invalidate(id, kind)
	return nil, InvalidateCacheOutput{ID: input.ID, Invalidated: input.Facet}, nil
}
