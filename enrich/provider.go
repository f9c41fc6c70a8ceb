// ABOUTME: External enrichment provider contract
// ABOUTME: Typed per-facet requests carrying only the upstream facets each stage may use
package enrich

import (
	"context"

	"github.com/profitum/outreach/models"
)

// ProfileRequest asks for decision-maker profile research.
type ProfileRequest struct {
	Prospect models.Prospect
}

// PresenceRequest asks for company web-presence research.
type PresenceRequest struct {
	Prospect models.Prospect
}

// OperationalRequest asks for inferred operational metrics. It carries the
// profile and presence facets because operational inference reads context
// from both; it gets nothing else.
type OperationalRequest struct {
	Prospect models.Prospect
	Profile  *models.ProfileFacet
	Presence *models.PresenceFacet
}

// TimingRequest asks for the temporal recommendation. Timing depends on the
// operational picture and on recent activity signals.
type TimingRequest struct {
	Prospect    models.Prospect
	Profile     *models.ProfileFacet
	Operational *models.OperationalFacet
}

// Provider computes facets from prospect data. Implementations own their
// transport and timeouts; the orchestrator treats any error as "use the
// fallback for this facet" and keeps going.
type Provider interface {
	ResearchProfile(ctx context.Context, req ProfileRequest) (*models.ProfileFacet, error)
	ResearchPresence(ctx context.Context, req PresenceRequest) (*models.PresenceFacet, error)
	InferOperational(ctx context.Context, req OperationalRequest) (*models.OperationalFacet, error)
	AnalyzeTiming(ctx context.Context, req TimingRequest) (*models.TimingFacet, error)
}
