// ABOUTME: Four-stage enrichment pipeline orchestration
// ABOUTME: Consults scorer and cache before each stage, merges facets, persists the snapshot
package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/profitum/outreach/cache"
	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
)

// Orchestrator runs the enrichment pipeline. Stages run in fixed order
// because later facets consume earlier ones: profile, presence, operational,
// timing.
type Orchestrator struct {
	DB       *sql.DB
	Cache    *cache.Store
	Provider Provider

	// Now overrides the clock (tests).
	Now func() time.Time
}

// EnrichProspect computes or reuses a full enrichment snapshot. Provider
// failures degrade to zero-confidence fallbacks per facet; only a failure to
// persist the finished snapshot is an error, because an enrichment that
// cannot be saved has not happened.
func (o *Orchestrator) EnrichProspect(ctx context.Context, prospect *models.Prospect, forceRefresh bool) (*models.EnrichmentSnapshot, error) {
	needs := models.AllNeeds()

	if forceRefresh {
		o.Cache.Invalidate(prospect.ID)
	} else {
		verdict := Score(prospect)
		if verdict.Recommendation == models.RecommendSkip {
			log.Printf("enrich: %s already complete (score %d), skipping", prospect.ID, verdict.Score)
			snapshot := prospect.Enrichment.Clone()
			snapshot.EnrichedAt = o.now().UTC()
			return snapshot, nil
		}

		if full := cachedFacet[models.EnrichmentSnapshot](o.Cache, prospect.ID, models.FacetFull); full != nil && full.Usable() {
			log.Printf("enrich: %s served from full snapshot cache", prospect.ID)
			return full, nil
		}

		needs = FieldsToEnrich(verdict)
	}

	existing := prospect.Enrichment
	if !existing.Usable() {
		existing = nil
	}

	profile := o.profileStage(ctx, prospect, existing, needs.Profile)
	presence := o.presenceStage(ctx, prospect, existing, needs.Presence)
	operational := o.operationalStage(ctx, prospect, existing, needs.Operational, profile, presence)
	timing := o.timingStage(ctx, prospect, existing, needs.Timing, profile, operational)

	snapshot := &models.EnrichmentSnapshot{
		Profile:     profile,
		Presence:    presence,
		Operational: operational,
		Timing:      timing,
		Version:     models.SnapshotVersion,
		EnrichedAt:  o.now().UTC(),
	}

	if err := db.SaveEnrichment(o.DB, prospect.ID, snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist enrichment for %s: %w", prospect.ID, err)
	}
	o.Cache.Set(prospect.ID, models.FacetFull, snapshot)
	prospect.Enrichment = snapshot

	return snapshot, nil
}

// Each stage resolves its facet the same way: a fresh cache entry wins, then
// the existing snapshot when recomputation is not needed, then a provider
// call, then the fallback. Successful provider results are cached; fallbacks
// are not, so the next run retries.

func (o *Orchestrator) profileStage(ctx context.Context, prospect *models.Prospect, existing *models.EnrichmentSnapshot, needed bool) *models.ProfileFacet {
	if facet := cachedFacet[models.ProfileFacet](o.Cache, prospect.ID, models.FacetProfile); facet != nil {
		return facet
	}
	if !needed && existing != nil && existing.Profile != nil {
		return existing.Profile
	}
	if !needed {
		return nil
	}

	facet, err := o.Provider.ResearchProfile(ctx, ProfileRequest{Prospect: *prospect})
	if err != nil {
		log.Printf("enrich: profile research failed for %s: %v", prospect.ID, err)
		return FallbackProfile()
	}
	o.Cache.Set(prospect.ID, models.FacetProfile, facet)
	return facet
}

func (o *Orchestrator) presenceStage(ctx context.Context, prospect *models.Prospect, existing *models.EnrichmentSnapshot, needed bool) *models.PresenceFacet {
	if facet := cachedFacet[models.PresenceFacet](o.Cache, prospect.ID, models.FacetPresence); facet != nil {
		return facet
	}
	if !needed && existing != nil && existing.Presence != nil {
		return existing.Presence
	}
	if !needed {
		return nil
	}

	facet, err := o.Provider.ResearchPresence(ctx, PresenceRequest{Prospect: *prospect})
	if err != nil {
		log.Printf("enrich: presence research failed for %s: %v", prospect.ID, err)
		return FallbackPresence()
	}
	o.Cache.Set(prospect.ID, models.FacetPresence, facet)
	return facet
}

func (o *Orchestrator) operationalStage(ctx context.Context, prospect *models.Prospect, existing *models.EnrichmentSnapshot, needed bool, profile *models.ProfileFacet, presence *models.PresenceFacet) *models.OperationalFacet {
	if facet := cachedFacet[models.OperationalFacet](o.Cache, prospect.ID, models.FacetOperational); facet != nil {
		return facet
	}
	if !needed && existing != nil && existing.Operational != nil {
		return existing.Operational
	}
	if !needed {
		return nil
	}

	facet, err := o.Provider.InferOperational(ctx, OperationalRequest{
		Prospect: *prospect,
		Profile:  profile,
		Presence: presence,
	})
	if err != nil {
		log.Printf("enrich: operational inference failed for %s: %v", prospect.ID, err)
		return FallbackOperational()
	}
	o.Cache.Set(prospect.ID, models.FacetOperational, facet)
	return facet
}

func (o *Orchestrator) timingStage(ctx context.Context, prospect *models.Prospect, existing *models.EnrichmentSnapshot, needed bool, profile *models.ProfileFacet, operational *models.OperationalFacet) *models.TimingFacet {
	if facet := cachedFacet[models.TimingFacet](o.Cache, prospect.ID, models.FacetTiming); facet != nil {
		return facet
	}
	if !needed && existing != nil && existing.Timing != nil {
		return existing.Timing
	}
	if !needed {
		return nil
	}

	facet, err := o.Provider.AnalyzeTiming(ctx, TimingRequest{
		Prospect:    *prospect,
		Profile:     profile,
		Operational: operational,
	})
	if err != nil {
		log.Printf("enrich: timing analysis failed for %s: %v", prospect.ID, err)
		return FallbackTiming()
	}
	o.Cache.Set(prospect.ID, models.FacetTiming, facet)
	return facet
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func cachedFacet[T any](store *cache.Store, id uuid.UUID, kind models.FacetKind) *T {
	raw, ok := store.Get(id, kind)
	if !ok {
		return nil
	}
	var facet T
	if err := json.Unmarshal(raw, &facet); err != nil {
		log.Printf("enrich: discarding unreadable %s cache entry for %s: %v", kind, id, err)
		return nil
	}
	return &facet
}
