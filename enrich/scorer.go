// ABOUTME: Completeness scoring over a prospect's enrichment snapshot
// ABOUTME: Produces a 0-100 score and a skip/partial/full recommendation
package enrich

import (
	"github.com/profitum/outreach/models"
)

// Scoring weights. Identity fields contribute a capped baseline; each facet
// adds a flat presence value plus a bonus when its richest sub-element is
// actually populated. The operational facet scales with its own
// data-completeness sub-score instead of a fixed bonus.
const (
	pointsPerIdentityField = 5
	identityCap            = 30
	pointsPerFacet         = 10
	facetRichnessBonus     = 5
	operationalShare       = 15

	skipThreshold    = 80
	partialThreshold = 50
)

// Score rates how much useful enrichment already exists for a prospect.
// Purely derived from current data; nothing is persisted.
func Score(prospect *models.Prospect) models.CompletenessResult {
	result := models.CompletenessResult{}

	baseline := len(prospect.IdentityFields()) * pointsPerIdentityField
	if baseline > identityCap {
		baseline = identityCap
	}
	result.Score = baseline

	snapshot := prospect.Enrichment
	if !snapshot.Usable() {
		result.MissingFields = facetNames()
		result.Recommendation = models.RecommendFull
		return result
	}

	if snapshot.Profile != nil {
		result.HasProfile = true
		result.Score += pointsPerFacet
		if len(snapshot.Profile.ConversationStarters) > 0 {
			result.Score += facetRichnessBonus
		} else {
			result.PartialFields = append(result.PartialFields, string(models.FacetProfile))
		}
	} else {
		result.MissingFields = append(result.MissingFields, string(models.FacetProfile))
	}

	if snapshot.Presence != nil {
		result.HasPresence = true
		result.Score += pointsPerFacet
		if len(snapshot.Presence.NewsItems) > 0 || len(snapshot.Presence.Signals) > 0 {
			result.Score += facetRichnessBonus
		} else {
			result.PartialFields = append(result.PartialFields, string(models.FacetPresence))
		}
	} else {
		result.MissingFields = append(result.MissingFields, string(models.FacetPresence))
	}

	if snapshot.Operational != nil {
		result.HasOperational = true
		result.Score += pointsPerFacet
		completeness := snapshot.Operational.DataCompleteness
		if completeness > 100 {
			completeness = 100
		}
		if completeness < 0 {
			completeness = 0
		}
		result.Score += completeness * operationalShare / 100
		if completeness < 50 {
			result.PartialFields = append(result.PartialFields, string(models.FacetOperational))
		}
	} else {
		result.MissingFields = append(result.MissingFields, string(models.FacetOperational))
	}

	if snapshot.Timing != nil {
		result.HasTiming = true
		result.Score += pointsPerFacet
		if len(snapshot.Timing.ContextualHooks) > 0 {
			result.Score += facetRichnessBonus
		} else {
			result.PartialFields = append(result.PartialFields, string(models.FacetTiming))
		}
	} else {
		result.MissingFields = append(result.MissingFields, string(models.FacetTiming))
	}

	if result.Score > 100 {
		result.Score = 100
	}
	if result.Score < 0 {
		result.Score = 0
	}

	result.Recommendation = recommend(result)
	return result
}

// recommend applies the threshold bands. A score in the partial band with no
// partially-populated facet falls through to a full recommendation rather
// than an empty partial one.
func recommend(result models.CompletenessResult) string {
	switch {
	case result.Score >= skipThreshold:
		return models.RecommendSkip
	case result.Score >= partialThreshold && len(result.PartialFields) > 0:
		return models.RecommendPartial
	default:
		return models.RecommendFull
	}
}

// FieldsToEnrich maps a scorer verdict to the set of facets to recompute.
// Skip selects nothing, full selects everything, partial selects facets that
// are flagged partial or missing outright.
func FieldsToEnrich(result models.CompletenessResult) models.FacetNeeds {
	switch result.Recommendation {
	case models.RecommendSkip:
		return models.FacetNeeds{}
	case models.RecommendFull:
		return models.AllNeeds()
	}

	needs := models.FacetNeeds{}
	for _, name := range append(result.PartialFields, result.MissingFields...) {
		switch models.FacetKind(name) {
		case models.FacetProfile:
			needs.Profile = true
		case models.FacetPresence:
			needs.Presence = true
		case models.FacetOperational:
			needs.Operational = true
		case models.FacetTiming:
			needs.Timing = true
		}
	}
	return needs
}

func facetNames() []string {
	names := make([]string, 0, len(models.FacetKinds))
	for _, kind := range models.FacetKinds {
		names = append(names, string(kind))
	}
	return names
}
