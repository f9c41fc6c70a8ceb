// ABOUTME: Tests for the completeness scorer
// ABOUTME: Covers baselines, version gating, threshold bands, and monotonicity
package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/profitum/outreach/models"
)

func baseProspect() *models.Prospect {
	return &models.Prospect{
		FirstName: "Claire",
		LastName:  "Moreau",
		Email:     "claire@ferme-moreau.fr",
		JobTitle:  "Gérante",
		Company:   "Ferme Moreau",
	}
}

func richSnapshot() *models.EnrichmentSnapshot {
	return &models.EnrichmentSnapshot{
		Version: models.SnapshotVersion,
		Profile: &models.ProfileFacet{
			ConversationStarters: []models.ConversationStarter{{Phrase: "congrats on the expansion"}},
			Confidence:           80,
		},
		Presence: &models.PresenceFacet{
			NewsItems:  []models.ActivityItem{{Summary: "new barn"}},
			Confidence: 75,
		},
		Operational: &models.OperationalFacet{
			DataCompleteness: 100,
			Confidence:       70,
		},
		Timing: &models.TimingFacet{
			ContextualHooks: []models.Hook{{Phrase: "quiet season"}},
			Confidence:      65,
		},
	}
}

func TestScoreNoSnapshot(t *testing.T) {
	p := baseProspect()

	result := Score(p)

	assert.Equal(t, 25, result.Score, "five identity fields at 5 points each")
	assert.Equal(t, models.RecommendFull, result.Recommendation)
	assert.Len(t, result.MissingFields, 4)
	assert.False(t, result.HasProfile)
}

func TestScoreIdentityCap(t *testing.T) {
	p := baseProspect()
	p.RegistrationID = "123456789"
	p.SectorCode = "0111Z"
	p.Website = "https://ferme-moreau.fr"
	p.ProfileURL = "https://example.com/in/claire"
	p.CompanyPageURL = "https://example.com/company/ferme-moreau"

	result := Score(p)

	assert.Equal(t, 30, result.Score, "identity block caps at 30")
}

func TestScoreUnrecognizedVersionTreatedAsEmpty(t *testing.T) {
	p := baseProspect()
	p.Enrichment = richSnapshot()
	p.Enrichment.Version = "v2"

	result := Score(p)

	assert.Equal(t, 25, result.Score)
	assert.Equal(t, models.RecommendFull, result.Recommendation)
}

func TestScoreCompleteSnapshotSkips(t *testing.T) {
	p := baseProspect()
	p.Enrichment = richSnapshot()

	result := Score(p)

	// 25 identity + 4x10 facets + 3x5 richness + 15 operational share.
	assert.Equal(t, 95, result.Score)
	assert.Equal(t, models.RecommendSkip, result.Recommendation)
	assert.True(t, result.HasProfile)
	assert.True(t, result.HasPresence)
	assert.True(t, result.HasOperational)
	assert.True(t, result.HasTiming)
	assert.Empty(t, result.MissingFields)
}

func TestScoreMonotonicity(t *testing.T) {
	p := baseProspect()
	rich := richSnapshot()

	p.Enrichment = &models.EnrichmentSnapshot{Version: models.SnapshotVersion}
	prev := Score(p).Score

	p.Enrichment.Profile = rich.Profile
	s := Score(p).Score
	assert.GreaterOrEqual(t, s, prev)
	prev = s

	p.Enrichment.Presence = rich.Presence
	s = Score(p).Score
	assert.GreaterOrEqual(t, s, prev)
	prev = s

	p.Enrichment.Operational = rich.Operational
	s = Score(p).Score
	assert.GreaterOrEqual(t, s, prev)
	prev = s

	p.Enrichment.Timing = rich.Timing
	s = Score(p).Score
	assert.GreaterOrEqual(t, s, prev)
}

func TestScorePartialBand(t *testing.T) {
	p := baseProspect()
	p.Enrichment = &models.EnrichmentSnapshot{
		Version:  models.SnapshotVersion,
		Profile:  &models.ProfileFacet{},
		Presence: &models.PresenceFacet{},
		Operational: &models.OperationalFacet{
			DataCompleteness: 40,
		},
		Timing: &models.TimingFacet{},
	}

	result := Score(p)

	// 25 + 40 + 6 operational share, no richness bonuses.
	assert.Equal(t, 71, result.Score)
	assert.Equal(t, models.RecommendPartial, result.Recommendation)
	assert.ElementsMatch(t, []string{"profile", "presence", "operational", "timing"}, result.PartialFields)
}

func TestScorePartialBandWithoutPartialFieldsFallsToFull(t *testing.T) {
	p := &models.Prospect{Company: "Ferme Moreau"}
	p.Enrichment = richSnapshot()
	p.Enrichment.Operational.DataCompleteness = 50

	result := Score(p)

	// 5 identity + 40 facets + 15 richness + 7 operational share = 67:
	// inside the partial band, but every present facet is fully populated.
	assert.Equal(t, 67, result.Score)
	assert.Empty(t, result.PartialFields)
	assert.Equal(t, models.RecommendFull, result.Recommendation)
}

func TestFieldsToEnrich(t *testing.T) {
	skip := models.CompletenessResult{Recommendation: models.RecommendSkip}
	assert.False(t, FieldsToEnrich(skip).Any())

	full := models.CompletenessResult{Recommendation: models.RecommendFull}
	assert.Equal(t, models.AllNeeds(), FieldsToEnrich(full))

	partial := models.CompletenessResult{
		Recommendation: models.RecommendPartial,
		PartialFields:  []string{"timing"},
		MissingFields:  []string{"operational"},
	}
	needs := FieldsToEnrich(partial)
	assert.False(t, needs.Profile)
	assert.False(t, needs.Presence)
	assert.True(t, needs.Operational, "missing facets are recomputed too")
	assert.True(t, needs.Timing)
}
