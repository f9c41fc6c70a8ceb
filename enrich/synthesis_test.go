// ABOUTME: Tests for snapshot synthesis
// ABOUTME: Covers opener selection, action derivation, and empty snapshots
package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/profitum/outreach/models"
)

func TestSynthesizeNoSnapshot(t *testing.T) {
	p := baseProspect()

	s := Synthesize(p, nil)

	assert.Equal(t, "Claire Moreau", s.ProspectName)
	assert.Contains(t, s.RecommendedActions, "run enrichment before outreach")
	assert.Zero(t, s.OverallConfidence)
}

func TestSynthesizeDigestsFacets(t *testing.T) {
	p := baseProspect()
	snapshot := &models.EnrichmentSnapshot{
		Version: models.SnapshotVersion,
		Profile: &models.ProfileFacet{
			Tenure:          "6 years",
			RecommendedTone: "direct",
			ConversationStarters: []models.ConversationStarter{
				{Phrase: "saw the new barn", Score: 60, TimeStatus: models.TimeStatusFuture},
				{Phrase: "congrats on the award", Score: 90, TimeStatus: models.TimeStatusFuture},
			},
			Confidence: 80,
		},
		Operational: &models.OperationalFacet{
			SavingsEstimate: models.SavingsEstimate{Mean: 12000},
			Eligibility: []models.EligibilityFinding{
				{Program: "fuel-rebate", Eligible: true, Certainty: 85},
			},
			AttractivenessScore: 72,
			Confidence:          60,
		},
		Timing: &models.TimingFacet{
			Action:     models.ActionSendWithCare,
			Rationale:  "harvest season",
			Confidence: 70,
		},
	}

	s := Synthesize(p, snapshot)

	assert.Equal(t, "congrats on the award", s.BestOpener)
	assert.Equal(t, 72, s.AttractivenessScore)
	assert.Equal(t, models.ActionSendWithCare, s.TimingAction)
	assert.Equal(t, 70, s.OverallConfidence)
	assert.Contains(t, s.RecommendedActions, "lead with fuel-rebate eligibility")
	assert.Contains(t, s.RecommendedActions, "send carefully: harvest season")
}

func TestSynthesizeSkipsZeroConfidenceFacets(t *testing.T) {
	p := baseProspect()
	snapshot := &models.EnrichmentSnapshot{
		Version: models.SnapshotVersion,
		Timing:  FallbackTiming(),
	}

	s := Synthesize(p, snapshot)

	assert.Empty(t, s.TimingAction, "fallback facets carry no usable signal")
}

func TestBestStarterPrefersPastPhraseAndSkipsStale(t *testing.T) {
	starters := []models.ConversationStarter{
		{Phrase: "see you at the fair", PastPhrase: "hope the fair went well", Score: 80, TimeStatus: models.TimeStatusPast},
		{Phrase: "old news", Score: 95, TimeStatus: models.TimeStatusStale},
	}

	assert.Equal(t, "hope the fair went well", bestStarter(starters))
}
