// ABOUTME: Zero-confidence fallback facets for failed provider calls
// ABOUTME: Downstream consumers branch on Confidence, never on structural shape
package enrich

import "github.com/profitum/outreach/models"

// FallbackProfile is the placeholder used when profile research fails.
func FallbackProfile() *models.ProfileFacet {
	return &models.ProfileFacet{
		ActivityLevel:   "unknown",
		RecommendedTone: "professional",
		Confidence:      0,
	}
}

// FallbackPresence is the placeholder used when presence research fails.
func FallbackPresence() *models.PresenceFacet {
	return &models.PresenceFacet{
		Confidence: 0,
	}
}

// FallbackOperational is the placeholder used when operational inference
// fails. Every metric is marked missing so eligibility stays undecided.
func FallbackOperational() *models.OperationalFacet {
	return &models.OperationalFacet{
		DataCompleteness:    0,
		MissingCriticalData: []string{"all"},
		Justification:       "operational inference unavailable",
		Confidence:          0,
	}
}

// FallbackTiming is the placeholder used when timing analysis fails. Neutral
// receptivity with a cautious action keeps sequences usable but conservative.
func FallbackTiming() *models.TimingFacet {
	return &models.TimingFacet{
		Receptivity:      50,
		TimingScore:      50,
		Action:           models.ActionSendWithCare,
		Rationale:        "timing analysis unavailable",
		RecommendedSteps: 4,
		Confidence:       0,
	}
}
