// ABOUTME: Compact snapshot synthesis for the admin surface
// ABOUTME: Reduces a full enrichment snapshot to key points, actions, and scores
package enrich

import (
	"fmt"

	"github.com/profitum/outreach/models"
)

// Synthesis is the human-oriented digest of one prospect's enrichment.
// Pure data; rendering belongs to whatever surface displays it.
type Synthesis struct {
	ProspectName        string   `json:"prospect_name"`
	Company             string   `json:"company"`
	KeyPoints           []string `json:"key_points,omitempty"`
	RecommendedActions  []string `json:"recommended_actions,omitempty"`
	BestOpener          string   `json:"best_opener,omitempty"`
	TimingAction        string   `json:"timing_action,omitempty"`
	AttractivenessScore int      `json:"attractiveness_score"`
	CompletenessScore   int      `json:"completeness_score"`
	OverallConfidence   int      `json:"overall_confidence"`
}

// Synthesize digests a snapshot into talking points and next actions. Facets
// with zero confidence are treated as absent.
func Synthesize(prospect *models.Prospect, snapshot *models.EnrichmentSnapshot) Synthesis {
	s := Synthesis{
		ProspectName:      prospect.FullName(),
		Company:           prospect.Company,
		CompletenessScore: Score(prospect).Score,
	}
	if !snapshot.Usable() {
		s.RecommendedActions = append(s.RecommendedActions, "run enrichment before outreach")
		return s
	}

	confidences := 0
	facets := 0

	if p := snapshot.Profile; p != nil && p.Confidence > 0 {
		facets++
		confidences += p.Confidence
		if p.Tenure != "" {
			s.KeyPoints = append(s.KeyPoints, fmt.Sprintf("tenure: %s", p.Tenure))
		}
		if p.RecommendedTone != "" {
			s.RecommendedActions = append(s.RecommendedActions, fmt.Sprintf("write in a %s tone", p.RecommendedTone))
		}
		if len(p.ConversationStarters) > 0 {
			s.BestOpener = bestStarter(p.ConversationStarters)
		}
	}

	if p := snapshot.Presence; p != nil && p.Confidence > 0 {
		facets++
		confidences += p.Confidence
		for _, item := range p.NewsItems {
			s.KeyPoints = append(s.KeyPoints, item.Summary)
		}
		for _, signal := range p.Signals {
			if signal.Score >= 70 {
				s.KeyPoints = append(s.KeyPoints, fmt.Sprintf("strong %s signal", signal.Program))
			}
		}
	}

	if o := snapshot.Operational; o != nil && o.Confidence > 0 {
		facets++
		confidences += o.Confidence
		s.AttractivenessScore = o.AttractivenessScore
		if o.SavingsEstimate.Mean > 0 {
			s.KeyPoints = append(s.KeyPoints, fmt.Sprintf("estimated annual savings around %d", o.SavingsEstimate.Mean))
		}
		for _, finding := range o.Eligibility {
			if finding.Eligible && finding.Certainty >= 70 {
				s.RecommendedActions = append(s.RecommendedActions, fmt.Sprintf("lead with %s eligibility", finding.Program))
			}
		}
	}

	if t := snapshot.Timing; t != nil && t.Confidence > 0 {
		facets++
		confidences += t.Confidence
		s.TimingAction = t.Action
		switch t.Action {
		case models.ActionPostpone:
			s.RecommendedActions = append(s.RecommendedActions, "postpone outreach: "+t.Rationale)
		case models.ActionSendWithCare:
			s.RecommendedActions = append(s.RecommendedActions, "send carefully: "+t.Rationale)
		}
	}

	if facets > 0 {
		s.OverallConfidence = confidences / facets
	}
	return s
}

// bestStarter picks the highest scoring opener that is still safe to use.
func bestStarter(starters []models.ConversationStarter) string {
	best := ""
	bestScore := -1
	for _, starter := range starters {
		if starter.TimeStatus == models.TimeStatusStale {
			continue
		}
		phrase := starter.Phrase
		if starter.TimeStatus == models.TimeStatusPast && starter.PastPhrase != "" {
			phrase = starter.PastPhrase
		}
		if starter.Score > bestScore && phrase != "" {
			best = phrase
			bestScore = starter.Score
		}
	}
	return best
}
