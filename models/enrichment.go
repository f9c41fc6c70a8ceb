// ABOUTME: Enrichment snapshot and facet models
// ABOUTME: Defines the four facets, the versioned snapshot bundle, and completeness results
package models

import "time"

// SnapshotVersion tags snapshots produced by the current pipeline. A snapshot
// carrying any other tag is ignored for cache reuse.
const SnapshotVersion = "v4"

// FacetKind identifies one independently cacheable slice of a snapshot.
type FacetKind string

const (
	FacetProfile     FacetKind = "profile"
	FacetPresence    FacetKind = "presence"
	FacetOperational FacetKind = "operational"
	FacetTiming      FacetKind = "timing"
	// FacetFull addresses the whole snapshot as a single cache entry.
	FacetFull FacetKind = "full"
)

// FacetKinds lists the four facet kinds in computation order. Later facets
// may depend on earlier ones, so the order is load-bearing.
var FacetKinds = []FacetKind{FacetProfile, FacetPresence, FacetOperational, FacetTiming}

// EnrichmentSnapshot bundles everything the pipeline knows about a prospect.
type EnrichmentSnapshot struct {
	Profile     *ProfileFacet     `json:"profile,omitempty"`
	Presence    *PresenceFacet    `json:"presence,omitempty"`
	Operational *OperationalFacet `json:"operational,omitempty"`
	Timing      *TimingFacet      `json:"timing,omitempty"`
	Version     string            `json:"version"`
	EnrichedAt  time.Time         `json:"enriched_at"`
}

// Usable reports whether the snapshot carries the current version tag.
// Anything else is treated as no data at all.
func (s *EnrichmentSnapshot) Usable() bool {
	return s != nil && s.Version == SnapshotVersion
}

// Clone returns a shallow copy with independent facet pointers.
func (s *EnrichmentSnapshot) Clone() *EnrichmentSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	if s.Presence != nil {
		p := *s.Presence
		c.Presence = &p
	}
	if s.Operational != nil {
		o := *s.Operational
		c.Operational = &o
	}
	if s.Timing != nil {
		t := *s.Timing
		c.Timing = &t
	}
	return &c
}

// ProfileFacet captures public professional-profile research on the
// decision-maker and their company page: recent activity, events, and
// generated conversation starters.
type ProfileFacet struct {
	Tenure               string                `json:"tenure,omitempty"`
	Background           string                `json:"background,omitempty"`
	CommunicationStyle   string                `json:"communication_style,omitempty"`
	ActivityLevel        string                `json:"activity_level,omitempty"`
	RecentPosts          []ActivityItem        `json:"recent_posts,omitempty"`
	Events               []EventMention        `json:"events,omitempty"`
	ConversationStarters []ConversationStarter `json:"conversation_starters,omitempty"`
	BestContactTime      string                `json:"best_contact_time,omitempty"`
	RecommendedTone      string                `json:"recommended_tone,omitempty"`
	PriorityAngles       []string              `json:"priority_angles,omitempty"`
	Confidence           int                   `json:"confidence"`
}

// ActivityItem is one dated activity signal (post, announcement, news item).
type ActivityItem struct {
	Date    string `json:"date,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Summary string `json:"summary"`
	Angle   string `json:"angle,omitempty"`
}

// EventMention is an event the prospect attends or attended. TimeStatus
// decides which opener phrasing is still safe to use.
type EventMention struct {
	Name       string `json:"name"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	TimeStatus string `json:"time_status"`
	Location   string `json:"location,omitempty"`
}

// Time status constants for events and conversation starters.
const (
	TimeStatusFuture  = "future"
	TimeStatusOngoing = "ongoing"
	TimeStatusPast    = "past"
	TimeStatusStale   = "stale"
	TimeStatusUnknown = "unknown"
)

// ConversationStarter is a generated opener tied to a dated signal.
type ConversationStarter struct {
	Kind       string `json:"kind"`
	Phrase     string `json:"phrase"`
	PastPhrase string `json:"past_phrase,omitempty"`
	Context    string `json:"context,omitempty"`
	Date       string `json:"date,omitempty"`
	TimeStatus string `json:"time_status"`
	Score      int    `json:"score"`
	Source     string `json:"source,omitempty"`
}

// PresenceFacet captures what the company's own website says about it.
type PresenceFacet struct {
	MainActivities []string            `json:"main_activities,omitempty"`
	Values         []string            `json:"values,omitempty"`
	NewsItems      []ActivityItem      `json:"news_items,omitempty"`
	Certifications []string            `json:"certifications,omitempty"`
	Countries      []string            `json:"countries,omitempty"`
	Expanding      bool                `json:"expanding,omitempty"`
	SiteTone       string              `json:"site_tone,omitempty"`
	Signals        []OpportunitySignal `json:"signals,omitempty"`
	Confidence     int                 `json:"confidence"`
}

// OpportunitySignal is a scored hint that the prospect may qualify for a
// named program. Program labels are opaque to the engine.
type OpportunitySignal struct {
	Program  string   `json:"program"`
	Score    int      `json:"score"`
	Reason   string   `json:"reason,omitempty"`
	Evidence []string `json:"evidence,omitempty"`
}

// Metric is one inferred operational datum with its provenance.
type Metric struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit,omitempty"`
	Source     string  `json:"source"`
	Precision  string  `json:"precision"`
	Confidence int     `json:"confidence"`
}

// Metric precision constants.
const (
	PrecisionExact     = "exact"
	PrecisionEstimated = "estimated"
	PrecisionRange     = "range"
)

// OperationalFacet carries inferred structural business attributes and the
// eligibility conclusions drawn from them.
type OperationalFacet struct {
	Metrics             map[string]Metric    `json:"metrics,omitempty"`
	Eligibility         []EligibilityFinding `json:"eligibility,omitempty"`
	DataCompleteness    int                  `json:"data_completeness"`
	MissingCriticalData []string             `json:"missing_critical_data,omitempty"`
	HighConfidenceData  []string             `json:"high_confidence_data,omitempty"`
	SavingsEstimate     SavingsEstimate      `json:"savings_estimate"`
	AttractivenessScore int                  `json:"attractiveness_score"`
	Justification       string               `json:"justification,omitempty"`
	Confidence          int                  `json:"confidence"`
}

// EligibilityFinding is the conclusion for one program.
type EligibilityFinding struct {
	Program         string `json:"program"`
	Eligible        bool   `json:"eligible"`
	Certainty       int    `json:"certainty"`
	KeyDatum        string `json:"key_datum,omitempty"`
	AnnualPotential string `json:"annual_potential,omitempty"`
	Priority        string `json:"priority,omitempty"`
}

// SavingsEstimate is an annual-savings range in whole currency units.
type SavingsEstimate struct {
	Minimum int64  `json:"minimum"`
	Maximum int64  `json:"maximum"`
	Mean    int64  `json:"mean"`
	Details string `json:"details,omitempty"`
}

// TimingFacet is the temporal recommendation: how receptive the prospect
// likely is right now and how long the sequence should be.
type TimingFacet struct {
	Period           string       `json:"period,omitempty"`
	MentalLoad       string       `json:"mental_load,omitempty"`
	Receptivity      int          `json:"receptivity"`
	TimingScore      int          `json:"timing_score"`
	Action           string       `json:"action"`
	Rationale        string       `json:"rationale,omitempty"`
	RecommendedSteps int          `json:"recommended_steps"`
	StepAdjustment   int          `json:"step_adjustment"`
	StepDelays       []int        `json:"step_delays,omitempty"`
	AvoidWindows     []DateWindow `json:"avoid_windows,omitempty"`
	ContextualHooks  []Hook       `json:"contextual_hooks,omitempty"`
	Confidence       int          `json:"confidence"`
}

// Timing action constants.
const (
	ActionSendNow      = "send_now"
	ActionSendWithCare = "send_with_care"
	ActionPostpone     = "postpone"
)

// DateWindow is an inclusive date range to avoid or favor.
type DateWindow struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// Hook is a period-specific opener suggestion.
type Hook struct {
	Context string `json:"context"`
	Phrase  string `json:"phrase"`
	Score   int    `json:"score"`
}

// Recommendation values produced by the completeness scorer.
const (
	RecommendSkip    = "skip"
	RecommendPartial = "partial"
	RecommendFull    = "full"
)

// CompletenessResult is the scorer's verdict on a prospect's existing
// enrichment. Never persisted; recomputed on demand.
type CompletenessResult struct {
	Score          int      `json:"score"`
	MissingFields  []string `json:"missing_fields,omitempty"`
	PartialFields  []string `json:"partial_fields,omitempty"`
	HasProfile     bool     `json:"has_profile"`
	HasPresence    bool     `json:"has_presence"`
	HasOperational bool     `json:"has_operational"`
	HasTiming      bool     `json:"has_timing"`
	Recommendation string   `json:"recommendation"`
}

// FacetNeeds says which facets to (re)compute.
type FacetNeeds struct {
	Profile     bool
	Presence    bool
	Operational bool
	Timing      bool
}

// Any reports whether at least one facet needs computing.
func (n FacetNeeds) Any() bool {
	return n.Profile || n.Presence || n.Operational || n.Timing
}

// AllNeeds marks every facet as needed.
func AllNeeds() FacetNeeds {
	return FacetNeeds{Profile: true, Presence: true, Operational: true, Timing: true}
}
