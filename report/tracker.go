// ABOUTME: Sequence performance reporting
// ABOUTME: Read-only aggregation of delivery outcomes into rate reports
package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/profitum/outreach/db"
)

// Rates expresses outcome counts as percentages of sends.
type Rates struct {
	Sent           int     `json:"sent"`
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ReplyRate      float64 `json:"reply_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// StepRates is Rates for one sequence step.
type StepRates struct {
	StepNumber int `json:"step_number"`
	Rates
}

// Report is the full performance picture for a period.
type Report struct {
	Period      string      `json:"period,omitempty"`
	Global      Rates       `json:"global"`
	PerStep     []StepRates `json:"per_step"`
	Conversions int         `json:"conversions"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Build assembles a report over sends in the optional date range. A
// conversion is a prospect whose emailing status reached replied.
func Build(database *sql.DB, from, to *time.Time) (*Report, error) {
	global, err := db.GlobalOutcomes(database, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outcomes: %w", err)
	}

	steps, err := db.StepOutcomes(database)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate step outcomes: %w", err)
	}

	conversions, err := db.CountRepliedProspects(database, from)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}

	report := &Report{
		Global:      rates(global, conversions),
		Conversions: conversions,
		GeneratedAt: time.Now(),
	}
	if from != nil {
		report.Period = from.Format("2006-01-02")
		if to != nil {
			report.Period += " to " + to.Format("2006-01-02")
		}
	}

	for _, step := range steps {
		report.PerStep = append(report.PerStep, StepRates{
			StepNumber: step.StepNumber,
			Rates:      rates(step.OutcomeCounts, 0),
		})
	}

	return report, nil
}

func rates(counts db.OutcomeCounts, conversions int) Rates {
	r := Rates{Sent: counts.Sent}
	if counts.Sent == 0 {
		return r
	}
	r.OpenRate = percent(counts.Opened, counts.Sent)
	r.ClickRate = percent(counts.Clicked, counts.Sent)
	r.ReplyRate = percent(counts.Replied, counts.Sent)
	r.ConversionRate = percent(conversions, counts.Sent)
	return r
}

func percent(part, whole int) float64 {
	return float64(part) * 100 / float64(whole)
}
