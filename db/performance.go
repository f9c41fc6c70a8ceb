// ABOUTME: Delivery outcome aggregation queries
// ABOUTME: Computes global and per-step send/open/reply counts for reporting
package db

import (
	"database/sql"
	"time"
)

// OutcomeCounts holds raw delivery outcome tallies for one slice of sends.
type OutcomeCounts struct {
	Sent    int
	Opened  int
	Clicked int
	Replied int
}

// StepOutcome is OutcomeCounts broken out by sequence step.
type StepOutcome struct {
	StepNumber int
	OutcomeCounts
}

// GlobalOutcomes tallies every sent email in the optional date range.
func GlobalOutcomes(db *sql.DB, from, to *time.Time) (OutcomeCounts, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(opened), 0),
			COALESCE(SUM(clicked), 0),
			COALESCE(SUM(replied), 0)
		FROM scheduled_emails
		WHERE sent_at IS NOT NULL`
	var args []interface{}
	if from != nil {
		query += ` AND sent_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND sent_at <= ?`
		args = append(args, *to)
	}

	var counts OutcomeCounts
	err := db.QueryRow(query, args...).Scan(&counts.Sent, &counts.Opened, &counts.Clicked, &counts.Replied)
	return counts, err
}

// StepOutcomes tallies sent emails grouped by step number.
func StepOutcomes(db *sql.DB) ([]StepOutcome, error) {
	rows, err := db.Query(`
		SELECT step_number, COUNT(*),
			COALESCE(SUM(opened), 0),
			COALESCE(SUM(clicked), 0),
			COALESCE(SUM(replied), 0)
		FROM scheduled_emails
		WHERE sent_at IS NOT NULL
		GROUP BY step_number
		ORDER BY step_number ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var outcomes []StepOutcome
	for rows.Next() {
		var o StepOutcome
		if err := rows.Scan(&o.StepNumber, &o.Sent, &o.Opened, &o.Clicked, &o.Replied); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// CountRepliedProspects counts prospects whose emailing status reached
// replied since the given time.
func CountRepliedProspects(db *sql.DB, since *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM prospects WHERE emailing_status = 'replied'`
	var args []interface{}
	if since != nil {
		query += ` AND updated_at >= ?`
		args = append(args, *since)
	}

	var count int
	err := db.QueryRow(query, args...).Scan(&count)
	return count, err
}
