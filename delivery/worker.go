// ABOUTME: Due-email delivery worker
// ABOUTME: Sends scheduled jobs inside business hours with an hourly cap and per-job retry
package delivery

import (
	"context"
	"database/sql"
	"log"
	"math/rand"
	"time"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
)

const (
	// DefaultMaxPerHour caps outbound volume to stay under spam radar.
	DefaultMaxPerHour = 12
	// MaxAttempts is how many failed sends a job survives before being
	// cancelled.
	MaxAttempts = 5

	businessStartHour = 9
	businessEndHour   = 18
)

// Worker polls for due jobs and pushes them through the Sender.
type Worker struct {
	DB     *sql.DB
	Sender Sender

	// MaxPerHour caps sends in any rolling hour. Defaults to
	// DefaultMaxPerHour.
	MaxPerHour int
	// MaxPause bounds the random pause between consecutive sends. Zero
	// disables pausing (tests).
	MaxPause time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Result summarizes one worker pass. Each job lands in exactly one bucket.
type Result struct {
	Sent        int
	Failed      int
	Rescheduled int
	Cancelled   int
}

// InBusinessHours reports whether t falls in the sending window: weekdays
// between 9:00 and 18:00 local time.
func InBusinessHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return t.Hour() >= businessStartHour && t.Hour() < businessEndHour
}

// NextBusinessTime returns the earliest sending slot at or after t.
func NextBusinessTime(t time.Time) time.Time {
	if InBusinessHours(t) {
		return t
	}
	day := t
	if t.Hour() >= businessEndHour || t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), businessStartHour, 0, 0, 0, t.Location())
}

// ProcessDue runs one delivery pass. Outside business hours every due job
// is pushed to the next window instead of sent. Failed sends stay scheduled
// with a bumped attempt counter until MaxAttempts, then get cancelled.
func (w *Worker) ProcessDue(ctx context.Context) (Result, error) {
	result := Result{}
	now := w.now()

	due, err := db.ListDueEmails(w.DB, now, 0)
	if err != nil {
		return result, err
	}
	if len(due) == 0 {
		return result, nil
	}

	if !InBusinessHours(now) {
		next := NextBusinessTime(now)
		for _, email := range due {
			if err := db.RescheduleEmail(w.DB, email.ID, next); err != nil {
				log.Printf("delivery: failed to reschedule %s: %v", email.ID, err)
				continue
			}
			result.Rescheduled++
		}
		log.Printf("delivery: outside business hours, pushed %d jobs to %s", result.Rescheduled, next)
		return result, nil
	}

	sentThisHour, err := db.CountSentSince(w.DB, now.Add(-time.Hour))
	if err != nil {
		return result, err
	}
	allowance := w.maxPerHour() - sentThisHour
	if allowance <= 0 {
		log.Printf("delivery: hourly cap reached (%d sent), deferring %d jobs", sentThisHour, len(due))
		return result, nil
	}

	for i, email := range due {
		if i >= allowance {
			break
		}
		if i > 0 && w.MaxPause > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(time.Duration(rand.Int63n(int64(w.MaxPause)))):
			}
		}
		w.deliver(ctx, &email, &result)
	}

	return result, nil
}

func (w *Worker) deliver(ctx context.Context, email *models.ScheduledEmail, result *Result) {
	prospect, err := db.GetProspect(w.DB, email.ProspectID)
	if err != nil {
		log.Printf("delivery: failed to load prospect %s: %v", email.ProspectID, err)
		result.Failed++
		return
	}
	if prospect == nil || prospect.Email == "" || prospect.EmailValidity == models.EmailInvalid {
		if err := db.CancelScheduledEmail(w.DB, email.ID, "no deliverable address"); err != nil {
			log.Printf("delivery: failed to cancel %s: %v", email.ID, err)
			return
		}
		result.Cancelled++
		return
	}

	if err := w.Sender.Send(ctx, prospect.Email, email); err != nil {
		log.Printf("delivery: send failed for %s (step %d): %v", prospect.Email, email.StepNumber, err)
		if recErr := db.RecordSendAttempt(w.DB, email.ID); recErr != nil {
			log.Printf("delivery: failed to record attempt for %s: %v", email.ID, recErr)
		}
		if email.Attempts+1 >= MaxAttempts {
			if cancelErr := db.CancelScheduledEmail(w.DB, email.ID, "max send attempts exceeded"); cancelErr == nil {
				result.Cancelled++
				return
			}
		}
		result.Failed++
		return
	}

	if err := db.MarkEmailSent(w.DB, email.ID, w.now()); err != nil {
		log.Printf("delivery: sent %s but failed to record it: %v", email.ID, err)
		result.Failed++
		return
	}
	if err := db.SetEmailingStatus(w.DB, prospect.ID, models.EmailingSent); err != nil {
		log.Printf("delivery: failed to update prospect status for %s: %v", prospect.ID, err)
	}
	result.Sent++
}

// Run polls on a fixed interval until the context is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := w.ProcessDue(ctx)
			if err != nil {
				log.Printf("delivery: pass failed: %v", err)
				continue
			}
			if result.Sent > 0 || result.Failed > 0 || result.Rescheduled > 0 {
				log.Printf("delivery: sent=%d failed=%d rescheduled=%d cancelled=%d",
					result.Sent, result.Failed, result.Rescheduled, result.Cancelled)
			}
		}
	}
}

func (w *Worker) maxPerHour() int {
	if w.MaxPerHour > 0 {
		return w.MaxPerHour
	}
	return DefaultMaxPerHour
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
