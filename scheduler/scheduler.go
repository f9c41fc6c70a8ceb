// ABOUTME: Converts message plans into dated scheduled email jobs
// ABOUTME: Owns sequence lifecycle transitions and batch scheduling with failure isolation
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
)

// DefaultBatchPause spaces out per-prospect scheduling in a batch. A
// throttle for downstream rate limits, not a correctness requirement.
const DefaultBatchPause = 200 * time.Millisecond

// Scheduler turns message plans into scheduled_emails rows and manages
// their lifecycle.
type Scheduler struct {
	DB *sql.DB

	// SendHour pins every send to a fixed local hour. Defaults to
	// DefaultSendHour.
	SendHour int
	// BatchPause is the delay between prospects in a batch. Defaults to
	// DefaultBatchPause.
	BatchPause time.Duration
}

// ScheduleSequence creates one scheduled job per plan step, dated from
// startDate by each step's relative delay. Weekend dates shift to Monday.
// Plan delays must be non-decreasing so step numbers stay ordered by date.
func (s *Scheduler) ScheduleSequence(prospectID uuid.UUID, plan models.MessagePlan, startDate time.Time) ([]models.ScheduledEmail, error) {
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("message plan has no steps")
	}
	for i := 1; i < len(plan.Steps); i++ {
		if plan.Steps[i].DelayDays < plan.Steps[i-1].DelayDays {
			return nil, fmt.Errorf("plan delays must be non-decreasing: step %d goes backward", i+1)
		}
	}

	sequenceID := ulid.Make().String()
	hour := s.sendHour()

	emails := make([]models.ScheduledEmail, 0, len(plan.Steps))
	for i, step := range plan.Steps {
		email := models.ScheduledEmail{
			ProspectID:   prospectID,
			SequenceID:   sequenceID,
			SequenceName: plan.Name,
			StepNumber:   i + 1,
			Subject:      step.Subject,
			Body:         step.Body,
			ScheduledFor: SendDate(startDate, step.DelayDays, hour),
			Status:       models.StatusScheduled,
		}
		if err := db.CreateScheduledEmail(s.DB, &email); err != nil {
			return nil, fmt.Errorf("failed to schedule step %d: %w", i+1, err)
		}
		emails = append(emails, email)
	}

	if err := db.SetEmailingStatus(s.DB, prospectID, models.EmailingScheduled); err != nil {
		log.Printf("scheduler: failed to flag prospect %s as scheduled: %v", prospectID, err)
	}

	return emails, nil
}

// BatchRequest is one prospect's scheduling order within a batch.
type BatchRequest struct {
	ProspectID uuid.UUID
	Plan       models.MessagePlan
	StartDate  time.Time
}

// BatchFailure names one prospect whose scheduling failed and why.
type BatchFailure struct {
	ProspectID uuid.UUID
	Reason     string
}

// BatchResult reports per-prospect outcomes. Partial failure is a normal
// result, not an error.
type BatchResult struct {
	Scheduled int
	Failed    int
	Failures  []BatchFailure
}

// ScheduleBatch schedules each request in order with a pause between
// prospects. One prospect's failure never aborts the rest.
func (s *Scheduler) ScheduleBatch(ctx context.Context, requests []BatchRequest) (BatchResult, error) {
	result := BatchResult{}
	pause := s.BatchPause
	if pause <= 0 {
		pause = DefaultBatchPause
	}

	for i, req := range requests {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(pause):
			}
		}

		if _, err := s.ScheduleSequence(req.ProspectID, req.Plan, req.StartDate); err != nil {
			log.Printf("scheduler: batch scheduling failed for %s: %v", req.ProspectID, err)
			result.Failed++
			result.Failures = append(result.Failures, BatchFailure{
				ProspectID: req.ProspectID,
				Reason:     err.Error(),
			})
			continue
		}
		result.Scheduled++
	}

	return result, nil
}

// CancelSequence cancels every pending job for the prospect, whether
// currently scheduled or paused. Zero affected jobs is a valid outcome.
func (s *Scheduler) CancelSequence(prospectID uuid.UUID, reason string) (int, error) {
	scheduled, err := db.TransitionSequence(s.DB, prospectID, models.StatusScheduled, models.StatusCancelled, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel sequence: %w", err)
	}
	paused, err := db.TransitionSequence(s.DB, prospectID, models.StatusPaused, models.StatusCancelled, reason)
	if err != nil {
		return scheduled, fmt.Errorf("failed to cancel paused jobs: %w", err)
	}
	return scheduled + paused, nil
}

// PauseSequence takes the prospect's scheduled jobs out of the due queue.
func (s *Scheduler) PauseSequence(prospectID uuid.UUID) (int, error) {
	count, err := db.TransitionSequence(s.DB, prospectID, models.StatusScheduled, models.StatusPaused, "")
	if err != nil {
		return 0, fmt.Errorf("failed to pause sequence: %w", err)
	}
	return count, nil
}

// ResumeSequence returns paused jobs to scheduled with their original send
// dates untouched.
func (s *Scheduler) ResumeSequence(prospectID uuid.UUID) (int, error) {
	count, err := db.TransitionSequence(s.DB, prospectID, models.StatusPaused, models.StatusScheduled, "")
	if err != nil {
		return 0, fmt.Errorf("failed to resume sequence: %w", err)
	}
	return count, nil
}

func (s *Scheduler) sendHour() int {
	if s.SendHour > 0 {
		return s.SendHour
	}
	return DefaultSendHour
}
