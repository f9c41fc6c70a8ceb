// ABOUTME: Tests for sequence scheduling and lifecycle transitions
// ABOUTME: Covers weekend shifts, pause/resume/cancel idempotence, and batch isolation
package scheduler

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
)

func setupScheduler(t *testing.T) (*Scheduler, *sql.DB) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})
	return &Scheduler{DB: database, BatchPause: time.Millisecond}, database
}

func createSchedulerProspect(t *testing.T, database *sql.DB) uuid.UUID {
	t.Helper()
	p := &models.Prospect{Company: "Ferme Moreau", Email: "claire@ferme-moreau.fr"}
	require.NoError(t, db.CreateProspect(database, p))
	return p.ID
}

func threeStepPlan() models.MessagePlan {
	return models.MessagePlan{
		Name: "intro",
		Steps: []models.SequenceStep{
			{DelayDays: 0, Subject: "hello", Body: "first"},
			{DelayDays: 3, Subject: "following up", Body: "second"},
			{DelayDays: 7, Subject: "last note", Body: "third"},
		},
	}
}

func TestShiftOffWeekend(t *testing.T) {
	saturday := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)
	wednesday := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Monday, ShiftOffWeekend(saturday).Weekday())
	assert.Equal(t, time.Monday, ShiftOffWeekend(sunday).Weekday())
	assert.Equal(t, wednesday, ShiftOffWeekend(wednesday))

	assert.Equal(t, 17, ShiftOffWeekend(saturday).Day())
	assert.Equal(t, 17, ShiftOffWeekend(sunday).Day())
}

func TestScheduleSequenceFridayPlusOneLandsMonday(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	friday := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	plan := models.MessagePlan{Steps: []models.SequenceStep{
		{DelayDays: 1, Subject: "hi", Body: "b"},
	}}

	emails, err := s.ScheduleSequence(id, plan, friday)
	require.NoError(t, err)
	require.Len(t, emails, 1)

	sendDate := emails[0].ScheduledFor
	assert.Equal(t, time.Monday, sendDate.Weekday())
	assert.Equal(t, 17, sendDate.Day())
	assert.Equal(t, DefaultSendHour, sendDate.Hour())
}

func TestScheduleSequenceStepsAndDates(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	emails, err := s.ScheduleSequence(id, threeStepPlan(), monday)
	require.NoError(t, err)
	require.Len(t, emails, 3)

	for i, email := range emails {
		assert.Equal(t, i+1, email.StepNumber)
		assert.Equal(t, models.StatusScheduled, email.Status)
		assert.Equal(t, emails[0].SequenceID, email.SequenceID)
		if i > 0 {
			assert.True(t, email.ScheduledFor.After(emails[i-1].ScheduledFor),
				"send dates must increase with step number")
		}
	}

	p, err := db.GetProspect(database, id)
	require.NoError(t, err)
	assert.Equal(t, models.EmailingScheduled, p.EmailingStatus)
}

func TestScheduleSequenceRejectsDecreasingDelays(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	plan := models.MessagePlan{Steps: []models.SequenceStep{
		{DelayDays: 5, Subject: "a", Body: "a"},
		{DelayDays: 2, Subject: "b", Body: "b"},
	}}

	_, err := s.ScheduleSequence(id, plan, time.Now())
	assert.Error(t, err)
}

func TestPauseWithNothingScheduledIsNotAnError(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	count, err := s.PauseSequence(id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPauseResumeKeepsOriginalDates(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	emails, err := s.ScheduleSequence(id, threeStepPlan(), monday)
	require.NoError(t, err)

	paused, err := s.PauseSequence(id)
	require.NoError(t, err)
	assert.Equal(t, 3, paused)

	due, err := db.ListDueEmails(database, monday.AddDate(0, 0, 30), 0)
	require.NoError(t, err)
	assert.Empty(t, due, "paused jobs leave the due queue")

	resumed, err := s.ResumeSequence(id)
	require.NoError(t, err)
	assert.Equal(t, 3, resumed)

	restored, err := db.ListScheduledEmails(database, id, models.StatusScheduled)
	require.NoError(t, err)
	require.Len(t, restored, 3)
	for i, email := range restored {
		assert.True(t, email.ScheduledFor.Equal(emails[i].ScheduledFor),
			"resume must not move send dates")
	}
}

func TestCancelCoversPausedJobs(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	_, err := s.ScheduleSequence(id, threeStepPlan(), time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = s.PauseSequence(id)
	require.NoError(t, err)

	cancelled, err := s.CancelSequence(id, "prospect replied")
	require.NoError(t, err)
	assert.Equal(t, 3, cancelled)

	jobs, err := db.ListScheduledEmails(database, id, "")
	require.NoError(t, err)
	for _, job := range jobs {
		assert.Equal(t, models.StatusCancelled, job.Status)
		assert.Equal(t, "prospect replied", job.CancelledReason)
	}

	again, err := s.CancelSequence(id, "already done")
	require.NoError(t, err)
	assert.Equal(t, 0, again, "cancel is idempotent")
}

func TestSentOnlyReachableFromScheduled(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)

	emails, err := s.ScheduleSequence(id, threeStepPlan(), time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = s.PauseSequence(id)
	require.NoError(t, err)

	err = db.MarkEmailSent(database, emails[0].ID, time.Now())
	assert.Error(t, err, "a paused job cannot be marked sent")
}

func TestBatchIsolation(t *testing.T) {
	s, database := setupScheduler(t)
	good1 := createSchedulerProspect(t, database)
	bad := createSchedulerProspect(t, database)
	good2 := createSchedulerProspect(t, database)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	requests := []BatchRequest{
		{ProspectID: good1, Plan: threeStepPlan(), StartDate: start},
		{ProspectID: bad, Plan: models.MessagePlan{}, StartDate: start},
		{ProspectID: good2, Plan: threeStepPlan(), StartDate: start},
	}

	result, err := s.ScheduleBatch(context.Background(), requests)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scheduled)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, bad, result.Failures[0].ProspectID)

	jobs, err := db.ListScheduledEmails(database, good2, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 3, "a failure earlier in the batch must not block later prospects")
}

func TestBatchHonorsContextCancellation(t *testing.T) {
	s, database := setupScheduler(t)
	id := createSchedulerProspect(t, database)
	s.BatchPause = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	requests := []BatchRequest{
		{ProspectID: id, Plan: threeStepPlan(), StartDate: time.Now()},
		{ProspectID: id, Plan: threeStepPlan(), StartDate: time.Now()},
	}

	result, err := s.ScheduleBatch(ctx, requests)
	assert.Error(t, err)
	assert.Equal(t, 1, result.Scheduled, "work done before cancellation is kept")
}
