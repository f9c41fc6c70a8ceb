// ABOUTME: Tests for the delivery worker
// ABOUTME: Covers business-hours gating, hourly caps, retries, and undeliverable cancellation
package delivery

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, to string, _ *models.ScheduledEmail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

// Tuesday at 10:00, safely inside business hours.
var businessTime = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

func setupWorker(t *testing.T) (*Worker, *fakeSender, *sql.DB) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	sender := &fakeSender{}
	worker := &Worker{
		DB:     database,
		Sender: sender,
		Now:    func() time.Time { return businessTime },
	}
	return worker, sender, database
}

func createDueEmail(t *testing.T, database *sql.DB, email string) *models.ScheduledEmail {
	t.Helper()
	p := &models.Prospect{Company: "Ferme Moreau", Email: email}
	require.NoError(t, db.CreateProspect(database, p))

	job := &models.ScheduledEmail{
		ProspectID:   p.ID,
		StepNumber:   1,
		Subject:      "hello",
		Body:         "first touch",
		ScheduledFor: businessTime.Add(-time.Hour),
	}
	require.NoError(t, db.CreateScheduledEmail(database, job))
	return job
}

func TestInBusinessHours(t *testing.T) {
	assert.True(t, InBusinessHours(time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)))
	assert.True(t, InBusinessHours(time.Date(2025, 3, 11, 17, 59, 0, 0, time.UTC)))
	assert.False(t, InBusinessHours(time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)))
	assert.False(t, InBusinessHours(time.Date(2025, 3, 11, 8, 59, 0, 0, time.UTC)))
	assert.False(t, InBusinessHours(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)), "Saturday")
	assert.False(t, InBusinessHours(time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)), "Sunday")
}

func TestNextBusinessTime(t *testing.T) {
	// Tuesday 20:00 -> Wednesday 09:00.
	evening := time.Date(2025, 3, 11, 20, 0, 0, 0, time.UTC)
	next := NextBusinessTime(evening)
	assert.Equal(t, time.Wednesday, next.Weekday())
	assert.Equal(t, 9, next.Hour())

	// Friday 19:00 -> Monday 09:00.
	fridayNight := time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
	next = NextBusinessTime(fridayNight)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 17, next.Day())

	// Tuesday 07:00 -> same day 09:00.
	early := time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC)
	next = NextBusinessTime(early)
	assert.Equal(t, 11, next.Day())
	assert.Equal(t, 9, next.Hour())
}

func TestProcessDueSendsAndMarks(t *testing.T) {
	worker, sender, database := setupWorker(t)
	job := createDueEmail(t, database, "claire@ferme-moreau.fr")

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, []string{"claire@ferme-moreau.fr"}, sender.sent)

	saved, err := db.GetScheduledEmail(database, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, saved.Status)
	require.NotNil(t, saved.SentAt)

	p, err := db.GetProspect(database, job.ProspectID)
	require.NoError(t, err)
	assert.Equal(t, models.EmailingSent, p.EmailingStatus)
}

func TestProcessDueOutsideBusinessHoursReschedules(t *testing.T) {
	worker, sender, database := setupWorker(t)
	job := createDueEmail(t, database, "claire@ferme-moreau.fr")

	worker.Now = func() time.Time {
		return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) // Saturday
	}

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Rescheduled)
	assert.Empty(t, sender.sent)

	saved, err := db.GetScheduledEmail(database, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, saved.Status)
	assert.Equal(t, time.Monday, saved.ScheduledFor.Weekday())
}

func TestProcessDueHonorsHourlyCap(t *testing.T) {
	worker, sender, database := setupWorker(t)
	worker.MaxPerHour = 2
	for i := 0; i < 3; i++ {
		createDueEmail(t, database, "claire@ferme-moreau.fr")
	}

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Len(t, sender.sent, 2)

	// The cap now counts the two fresh sends, so a second pass sends nothing.
	result, err = worker.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
}

func TestProcessDueFailureKeepsJobScheduled(t *testing.T) {
	worker, sender, database := setupWorker(t)
	sender.err = errors.New("smtp unavailable")
	job := createDueEmail(t, database, "claire@ferme-moreau.fr")

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)

	saved, err := db.GetScheduledEmail(database, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, saved.Status)
	assert.Equal(t, 1, saved.Attempts)
}

func TestProcessDueCancelsAfterMaxAttempts(t *testing.T) {
	worker, sender, database := setupWorker(t)
	sender.err = errors.New("smtp unavailable")
	job := createDueEmail(t, database, "claire@ferme-moreau.fr")

	var result Result
	for i := 0; i < MaxAttempts; i++ {
		var err error
		result, err = worker.ProcessDue(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, result.Cancelled)
	assert.Equal(t, 0, result.Failed, "the final attempt counts once, as cancelled")

	saved, err := db.GetScheduledEmail(database, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, saved.Status)
	assert.Equal(t, "max send attempts exceeded", saved.CancelledReason)
}

func TestProcessDueCancelsUndeliverable(t *testing.T) {
	worker, sender, database := setupWorker(t)
	job := createDueEmail(t, database, "")

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Cancelled)
	assert.Empty(t, sender.sent)

	saved, err := db.GetScheduledEmail(database, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, saved.Status)
	assert.Equal(t, "no deliverable address", saved.CancelledReason)
}

func TestProcessDueSkipsPausedJobs(t *testing.T) {
	worker, sender, database := setupWorker(t)
	job := createDueEmail(t, database, "claire@ferme-moreau.fr")

	_, err := db.TransitionSequence(database, job.ProspectID, models.StatusScheduled, models.StatusPaused, "")
	require.NoError(t, err)

	result, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Empty(t, sender.sent)
}
