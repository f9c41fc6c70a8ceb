// ABOUTME: Scheduled email database operations
// ABOUTME: Handles job creation, due queries, status transitions, and outcome updates
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/profitum/outreach/models"
)

func CreateScheduledEmail(db *sql.DB, email *models.ScheduledEmail) error {
	if email.ID == uuid.Nil {
		email.ID = uuid.New()
	}
	now := time.Now()
	email.CreatedAt = now
	email.UpdatedAt = now
	if email.Status == "" {
		email.Status = models.StatusScheduled
	}

	_, err := db.Exec(`
		INSERT INTO scheduled_emails (id, prospect_id, sequence_id, sequence_name, step_number,
			subject, body, scheduled_for, status, cancelled_reason, attempts, sent_at,
			opened, clicked, replied, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, email.ID.String(), email.ProspectID.String(), email.SequenceID, email.SequenceName,
		email.StepNumber, email.Subject, email.Body, email.ScheduledFor, email.Status,
		email.CancelledReason, email.Attempts, email.SentAt,
		email.Opened, email.Clicked, email.Replied, email.CreatedAt, email.UpdatedAt)

	return err
}

func GetScheduledEmail(db *sql.DB, id uuid.UUID) (*models.ScheduledEmail, error) {
	row := db.QueryRow(selectScheduled+` WHERE id = ?`, id.String())
	email, err := scanScheduledEmail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return email, err
}

// ListScheduledEmails returns a prospect's jobs, optionally filtered by
// status, ordered by send date.
func ListScheduledEmails(db *sql.DB, prospectID uuid.UUID, status string) ([]models.ScheduledEmail, error) {
	var rows *sql.Rows
	var err error

	if status != "" {
		rows, err = db.Query(selectScheduled+`
			WHERE prospect_id = ? AND status = ?
			ORDER BY scheduled_for ASC
		`, prospectID.String(), status)
	} else {
		rows, err = db.Query(selectScheduled+`
			WHERE prospect_id = ?
			ORDER BY scheduled_for ASC
		`, prospectID.String())
	}
	if err != nil {
		return nil, err
	}
	return collectScheduledEmails(rows)
}

// ListDueEmails returns scheduled jobs whose send time has arrived.
func ListDueEmails(db *sql.DB, now time.Time, limit int) ([]models.ScheduledEmail, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(selectScheduled+`
		WHERE status = ? AND scheduled_for <= ?
		ORDER BY scheduled_for ASC
		LIMIT ?
	`, models.StatusScheduled, now, limit)
	if err != nil {
		return nil, err
	}
	return collectScheduledEmails(rows)
}

// MarkEmailSent transitions one job scheduled -> sent. The guard on the
// current status keeps sent/cancelled rows terminal.
func MarkEmailSent(db *sql.DB, id uuid.UUID, sentAt time.Time) error {
	result, err := db.Exec(`
		UPDATE scheduled_emails
		SET status = ?, sent_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusSent, sentAt, time.Now(), id.String(), models.StatusScheduled)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("scheduled email %s is not in scheduled status", id)
	}
	return nil
}

// RecordSendAttempt bumps the attempt counter after a failed send; the row
// stays scheduled for retry.
func RecordSendAttempt(db *sql.DB, id uuid.UUID) error {
	_, err := db.Exec(`
		UPDATE scheduled_emails SET attempts = attempts + 1, updated_at = ? WHERE id = ?
	`, time.Now(), id.String())
	return err
}

// RescheduleEmail moves a job's send time, e.g. out of off-hours.
func RescheduleEmail(db *sql.DB, id uuid.UUID, scheduledFor time.Time) error {
	_, err := db.Exec(`
		UPDATE scheduled_emails SET scheduled_for = ?, updated_at = ? WHERE id = ?
	`, scheduledFor, time.Now(), id.String())
	return err
}

// TransitionSequence flips every job of a prospect from one status to
// another, returning how many rows moved. Zero is a valid outcome.
func TransitionSequence(db *sql.DB, prospectID uuid.UUID, from, to, reason string) (int, error) {
	var result sql.Result
	var err error

	if to == models.StatusCancelled {
		result, err = db.Exec(`
			UPDATE scheduled_emails
			SET status = ?, cancelled_reason = ?, updated_at = ?
			WHERE prospect_id = ? AND status = ?
		`, to, reason, time.Now(), prospectID.String(), from)
	} else {
		result, err = db.Exec(`
			UPDATE scheduled_emails
			SET status = ?, updated_at = ?
			WHERE prospect_id = ? AND status = ?
		`, to, time.Now(), prospectID.String(), from)
	}
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// CancelScheduledEmail cancels a single job with a reason. Only scheduled
// jobs move; zero affected rows means the job was already terminal.
func CancelScheduledEmail(db *sql.DB, id uuid.UUID, reason string) error {
	_, err := db.Exec(`
		UPDATE scheduled_emails
		SET status = ?, cancelled_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, models.StatusCancelled, reason, time.Now(), id.String(), models.StatusScheduled)
	return err
}

// RecordOutcome sets engagement flags reported back by tracking.
func RecordOutcome(db *sql.DB, id uuid.UUID, opened, clicked, replied bool) error {
	_, err := db.Exec(`
		UPDATE scheduled_emails
		SET opened = opened OR ?, clicked = clicked OR ?, replied = replied OR ?, updated_at = ?
		WHERE id = ?
	`, opened, clicked, replied, time.Now(), id.String())
	return err
}

// CountSentSince returns how many emails went out after the given time,
// used for the hourly send cap.
func CountSentSince(db *sql.DB, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM scheduled_emails WHERE sent_at IS NOT NULL AND sent_at >= ?
	`, since).Scan(&count)
	return count, err
}

const selectScheduled = `
	SELECT id, prospect_id, sequence_id, sequence_name, step_number, subject, body,
		scheduled_for, status, cancelled_reason, attempts, sent_at,
		opened, clicked, replied, created_at, updated_at
	FROM scheduled_emails`

func collectScheduledEmails(rows *sql.Rows) ([]models.ScheduledEmail, error) {
	defer func() {
		_ = rows.Close()
	}()

	var emails []models.ScheduledEmail
	for rows.Next() {
		email, err := scanScheduledEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, rows.Err()
}

func scanScheduledEmail(row rowScanner) (*models.ScheduledEmail, error) {
	email := &models.ScheduledEmail{}
	var idStr, prospectIDStr string
	var cancelledReason sql.NullString
	var sentAt sql.NullTime

	err := row.Scan(
		&idStr,
		&prospectIDStr,
		&email.SequenceID,
		&email.SequenceName,
		&email.StepNumber,
		&email.Subject,
		&email.Body,
		&email.ScheduledFor,
		&email.Status,
		&cancelledReason,
		&email.Attempts,
		&sentAt,
		&email.Opened,
		&email.Clicked,
		&email.Replied,
		&email.CreatedAt,
		&email.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	email.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email ID: %w", err)
	}
	email.ProspectID, err = uuid.Parse(prospectIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prospect ID: %w", err)
	}

	if cancelledReason.Valid {
		email.CancelledReason = cancelledReason.String
	}
	if sentAt.Valid {
		t := sentAt.Time
		email.SentAt = &t
	}

	return email, nil
}
