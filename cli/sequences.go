// ABOUTME: Sequence CLI commands
// ABOUTME: Commands for listing scheduled emails and pausing, resuming, or cancelling sequences
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/scheduler"
)

// ListScheduledCommand lists a prospect's scheduled emails.
func ListScheduledCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	id := fs.String("prospect", "", "Prospect ID (required)")
	status := fs.String("status", "", "Filter by status (scheduled/sent/paused/cancelled)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--prospect is required")
	}
	prospectID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("invalid prospect id: %w", err)
	}

	emails, err := db.ListScheduledEmails(database, prospectID, *status)
	if err != nil {
		return fmt.Errorf("failed to list scheduled emails: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STEP\tSUBJECT\tSCHEDULED FOR\tSTATUS\tATTEMPTS")
	_, _ = fmt.Fprintln(w, "----\t-------\t-------------\t------\t--------")

	for _, email := range emails {
		status := email.Status
		if email.CancelledReason != "" {
			status = fmt.Sprintf("%s (%s)", email.Status, email.CancelledReason)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			email.StepNumber, email.Subject,
			email.ScheduledFor.Format("2006-01-02 15:04"), status, email.Attempts)
	}

	_ = w.Flush()
	return nil
}

// PauseCommand pauses a prospect's scheduled emails.
func PauseCommand(sched *scheduler.Scheduler, args []string) error {
	return transitionCommand("pause", args, func(id uuid.UUID, _ string) (int, error) {
		return sched.PauseSequence(id)
	})
}

// ResumeCommand resumes a prospect's paused emails.
func ResumeCommand(sched *scheduler.Scheduler, args []string) error {
	return transitionCommand("resume", args, func(id uuid.UUID, _ string) (int, error) {
		return sched.ResumeSequence(id)
	})
}

// CancelCommand cancels a prospect's pending emails.
func CancelCommand(sched *scheduler.Scheduler, args []string) error {
	return transitionCommand("cancel", args, func(id uuid.UUID, reason string) (int, error) {
		if reason == "" {
			reason = "cancelled by operator"
		}
		return sched.CancelSequence(id, reason)
	})
}

func transitionCommand(name string, args []string, fn func(uuid.UUID, string) (int, error)) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("prospect", "", "Prospect ID (required)")
	reason := fs.String("reason", "", "Reason (cancel only)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--prospect is required")
	}
	prospectID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("invalid prospect id: %w", err)
	}

	count, err := fn(prospectID, *reason)
	if err != nil {
		return err
	}
	fmt.Printf("%sd %d emails\n", name, count)
	return nil
}
