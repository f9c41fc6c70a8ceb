// ABOUTME: Delivery CLI commands
// ABOUTME: Google authorization, one-shot due sending, and the polling worker loop
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/profitum/outreach/delivery"
)

// AuthCommand runs the Google OAuth flow and stores the token.
func AuthCommand(args []string) error {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := delivery.Authorize(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Token saved to %s\n", delivery.TokenPath())
	return nil
}

// SendDueCommand runs one delivery pass over due emails.
func SendDueCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("send-due", flag.ExitOnError)
	maxPerHour := fs.Int("max-per-hour", delivery.DefaultMaxPerHour, "Hourly send cap")
	_ = fs.Parse(args)

	worker, err := newWorker(database, *maxPerHour)
	if err != nil {
		return err
	}

	result, err := worker.ProcessDue(context.Background())
	if err != nil {
		return fmt.Errorf("delivery pass failed: %w", err)
	}

	fmt.Printf("Sent %d, failed %d, rescheduled %d, cancelled %d\n",
		result.Sent, result.Failed, result.Rescheduled, result.Cancelled)
	return nil
}

// WorkerCommand polls for due emails until interrupted.
func WorkerCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	interval := fs.Duration("interval", 5*time.Minute, "Polling interval")
	maxPerHour := fs.Int("max-per-hour", delivery.DefaultMaxPerHour, "Hourly send cap")
	_ = fs.Parse(args)

	worker, err := newWorker(database, *maxPerHour)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Delivery worker polling every %s\n", *interval)
	worker.Run(ctx, *interval)
	return nil
}

func newWorker(database *sql.DB, maxPerHour int) (*delivery.Worker, error) {
	token, err := delivery.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("not authorized, run 'outreach auth' first: %w", err)
	}

	from := os.Getenv("OUTREACH_FROM_EMAIL")
	if from == "" {
		return nil, fmt.Errorf("OUTREACH_FROM_EMAIL is not set")
	}

	sender, err := delivery.NewGmailSender(context.Background(), token, from)
	if err != nil {
		return nil, err
	}

	return &delivery.Worker{
		DB:         database,
		Sender:     sender,
		MaxPerHour: maxPerHour,
		MaxPause:   30 * time.Second,
	}, nil
}
