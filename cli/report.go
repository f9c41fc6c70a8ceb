// ABOUTME: Performance report CLI command
// ABOUTME: Prints global and per-step delivery rates
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/profitum/outreach/report"
)

// ReportCommand prints sequence performance rates.
func ReportCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	fromFlag := fs.String("from", "", "Start date (YYYY-MM-DD)")
	toFlag := fs.String("to", "", "End date (YYYY-MM-DD)")
	_ = fs.Parse(args)

	var from, to *time.Time
	if *fromFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *fromFlag, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		from = &parsed
	}
	if *toFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *toFlag, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		to = &parsed
	}

	r, err := report.Build(database, from, to)
	if err != nil {
		return err
	}

	fmt.Println("SEQUENCE PERFORMANCE")
	if r.Period != "" {
		fmt.Printf("Period: %s\n", r.Period)
	}
	fmt.Printf("Sent: %d  Open: %.1f%%  Click: %.1f%%  Reply: %.1f%%  Conversion: %.1f%%\n\n",
		r.Global.Sent, r.Global.OpenRate, r.Global.ClickRate, r.Global.ReplyRate, r.Global.ConversionRate)

	if len(r.PerStep) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STEP\tSENT\tOPEN\tCLICK\tREPLY")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t-----\t-----")
	for _, step := range r.PerStep {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%.1f%%\t%.1f%%\t%.1f%%\n",
			step.StepNumber, step.Sent, step.OpenRate, step.ClickRate, step.ReplyRate)
	}
	_ = w.Flush()
	return nil
}
