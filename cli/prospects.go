// ABOUTME: Prospect CLI commands
// ABOUTME: Commands for adding, listing, scoring, and enriching prospects
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/enrich"
	"github.com/profitum/outreach/models"
)

// AddProspectCommand adds or updates a prospect.
func AddProspectCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	company := fs.String("company", "", "Company name (required)")
	firstName := fs.String("first-name", "", "Contact first name")
	lastName := fs.String("last-name", "", "Contact last name")
	email := fs.String("email", "", "Contact email")
	jobTitle := fs.String("job-title", "", "Contact job title")
	registrationID := fs.String("registration-id", "", "Company registration number")
	website := fs.String("website", "", "Company website")
	_ = fs.Parse(args)

	if *company == "" {
		return fmt.Errorf("--company is required")
	}

	prospect := &models.Prospect{
		Company:        *company,
		FirstName:      *firstName,
		LastName:       *lastName,
		Email:          *email,
		JobTitle:       *jobTitle,
		RegistrationID: *registrationID,
		Website:        *website,
	}
	if err := db.UpsertProspect(database, prospect); err != nil {
		return fmt.Errorf("failed to save prospect: %w", err)
	}

	fmt.Printf("Saved prospect %s (%s)\n", prospect.FullName(), prospect.ID)
	return nil
}

// ListProspectsCommand lists prospects with their completeness scores.
func ListProspectsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Search query")
	limit := fs.Int("limit", 20, "Maximum number of results")
	_ = fs.Parse(args)

	prospects, err := db.FindProspects(database, *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to list prospects: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tSCORE\tSTATUS")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t-----\t------")

	for _, p := range prospects {
		score := enrich.Score(&p)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(p.ID), p.FullName(), p.Company, p.Email, score.Score, p.EmailingStatus)
	}

	_ = w.Flush()
	return nil
}

// ScoreCommand prints the completeness verdict for one prospect.
func ScoreCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	id := fs.String("id", "", "Prospect ID (required)")
	_ = fs.Parse(args)

	prospect, err := loadProspect(database, *id)
	if err != nil {
		return err
	}

	result := enrich.Score(prospect)
	fmt.Printf("Prospect: %s (%s)\n", prospect.FullName(), prospect.Company)
	fmt.Printf("Score: %d/100 -> %s\n", result.Score, result.Recommendation)
	if len(result.MissingFields) > 0 {
		fmt.Printf("Missing: %s\n", strings.Join(result.MissingFields, ", "))
	}
	if len(result.PartialFields) > 0 {
		fmt.Printf("Partial: %s\n", strings.Join(result.PartialFields, ", "))
	}
	return nil
}

// EnrichCommand runs the enrichment pipeline for one prospect.
func EnrichCommand(database *sql.DB, orchestrator *enrich.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	id := fs.String("id", "", "Prospect ID (required)")
	force := fs.Bool("force", false, "Recompute every facet, ignoring caches")
	_ = fs.Parse(args)

	prospect, err := loadProspect(database, *id)
	if err != nil {
		return err
	}

	snapshot, err := orchestrator.EnrichProspect(context.Background(), prospect, *force)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	fmt.Printf("Enriched %s (version %s)\n", prospect.FullName(), snapshot.Version)
	if snapshot.Operational != nil {
		fmt.Printf("  Operational completeness: %d, attractiveness: %d\n",
			snapshot.Operational.DataCompleteness, snapshot.Operational.AttractivenessScore)
	}
	if snapshot.Timing != nil {
		fmt.Printf("  Timing: %s (score %d)\n", snapshot.Timing.Action, snapshot.Timing.TimingScore)
	}
	return nil
}

func loadProspect(database *sql.DB, id string) (*models.Prospect, error) {
	if id == "" {
		return nil, fmt.Errorf("--id is required")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid prospect id: %w", err)
	}
	prospect, err := db.GetProspect(database, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, fmt.Errorf("prospect %s not found", id)
	}
	return prospect, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
