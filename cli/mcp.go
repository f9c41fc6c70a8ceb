// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server exposing prospect, enrichment, and sequence tools on stdio
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/profitum/outreach/cache"
	"github.com/profitum/outreach/enrich"
	"github.com/profitum/outreach/handlers"
	"github.com/profitum/outreach/scheduler"
)

// MCPCommand starts the MCP server on stdio.
func MCPCommand(database *sql.DB, store *cache.Store, orchestrator *enrich.Orchestrator, sched *scheduler.Scheduler) error {
	log.Println("Starting outreach MCP server...")

	prospectHandlers := handlers.NewProspectHandlers(database, store)
	enrichmentHandlers := handlers.NewEnrichmentHandlers(database, store, orchestrator)
	sequenceHandlers := handlers.NewSequenceHandlers(database, sched)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "outreach",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_prospect",
		Description: "Add or update a prospect (matched by registration id or company+email)",
	}, prospectHandlers.AddProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_prospects",
		Description: "Search prospects by company, last name, or email",
	}, prospectHandlers.FindProspects)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_prospect",
		Description: "Update a prospect's identity fields (invalidates cached research)",
	}, prospectHandlers.UpdateProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "enrich_prospect",
		Description: "Run the four-stage enrichment pipeline for a prospect, reusing cached facets",
	}, enrichmentHandlers.EnrichProspect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_completeness",
		Description: "Score how complete a prospect's enrichment is and what to recompute",
	}, enrichmentHandlers.CheckCompleteness)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "prospect_summary",
		Description: "Digest a prospect's enrichment into key points, openers, and next actions",
	}, enrichmentHandlers.ProspectSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "invalidate_cache",
		Description: "Drop cached enrichment facets for a prospect",
	}, enrichmentHandlers.InvalidateCache)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "schedule_sequence",
		Description: "Schedule an email sequence for a prospect with weekend-aware send dates",
	}, sequenceHandlers.ScheduleSequence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pause_sequence",
		Description: "Pause all scheduled emails for a prospect",
	}, sequenceHandlers.PauseSequence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_sequence",
		Description: "Resume a paused sequence with original send dates",
	}, sequenceHandlers.ResumeSequence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_sequence",
		Description: "Cancel a prospect's pending emails with a reason",
	}, sequenceHandlers.CancelSequence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_scheduled",
		Description: "List a prospect's scheduled emails, optionally filtered by status",
	}, sequenceHandlers.ListScheduled)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sequence_performance",
		Description: "Report open/click/reply/conversion rates globally and per step",
	}, sequenceHandlers.SequencePerformance)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
