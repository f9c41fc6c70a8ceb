// ABOUTME: Entry point for the outreach MCP server and CLI
// ABOUTME: Routes to MCP server or CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/profitum/outreach/cache"
	"github.com/profitum/outreach/cli"
	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/enrich"
	"github.com/profitum/outreach/scheduler"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/outreach/outreach.db)")
	cachePath := flag.String("cache-path", "", "Cache directory (default: ~/.local/share/outreach/cache)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("outreach version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	database, err := db.OpenDatabase(databasePath(*dbPath))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	store, err := cache.Open(cache.Options{Path: cacheDir(*cachePath)})
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer func() { _ = store.Close() }()

	sched := &scheduler.Scheduler{DB: database}
	orchestrator := &enrich.Orchestrator{
		DB:       database,
		Cache:    store,
		Provider: enrich.NewHTTPProvider(os.Getenv("OUTREACH_PROVIDER_URL"), os.Getenv("OUTREACH_PROVIDER_KEY")),
	}

	switch command {
	case "mcp":
		stop := make(chan struct{})
		defer close(stop)
		go store.Run(stop, time.Hour)

		if err := cli.MCPCommand(database, store, orchestrator, sched); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "prospects":
		runSubcommand(commandArgs, map[string]func([]string) error{
			"add":    func(a []string) error { return cli.AddProspectCommand(database, a) },
			"list":   func(a []string) error { return cli.ListProspectsCommand(database, a) },
			"score":  func(a []string) error { return cli.ScoreCommand(database, a) },
			"enrich": func(a []string) error { return cli.EnrichCommand(database, orchestrator, a) },
		})

	case "sequences":
		runSubcommand(commandArgs, map[string]func([]string) error{
			"list":   func(a []string) error { return cli.ListScheduledCommand(database, a) },
			"pause":  func(a []string) error { return cli.PauseCommand(sched, a) },
			"resume": func(a []string) error { return cli.ResumeCommand(sched, a) },
			"cancel": func(a []string) error { return cli.CancelCommand(sched, a) },
		})

	case "auth":
		if err := cli.AuthCommand(commandArgs); err != nil {
			log.Fatalf("Authorization failed: %v", err)
		}

	case "send-due":
		if err := cli.SendDueCommand(database, commandArgs); err != nil {
			log.Fatalf("Send failed: %v", err)
		}

	case "worker":
		stop := make(chan struct{})
		defer close(stop)
		go store.Run(stop, time.Hour)

		if err := cli.WorkerCommand(database, commandArgs); err != nil {
			log.Fatalf("Worker failed: %v", err)
		}

	case "report":
		if err := cli.ReportCommand(database, commandArgs); err != nil {
			log.Fatalf("Report failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runSubcommand(args []string, commands map[string]func([]string) error) {
	if len(args) == 0 {
		fmt.Println("Error: subcommand required")
		printUsage()
		os.Exit(1)
	}
	fn, ok := commands[args[0]]
	if !ok {
		fmt.Printf("Unknown subcommand: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err := fn(args[1:]); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func databasePath(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv("OUTREACH_DB_PATH"); env != "" {
		return env
	}
	return filepath.Join(xdg.DataHome, "outreach", "outreach.db")
}

func cacheDir(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv("OUTREACH_CACHE_PATH"); env != "" {
		return env
	}
	return cache.DefaultPath(xdg.DataHome)
}

func printUsage() {
	fmt.Println(`outreach - prospect enrichment and email sequencing

Usage:
  outreach mcp                          Start the MCP server on stdio
  outreach prospects add [flags]        Add or update a prospect
  outreach prospects list [flags]       List prospects with completeness scores
  outreach prospects score --id ID      Show a prospect's completeness verdict
  outreach prospects enrich --id ID     Run the enrichment pipeline
  outreach sequences list --prospect ID List scheduled emails
  outreach sequences pause --prospect ID
  outreach sequences resume --prospect ID
  outreach sequences cancel --prospect ID [--reason R]
  outreach auth                         Authorize Gmail sending
  outreach send-due                     Run one delivery pass
  outreach worker [--interval D]        Poll and deliver due emails
  outreach report [--from D] [--to D]   Sequence performance rates

Flags:
  --version      Show version
  --db-path      Database path (or OUTREACH_DB_PATH)
  --cache-path   Cache directory (or OUTREACH_CACHE_PATH)

Environment:
  OUTREACH_PROVIDER_URL   Research service base URL
  OUTREACH_PROVIDER_KEY   Research service API key
  GOOGLE_CLIENT_ID        Google OAuth client id
  GOOGLE_CLIENT_SECRET    Google OAuth client secret
  OUTREACH_FROM_EMAIL     Sender address for scheduled emails`)
}
