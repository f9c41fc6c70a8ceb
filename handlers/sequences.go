// ABOUTME: Sequence MCP tool handlers
// ABOUTME: Implements schedule_sequence, pause/resume/cancel, list_scheduled, and performance tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/profitum/outreach/db"
	"github.com/profitum/outreach/models"
	"github.com/profitum/outreach/report"
	"github.com/profitum/outreach/scheduler"
)

type SequenceHandlers struct {
	db        *sql.DB
	scheduler *scheduler.Scheduler
}

func NewSequenceHandlers(database *sql.DB, sched *scheduler.Scheduler) *SequenceHandlers {
	return &SequenceHandlers{db: database, scheduler: sched}
}

type SequenceStepInput struct {
	Subject   string `json:"subject" jsonschema:"Email subject line (required)"`
	Body      string `json:"body" jsonschema:"Email body text (required)"`
	DelayDays int    `json:"delay_days" jsonschema:"Days after sequence start to send this step"`
}

type ScheduleSequenceInput struct {
	ProspectID string              `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Name       string              `json:"name,omitempty" jsonschema:"Sequence name"`
	Steps      []SequenceStepInput `json:"steps" jsonschema:"Ordered sequence steps with non-decreasing delays (required)"`
	StartDate  string              `json:"start_date,omitempty" jsonschema:"Start date YYYY-MM-DD; timing recommendation decides when omitted"`
	UseTiming  bool                `json:"use_timing,omitempty" jsonschema:"Shape step count and spacing from the prospect's timing analysis"`
}

type ScheduledEmailOutput struct {
	ID           string `json:"id"`
	SequenceID   string `json:"sequence_id,omitempty"`
	StepNumber   int    `json:"step_number"`
	Subject      string `json:"subject"`
	ScheduledFor string `json:"scheduled_for"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

type ScheduleSequenceOutput struct {
	ProspectID string                 `json:"prospect_id"`
	SequenceID string                 `json:"sequence_id"`
	Scheduled  []ScheduledEmailOutput `json:"scheduled"`
}

func (h *SequenceHandlers) ScheduleSequence(_ context.Context, _ *mcp.CallToolRequest, input ScheduleSequenceInput) (*mcp.CallToolResult, ScheduleSequenceOutput, error) {
	id, err := uuid.Parse(input.ProspectID)
	if err != nil {
		return nil, ScheduleSequenceOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}
	if len(input.Steps) == 0 {
		return nil, ScheduleSequenceOutput{}, fmt.Errorf("at least one step is required")
	}

	prospect, err := db.GetProspect(h.db, id)
	if err != nil {
		return nil, ScheduleSequenceOutput{}, fmt.Errorf("failed to load prospect: %w", err)
	}
	if prospect == nil {
		return nil, ScheduleSequenceOutput{}, fmt.Errorf("prospect %s not found", input.ProspectID)
	}

	plan := models.MessagePlan{Name: input.Name}
	for _, step := range input.Steps {
		plan.Steps = append(plan.Steps, models.SequenceStep{
			Subject:   step.Subject,
			Body:      step.Body,
			DelayDays: step.DelayDays,
		})
	}

	var timing *models.TimingFacet
	if prospect.Enrichment.Usable() {
		timing = prospect.Enrichment.Timing
	}
	if input.UseTiming {
		plan = scheduler.AdjustPlan(plan, timing)
	}

	start := scheduler.StartDateFor(timing, time.Now())
	if input.StartDate != "" {
		start, err = time.ParseInLocation("2006-01-02", input.StartDate, time.Local)
		if err != nil {
			return nil, ScheduleSequenceOutput{}, fmt.Errorf("invalid start_date: %w", err)
		}
	}

	emails, err := h.scheduler.ScheduleSequence(id, plan, start)
	if err != nil {
		return nil, ScheduleSequenceOutput{}, fmt.Errorf("failed to schedule sequence: %w", err)
	}

	output := ScheduleSequenceOutput{ProspectID: input.ProspectID}
	for _, email := range emails {
		output.SequenceID = email.SequenceID
		output.Scheduled = append(output.Scheduled, scheduledEmailToOutput(&email))
	}
	return nil, output, nil
}

type SequenceTransitionInput struct {
	ProspectID string `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Reason     string `json:"reason,omitempty" jsonschema:"Reason recorded on cancelled jobs"`
}

type SequenceTransitionOutput struct {
	ProspectID string `json:"prospect_id"`
	Affected   int    `json:"affected"`
}

func (h *SequenceHandlers) PauseSequence(_ context.Context, _ *mcp.CallToolRequest, input SequenceTransitionInput) (*mcp.CallToolResult, SequenceTransitionOutput, error) {
	id, err := uuid.Parse(input.ProspectID)
	if err != nil {
		return nil, SequenceTransitionOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}
	count, err := h.scheduler.PauseSequence(id)
	if err != nil {
		return nil, SequenceTransitionOutput{}, err
	}
	return nil, SequenceTransitionOutput{ProspectID: input.ProspectID, Affected: count}, nil
}

func (h *SequenceHandlers) ResumeSequence(_ context.Context, _ *mcp.CallToolRequest, input SequenceTransitionInput) (*mcp.CallToolResult, SequenceTransitionOutput, error) {
	id, err := uuid.Parse(input.ProspectID)
	if err != nil {
		return nil, SequenceTransitionOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}
	count, err := h.scheduler.ResumeSequence(id)
	if err != nil {
		return nil, SequenceTransitionOutput{}, err
	}
	return nil, SequenceTransitionOutput{ProspectID: input.ProspectID, Affected: count}, nil
}

func (h *SequenceHandlers) CancelSequence(_ context.Context, _ *mcp.CallToolRequest, input SequenceTransitionInput) (*mcp.CallToolResult, SequenceTransitionOutput, error) {
	id, err := uuid.Parse(input.ProspectID)
	if err != nil {
		return nil, SequenceTransitionOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}
	reason := input.Reason
	if reason == "" {
		reason = "cancelled by operator"
	}
	count, err := h.scheduler.CancelSequence(id, reason)
	if err != nil {
		return nil, SequenceTransitionOutput{}, err
	}
	return nil, SequenceTransitionOutput{ProspectID: input.ProspectID, Affected: count}, nil
}

type ListScheduledInput struct {
	ProspectID string `json:"prospect_id" jsonschema:"Prospect ID (required)"`
	Status     string `json:"status,omitempty" jsonschema:"Filter by status (scheduled, sent, paused, cancelled)"`
}

type ListScheduledOutput struct {
	Emails []ScheduledEmailOutput `json:"emails"`
}

func (h *SequenceHandlers) ListScheduled(_ context.Context, _ *mcp.CallToolRequest, input ListScheduledInput) (*mcp.CallToolResult, ListScheduledOutput, error) {
	id, err := uuid.Parse(input.ProspectID)
	if err != nil {
		return nil, ListScheduledOutput{}, fmt.Errorf("invalid prospect id: %w", err)
	}

	emails, err := db.ListScheduledEmails(h.db, id, input.Status)
	if err != nil {
		return nil, ListScheduledOutput{}, fmt.Errorf("failed to list scheduled emails: %w", err)
	}

	output := ListScheduledOutput{}
	for _, email := range emails {
		output.Emails = append(output.Emails, scheduledEmailToOutput(&email))
	}
	return nil, output, nil
}

type PerformanceInput struct {
	From string `json:"from,omitempty" jsonschema:"Start date YYYY-MM-DD"`
	To   string `json:"to,omitempty" jsonschema:"End date YYYY-MM-DD"`
}

func (h *SequenceHandlers) SequencePerformance(_ context.Context, _ *mcp.CallToolRequest, input PerformanceInput) (*mcp.CallToolResult, report.Report, error) {
	var from, to *time.Time
	if input.From != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.From, time.Local)
		if err != nil {
			return nil, report.Report{}, fmt.Errorf("invalid from date: %w", err)
		}
		from = &parsed
	}
	if input.To != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.To, time.Local)
		if err != nil {
			return nil, report.Report{}, fmt.Errorf("invalid to date: %w", err)
		}
		to = &parsed
	}

	r, err := report.Build(h.db, from, to)
	if err != nil {
		return nil, report.Report{}, err
	}
	return nil, *r, nil
}

func scheduledEmailToOutput(email *models.ScheduledEmail) ScheduledEmailOutput {
	return ScheduledEmailOutput{
		ID:           email.ID.String(),
		SequenceID:   email.SequenceID,
		StepNumber:   email.StepNumber,
		Subject:      email.Subject,
		ScheduledFor: email.ScheduledFor.Format("2006-01-02 15:04"),
		Status:       email.Status,
		Reason:       email.CancelledReason,
	}
}
