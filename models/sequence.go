// ABOUTME: Sequence and scheduled email models
// ABOUTME: Defines message plans, scheduled email jobs, and their status machine
package models

import (
	"time"

	"github.com/google/uuid"
)

// SequenceStep is one step of a generated message plan. DelayDays is
// relative to the sequence start date; plans must carry non-decreasing
// delays in step order.
type SequenceStep struct {
	StepNumber int    `json:"step_number"`
	DelayDays  int    `json:"delay_days"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// MessagePlan is an ordered set of steps produced by the sequence
// generator. The scheduler only attaches dates; it never rewrites content.
type MessagePlan struct {
	Steps []SequenceStep `json:"steps"`
	Name  string         `json:"name,omitempty"`
}

// Scheduled email status machine:
//
//	scheduled -> sent       (terminal, reported by the delivery worker)
//	scheduled -> cancelled  (terminal, explicit cancel with reason)
//	scheduled <-> paused    (reversible, original send date kept)
const (
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusCancelled = "cancelled"
	StatusPaused    = "paused"
)

// ScheduledEmail is one outbound message slot owned by the scheduler.
type ScheduledEmail struct {
	ID              uuid.UUID  `json:"id"`
	ProspectID      uuid.UUID  `json:"prospect_id"`
	SequenceID      string     `json:"sequence_id,omitempty"`
	SequenceName    string     `json:"sequence_name,omitempty"`
	StepNumber      int        `json:"step_number"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body"`
	ScheduledFor    time.Time  `json:"scheduled_for"`
	Status          string     `json:"status"`
	CancelledReason string     `json:"cancelled_reason,omitempty"`
	Attempts        int        `json:"attempts"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	Opened          bool       `json:"opened"`
	Clicked         bool       `json:"clicked"`
	Replied         bool       `json:"replied"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
