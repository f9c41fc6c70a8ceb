// ABOUTME: Message plan shaping from the timing recommendation
// ABOUTME: Default step spacing plus timing-driven length and delay adjustments
package scheduler

import (
	"time"

	"github.com/profitum/outreach/models"
)

// postponeDelay is how far a postpone recommendation pushes the start.
const postponeDelay = 14 * 24 * time.Hour

// InitialDelays returns the default spacing for a fresh plan: the first
// step sends immediately, then gaps widen by one day each step (0, 3, 7,
// 12, ...).
func InitialDelays(steps int) []int {
	delays := make([]int, 0, steps)
	delay := 0
	for i := 0; i < steps; i++ {
		delays = append(delays, delay)
		delay += 3 + i
	}
	return delays
}

// AdjustPlan reshapes a generated plan according to the timing facet. A nil
// or zero-confidence facet leaves the plan untouched. The recommended step
// count can only shorten a plan; explicit step delays override spacing for
// the steps they cover.
func AdjustPlan(plan models.MessagePlan, timing *models.TimingFacet) models.MessagePlan {
	if timing == nil || timing.Confidence == 0 {
		return plan
	}

	steps := make([]models.SequenceStep, len(plan.Steps))
	copy(steps, plan.Steps)

	target := len(steps)
	if timing.RecommendedSteps > 0 && timing.RecommendedSteps < target {
		target = timing.RecommendedSteps
	} else if timing.StepAdjustment < 0 && len(steps)+timing.StepAdjustment >= 1 {
		target = len(steps) + timing.StepAdjustment
	}
	steps = steps[:target]

	for i := range steps {
		if i < len(timing.StepDelays) {
			steps[i].DelayDays = timing.StepDelays[i]
		}
	}

	return models.MessagePlan{Name: plan.Name, Steps: steps}
}

// StartDateFor picks the sequence start from the timing recommendation:
// postpone pushes out two weeks, anything else starts now.
func StartDateFor(timing *models.TimingFacet, now time.Time) time.Time {
	if timing != nil && timing.Action == models.ActionPostpone {
		return now.Add(postponeDelay)
	}
	return now
}
