package service

import (
	"time"

	"github.com/spec-kit/document-tracking/internal/domain"
)

const (
	urgentDeadlineDays        = 1
	deadlineCountDeadlineDays = 5
)

// DeadlineResult is the day count and due timestamp derived for a document.
// Both fields are nil when no deadline applies.
type DeadlineResult struct {
	DeadlineDays *int
	Deadline     *time.Time
}

// DeadlineCalculator derives deadlines from priority or an explicit day count.
type DeadlineCalculator struct {
	clock    func() time.Time
	location *time.Location
}

// NewDeadlineCalculator builds a calculator. Nil arguments default to time.Now and UTC.
func NewDeadlineCalculator(clock func() time.Time, location *time.Location) *DeadlineCalculator {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &DeadlineCalculator{clock: clock, location: location}
}

// Calculate applies customDays when positive, otherwise the priority default.
func (c *DeadlineCalculator) Calculate(priority domain.Priority, customDays *int) DeadlineResult {
	days := 0
	switch {
	case customDays != nil && *customDays > 0:
		days = *customDays
	case priority == domain.PriorityUrgent:
		days = urgentDeadlineDays
	case priority == domain.PriorityDeadlineCount:
		days = deadlineCountDeadlineDays
	default:
		return DeadlineResult{}
	}
	return c.fromDays(days)
}

// ForMove computes the deadline set by a move. A missing or non-positive
// day count clears the deadline.
func (c *DeadlineCalculator) ForMove(customDays *int) DeadlineResult {
	if customDays == nil || *customDays <= 0 {
		return DeadlineResult{}
	}
	return c.fromDays(*customDays)
}

// DeadlineDate adds days calendar days to base in the configured location.
func (c *DeadlineCalculator) DeadlineDate(base time.Time, days int) time.Time {
	return base.In(c.location).AddDate(0, 0, days)
}

func (c *DeadlineCalculator) fromDays(days int) DeadlineResult {
	deadline := c.DeadlineDate(c.clock(), days)
	return DeadlineResult{DeadlineDays: &days, Deadline: &deadline}
}
