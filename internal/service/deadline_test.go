package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/document-tracking/internal/domain"
)

func TestDeadlineCalculator_Calculate(t *testing.T) {
	calc := NewDeadlineCalculator(func() time.Time { return fixedNow }, nil)

	urgent := calc.Calculate(domain.PriorityUrgent, nil)
	require.NotNil(t, urgent.DeadlineDays)
	assert.Equal(t, 1, *urgent.DeadlineDays)
	assert.Equal(t, fixedNow.AddDate(0, 0, 1), *urgent.Deadline)

	counted := calc.Calculate(domain.PriorityDeadlineCount, nil)
	assert.Equal(t, 5, *counted.DeadlineDays)

	normal := calc.Calculate(domain.PriorityNormal, nil)
	assert.Nil(t, normal.DeadlineDays)
	assert.Nil(t, normal.Deadline)

	custom := calc.Calculate(domain.PriorityNormal, intPtr(10))
	assert.Equal(t, 10, *custom.DeadlineDays)

	// zero or negative custom days fall back to the priority default
	assert.Equal(t, 1, *calc.Calculate(domain.PriorityUrgent, intPtr(0)).DeadlineDays)
	assert.Nil(t, calc.Calculate(domain.PriorityNormal, intPtr(-2)).DeadlineDays)
}

func TestDeadlineCalculator_ForMove(t *testing.T) {
	calc := NewDeadlineCalculator(func() time.Time { return fixedNow }, nil)
	assert.Nil(t, calc.ForMove(nil).Deadline)
	assert.Nil(t, calc.ForMove(intPtr(0)).Deadline)
	assert.Equal(t, fixedNow.AddDate(0, 0, 3), *calc.ForMove(intPtr(3)).Deadline)
}

func TestDeadlineCalculator_UsesCalendarDaysInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	calc := NewDeadlineCalculator(nil, loc)

	base := time.Date(2026, 2, 27, 23, 0, 0, 0, loc)
	got := calc.DeadlineDate(base, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 23, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}
