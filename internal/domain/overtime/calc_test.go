package overtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomina/internal/domain/overtime"
)

func entry(eType overtime.EntryType, hours, minutes int, rate float64) overtime.Entry {
	e := overtime.Entry{
		Date:    time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Type:    eType,
		Hours:   hours,
		Minutes: minutes,
		Rate:    rate,
	}
	e.Amount = e.ComputedAmount()
	return e
}

func TestComputeTotalsSimple(t *testing.T) {
	e := entry(overtime.TypeNormal, 2, 30, 10)
	assert.InDelta(t, 25.0, e.Amount, 1e-9)

	totals := overtime.ComputeTotals([]overtime.Entry{e, e})
	assert.InDelta(t, 5.0, totals.TotalHours, 1e-9)
	assert.InDelta(t, 50.0, totals.TotalAmount, 1e-9)

	byType, ok := totals.ByType[overtime.TypeNormal]
	require.True(t, ok)
	assert.Equal(t, 2, byType.Count)
	assert.InDelta(t, 5.0, byType.Hours, 1e-9)
	assert.InDelta(t, 50.0, byType.Amount, 1e-9)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := overtime.ComputeTotals(nil)
	assert.Zero(t, totals.TotalHours)
	assert.Zero(t, totals.TotalAmount)
	assert.Empty(t, totals.ByType)
}

func TestComputeTotalsUsesStoredAmount(t *testing.T) {
	e := entry(overtime.TypeNight, 1, 0, 12)
	e.Amount = 99 // stale stored value wins over recomputation
	totals := overtime.ComputeTotals([]overtime.Entry{e})
	assert.InDelta(t, 99.0, totals.TotalAmount, 1e-9)
}

func TestComputeTotalsRecomputesMissingAmount(t *testing.T) {
	e := entry(overtime.TypeHoliday, 3, 15, 20)
	e.Amount = 0
	totals := overtime.ComputeTotals([]overtime.Entry{e})
	assert.InDelta(t, 65.0, totals.TotalAmount, 1e-9)
}

func TestComputeTotalsAdditivity(t *testing.T) {
	all := []overtime.Entry{
		entry(overtime.TypeNormal, 2, 30, 10),
		entry(overtime.TypeNight, 1, 45, 12),
		entry(overtime.TypeHoliday, 0, 50, 15),
		entry(overtime.TypeHolidayNight, 4, 0, 18),
		entry(overtime.TypeNormal, 0, 0, 10),
	}
	for split := 0; split <= len(all); split++ {
		left := overtime.ComputeTotals(all[:split])
		right := overtime.ComputeTotals(all[split:])
		whole := overtime.ComputeTotals(all)
		assert.InDelta(t, whole.TotalHours, left.TotalHours+right.TotalHours, 1e-9)
		assert.InDelta(t, whole.TotalAmount, left.TotalAmount+right.TotalAmount, 1e-9)
	}
}

func TestTypeDisplayAttributesStable(t *testing.T) {
	totals := overtime.ComputeTotals([]overtime.Entry{
		entry(overtime.TypeHolidayNight, 1, 0, 10),
		entry(overtime.TypeNormal, 1, 0, 10),
	})
	assert.Equal(t, 0, totals.ByType[overtime.TypeNormal].Order)
	assert.Equal(t, 3, totals.ByType[overtime.TypeHolidayNight].Order)
	assert.NotEmpty(t, totals.ByType[overtime.TypeNormal].Color)
}
