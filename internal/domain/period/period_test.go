package period_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomina/internal/domain/period"
)

type fakeHistory struct {
	end time.Time
	err error
}

func (f fakeHistory) LastPeriodEnd(_ context.Context, _ string, _ time.Time) (time.Time, error) {
	return f.end, f.err
}

var ref = time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)

func TestResolveCurrentMonthUsesRecordedBoundary(t *testing.T) {
	history := fakeHistory{end: time.Date(2026, time.July, 27, 0, 0, 0, 0, time.UTC)}
	r, err := period.Resolve(context.Background(), period.CurrentMonth, "ana@example.com", ref, history)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.July, 28, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, ref, r.End)
}

func TestResolveCurrentMonthFallbackHeuristic(t *testing.T) {
	history := fakeHistory{err: period.ErrNoHistory}
	r, err := period.Resolve(context.Background(), period.CurrentMonth, "ana@example.com", ref, history)
	require.NoError(t, err)
	// 7 days before the calendar month start stands in for the cutoff.
	assert.Equal(t, time.Date(2026, time.July, 25, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, ref, r.End)
}

func TestResolvePreviousMonth(t *testing.T) {
	history := fakeHistory{err: period.ErrNoHistory}
	r, err := period.Resolve(context.Background(), period.PreviousMonth, "ana@example.com", ref, history)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.June, 24, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), r.End)
}

func TestResolveCalendarYears(t *testing.T) {
	r, err := period.Resolve(context.Background(), period.CurrentYear, "ana@example.com", ref, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), r.End)

	r, err = period.Resolve(context.Background(), period.PreviousYear, "ana@example.com", ref, nil)
	require.NoError(t, err)
	assert.Equal(t, 2025, r.Start.Year())
	assert.Equal(t, 2025, r.End.Year())
}

func TestResolveUnknownShorthand(t *testing.T) {
	_, err := period.Resolve(context.Background(), "whenever", "ana@example.com", ref, nil)
	assert.ErrorIs(t, err, period.ErrUnknownShorthand)
}

func TestResolvePropagatesLookupErrors(t *testing.T) {
	history := fakeHistory{err: context.DeadlineExceeded}
	_, err := period.Resolve(context.Background(), period.CurrentMonth, "ana@example.com", ref, history)
	assert.Error(t, err)
}

func TestValidateCustom(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, period.ValidateCustom(start, start))
	assert.NoError(t, period.ValidateCustom(start, start.AddDate(0, 0, 90)))
	assert.ErrorIs(t, period.ValidateCustom(start, start.AddDate(0, 0, -1)), period.ErrInvalidRange)
	assert.ErrorIs(t, period.ValidateCustom(start, start.AddDate(0, 0, 91)), period.ErrInvalidRange)
}
