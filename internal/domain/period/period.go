// Package period resolves named period shorthands into concrete date
// ranges, anchored either to the calendar or to previously recorded payroll
// period boundaries.
package period

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Shorthand string

const (
	CurrentMonth  Shorthand = "current_month"
	PreviousMonth Shorthand = "previous_month"
	Last3Months   Shorthand = "last_3_months"
	CurrentYear   Shorthand = "current_year"
	PreviousYear  Shorthand = "previous_year"
	Custom        Shorthand = "custom"
)

// MaxCustomSpanDays bounds explicit ranges.
const MaxCustomSpanDays = 90

var (
	ErrUnknownShorthand = errors.New("unknown period shorthand")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrNoHistory        = errors.New("no payroll history")
)

type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HistoryLookup exposes the stored period boundary of the nearest prior
// payroll record. Implemented by the payroll store.
type HistoryLookup interface {
	LastPeriodEnd(ctx context.Context, email string, before time.Time) (time.Time, error)
}

// Resolve turns a shorthand into a concrete range for the given employee.
//
// Payroll-anchored shorthands (current/previous month, last 3 months) start
// the day after the recorded end of the nearest prior payroll period; only
// when no such record exists do they fall back to a calendar heuristic of 7
// days before the month start, standing in for "day after the previous
// payroll cutoff". Calendar shorthands resolve to Jan 1 – Dec 31.
func Resolve(ctx context.Context, shorthand Shorthand, email string, ref time.Time, lookup HistoryLookup) (Range, error) {
	switch shorthand {
	case CurrentMonth:
		return payrollAnchored(ctx, email, ref, monthStart(ref), lookup)
	case PreviousMonth:
		end := monthStart(ref).AddDate(0, 0, -1)
		return payrollAnchored(ctx, email, end, monthStart(end), lookup)
	case Last3Months:
		return payrollAnchored(ctx, email, ref, monthStart(ref).AddDate(0, -3, 0), lookup)
	case CurrentYear:
		return yearRange(ref.Year(), ref.Location()), nil
	case PreviousYear:
		return yearRange(ref.Year()-1, ref.Location()), nil
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrUnknownShorthand, shorthand)
	}
}

// ValidateCustom checks an explicit range: start must not follow end and
// the span is capped at MaxCustomSpanDays.
func ValidateCustom(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: start after end", ErrInvalidRange)
	}
	if end.Sub(start) > MaxCustomSpanDays*24*time.Hour {
		return fmt.Errorf("%w: span exceeds %d days", ErrInvalidRange, MaxCustomSpanDays)
	}
	return nil
}

func payrollAnchored(ctx context.Context, email string, end, calendarAnchor time.Time, lookup HistoryLookup) (Range, error) {
	if lookup != nil {
		last, err := lookup.LastPeriodEnd(ctx, email, end)
		if err == nil {
			return Range{Start: last.AddDate(0, 0, 1), End: end}, nil
		}
		if !errors.Is(err, ErrNoHistory) {
			return Range{}, err
		}
	}
	// No recorded payroll boundary: approximate the previous cutoff as 7
	// days before the calendar month start.
	return Range{Start: calendarAnchor.AddDate(0, 0, -7), End: end}, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func yearRange(year int, loc *time.Location) Range {
	return Range{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
	}
}
