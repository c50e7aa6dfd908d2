package vacation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nomina/internal/domain/vacation"
)

func datesFor(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("2026-03-%02d", i+2)
	}
	return out
}

func request(state vacation.State, days int, submitted time.Time) vacation.Request {
	return vacation.Request{
		Requester:      "ana@example.com",
		Dates:          datesFor(days),
		RequestedHours: float64(days) * vacation.HoursPerDay,
		State:          state,
		SubmittedAt:    submitted,
	}
}

func at(day int) time.Time {
	return time.Date(2026, time.January, day, 9, 0, 0, 0, time.UTC)
}

func TestReplayApprovalDeducts(t *testing.T) {
	reqs := []vacation.Request{request(vacation.StateApproved, 8, at(1))}
	balance := vacation.ReplayBalance(reqs, 200, vacation.ReplayOptions{})
	assert.Equal(t, 136.0, balance.Available)
	assert.Equal(t, 0.0, balance.Pending)
}

func TestReplayPartialCancellationRefunds(t *testing.T) {
	req := request(vacation.StateApproved, 8, at(1))
	req.Cancellations = []vacation.Cancellation{{
		Dates:       req.Dates[:2],
		CancelledAt: at(5),
	}}
	balance := vacation.ReplayBalance([]vacation.Request{req}, 200, vacation.ReplayOptions{})
	assert.Equal(t, 152.0, balance.Available)
}

func TestReplayPendingTracksExposureOnly(t *testing.T) {
	reqs := []vacation.Request{
		request(vacation.StateApproved, 2, at(1)),
		request(vacation.StatePending, 3, at(2)),
		request(vacation.StateDenied, 5, at(3)),
	}
	balance := vacation.ReplayBalance(reqs, 100, vacation.ReplayOptions{})
	assert.Equal(t, 84.0, balance.Available)
	assert.Equal(t, 24.0, balance.Pending)
}

func TestReplayFullCancellationDeductsThenRefunds(t *testing.T) {
	// A fully cancelled request was once approved: the deduction applies,
	// and the recorded cancellation refunds it back.
	req := request(vacation.StateCancelled, 4, at(1))
	req.Cancellations = []vacation.Cancellation{{Dates: req.Dates, CancelledAt: at(3)}}
	balance := vacation.ReplayBalance([]vacation.Request{req}, 80, vacation.ReplayOptions{})
	assert.Equal(t, 80.0, balance.Available)
}

func TestReplayClampsAvailableAtZero(t *testing.T) {
	reqs := []vacation.Request{request(vacation.StateApproved, 10, at(1))}
	balance := vacation.ReplayBalance(reqs, 40, vacation.ReplayOptions{})
	assert.Equal(t, 0.0, balance.Available)
}

func TestReplayRefundUncappedByDefault(t *testing.T) {
	// Historical behavior: refunds are not checked against the deduction.
	req := request(vacation.StateApproved, 1, at(1))
	req.Cancellations = []vacation.Cancellation{
		{Dates: datesFor(3), CancelledAt: at(2)},
	}
	balance := vacation.ReplayBalance([]vacation.Request{req}, 0, vacation.ReplayOptions{})
	assert.Equal(t, 24.0, balance.Available)
}

func TestReplayRefundCappedWhenEnabled(t *testing.T) {
	req := request(vacation.StateApproved, 1, at(1))
	req.Cancellations = []vacation.Cancellation{
		{Dates: datesFor(3), CancelledAt: at(2)},
	}
	balance := vacation.ReplayBalance([]vacation.Request{req}, 10, vacation.ReplayOptions{CapRefunds: true})
	// deduct 8 (clamped by initial 10 → 2), refund capped at the 8 deducted
	assert.Equal(t, 10.0, balance.Available)
}

func TestReplaySkipsMalformedRequests(t *testing.T) {
	reqs := []vacation.Request{
		{Requester: "ana@example.com", State: vacation.StateApproved, SubmittedAt: at(1)}, // no dates
		request(vacation.StateApproved, 1, at(2)),
	}
	balance := vacation.ReplayBalance(reqs, 16, vacation.ReplayOptions{})
	assert.Equal(t, 8.0, balance.Available)
}

func TestReplaySortsBySubmission(t *testing.T) {
	late := request(vacation.StateApproved, 2, at(9))
	early := request(vacation.StateApproved, 1, at(1))
	outOfOrder := vacation.ReplayBalance([]vacation.Request{late, early}, 30, vacation.ReplayOptions{})
	inOrder := vacation.ReplayBalance([]vacation.Request{early, late}, 30, vacation.ReplayOptions{})
	assert.Equal(t, inOrder, outOfOrder)
}

func TestReplayIdempotent(t *testing.T) {
	req := request(vacation.StateApproved, 3, at(1))
	req.Cancellations = []vacation.Cancellation{{Dates: req.Dates[:1], CancelledAt: at(4)}}
	reqs := []vacation.Request{req, request(vacation.StatePending, 2, at(5))}

	first := vacation.ReplayBalance(reqs, 120, vacation.ReplayOptions{})
	second := vacation.ReplayBalance(reqs, 120, vacation.ReplayOptions{})
	assert.Equal(t, first, second)
}

func TestReplayDefaultsRequestedHoursFromDates(t *testing.T) {
	req := request(vacation.StateApproved, 2, at(1))
	req.RequestedHours = 0
	balance := vacation.ReplayBalance([]vacation.Request{req}, 40, vacation.ReplayOptions{})
	assert.Equal(t, 24.0, balance.Available)
}

func TestReplayDisjointCancellationsNeverOverRefund(t *testing.T) {
	req := request(vacation.StateApproved, 6, at(1))
	req.Cancellations = []vacation.Cancellation{
		{Dates: req.Dates[:2], CancelledAt: at(5)},
		{Dates: req.Dates[2:4], CancelledAt: at(6)},
		{Dates: req.Dates[4:], CancelledAt: at(7)},
	}
	reqs := []vacation.Request{req}

	uncapped := vacation.ReplayBalance(reqs, 200, vacation.ReplayOptions{})
	capped := vacation.ReplayBalance(reqs, 200, vacation.ReplayOptions{CapRefunds: true})

	// Each date is cancelled at most once, so refunds sum to exactly the
	// deduction and the cap never bites.
	assert.Equal(t, 200.0, uncapped.Available)
	assert.Equal(t, uncapped, capped)
}
