package vacation

import "sort"

// Balance is the derived ledger state for one employee. Available is a real
// balance; Pending is exposure from undecided requests, cleared at decision
// time by virtue of the replay (a decided request no longer counts here).
type Balance struct {
	Available float64 `json:"availableHours"`
	Pending   float64 `json:"pendingHours"`
}

// ReplayOptions tune ledger behavior. The zero value reproduces the
// historical semantics exactly.
type ReplayOptions struct {
	// CapRefunds clamps the cumulative refunds of a request at its original
	// deduction. Off by default: historically a cancellation refunded
	// len(dates)×8 unconditionally, even past what the approval deducted.
	CapRefunds bool
}

// ReplayBalance derives the available/pending balances by replaying the
// requests in ascending submission order from initialAvailable.
//
// Per request:
//   - approved or cancelled (a full cancellation implies it was approved):
//     available = max(0, available − requestedHours)
//   - pending: pending += requestedHours
//   - denied: no effect
//
// then every partial-cancellation sub-event, in recorded order, refunds
// cancelledDates × 8 back into available — strictly after the request's own
// deduction and before any later request.
//
// Requests without dates are skipped rather than rejected; missing
// cancellation lists are treated as empty. The function is pure: replaying
// the same input twice yields the same balance.
func ReplayBalance(requests []Request, initialAvailable float64, opts ReplayOptions) Balance {
	sorted := make([]Request, len(requests))
	copy(sorted, requests)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	balance := Balance{Available: initialAvailable}
	for _, req := range sorted {
		if len(req.Dates) == 0 {
			continue
		}

		requested := req.RequestedHours
		if requested == 0 {
			requested = float64(len(req.Dates)) * HoursPerDay
		}

		var deducted float64
		switch req.State {
		case StateApproved, StateCancelled:
			deducted = requested
			balance.Available -= requested
			if balance.Available < 0 {
				balance.Available = 0
			}
		case StatePending:
			balance.Pending += requested
		case StateDenied:
			// no balance effect
		}

		var refunded float64
		for _, cancellation := range req.Cancellations {
			refund := float64(len(cancellation.Dates)) * HoursPerDay
			if opts.CapRefunds {
				if remaining := deducted - refunded; refund > remaining {
					refund = remaining
				}
				if refund <= 0 {
					continue
				}
			}
			refunded += refund
			balance.Available += refund
		}
	}
	return balance
}
