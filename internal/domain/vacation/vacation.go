// Package vacation manages leave requests and the derived hour balances.
// Balances follow the 8-hours-per-day convention and are computed by
// replaying a user's request history, not read from a stored counter.
package vacation

import (
	"errors"
	"time"
)

// HoursPerDay is the fixed working-day convention used for all balance math.
const HoursPerDay = 8.0

type State string

const (
	StatePending   State = "pending"
	StateApproved  State = "approved"
	StateDenied    State = "denied"
	StateCancelled State = "cancelled"
)

func (s State) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateDenied, StateCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound         = errors.New("leave request not found")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrDateNotRequested = errors.New("date was not part of the request")
	ErrDateCancelled    = errors.New("date already cancelled")
)

// Cancellation is one partial-cancellation sub-event on an approved request.
type Cancellation struct {
	ID          string    `json:"id"`
	Dates       []string  `json:"cancelledDates"`
	CancelledAt time.Time `json:"cancelledAt"`
	Reason      string    `json:"reason"`
}

// Request is a leave request over a set of calendar dates (YYYY-MM-DD).
type Request struct {
	ID             string         `json:"id"`
	Requester      string         `json:"requester"`
	Dates          []string       `json:"dates"`
	RequestedHours float64        `json:"requestedHours"`
	State          State          `json:"state"`
	SubmittedAt    time.Time      `json:"submittedAt"`
	DecisionAt     *time.Time     `json:"decisionAt,omitempty"`
	Cancellations  []Cancellation `json:"partialCancellations,omitempty"`
}

// CancelledDates flattens all partial-cancellation dates of the request.
func (r Request) CancelledDates() map[string]bool {
	out := make(map[string]bool)
	for _, c := range r.Cancellations {
		for _, d := range c.Dates {
			out[d] = true
		}
	}
	return out
}

// RemainingDates returns the requested dates not yet cancelled.
func (r Request) RemainingDates() []string {
	cancelled := r.CancelledDates()
	var out []string
	for _, d := range r.Dates {
		if !cancelled[d] {
			out = append(out, d)
		}
	}
	return out
}
