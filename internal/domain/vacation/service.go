package vacation

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// AllowanceLookup resolves an employee's initial vacation allowance in
// hours, the starting point for the ledger replay.
type AllowanceLookup interface {
	InitialAllowanceHours(ctx context.Context, email string) (float64, error)
}

type Service struct {
	Store      *Store
	Allowances AllowanceLookup
	Options    ReplayOptions
}

func NewService(store *Store, allowances AllowanceLookup, opts ReplayOptions) *Service {
	return &Service{Store: store, Allowances: allowances, Options: opts}
}

// Submit creates a pending request over the given dates (YYYY-MM-DD).
// Requested hours follow the 8-hour-day convention.
func (s *Service) Submit(ctx context.Context, requester string, dates []string) (Request, error) {
	if len(dates) == 0 {
		return Request{}, fmt.Errorf("at least one date is required")
	}
	unique := make(map[string]bool, len(dates))
	for _, d := range dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return Request{}, fmt.Errorf("invalid date %q", d)
		}
		if unique[d] {
			return Request{}, fmt.Errorf("duplicate date %q", d)
		}
		unique[d] = true
	}
	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)

	req := Request{
		Requester:      requester,
		Dates:          sorted,
		RequestedHours: float64(len(sorted)) * HoursPerDay,
		State:          StatePending,
		SubmittedAt:    time.Now().UTC(),
	}
	id, err := s.Store.Create(ctx, req)
	if err != nil {
		return Request{}, err
	}
	req.ID = id
	return req, nil
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.Store.Get(ctx, id)
}

// Approve transitions pending → approved, recording the decision time.
func (s *Service) Approve(ctx context.Context, id string) (Request, error) {
	return s.decide(ctx, id, StateApproved)
}

// Deny transitions pending → denied, recording the decision time.
func (s *Service) Deny(ctx context.Context, id string) (Request, error) {
	return s.decide(ctx, id, StateDenied)
}

func (s *Service) decide(ctx context.Context, id string, to State) (Request, error) {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.State != StatePending {
		return Request{}, fmt.Errorf("%w: %s request cannot be decided", ErrInvalidState, req.State)
	}
	now := time.Now().UTC()
	if err := s.Store.SetState(ctx, id, to, &now); err != nil {
		return Request{}, err
	}
	req.State = to
	req.DecisionAt = &now
	return req, nil
}

// CancelFull cancels every remaining date of an approved request and moves
// it to the terminal cancelled state.
func (s *Service) CancelFull(ctx context.Context, id, reason string) (Request, error) {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.State != StateApproved {
		return Request{}, fmt.Errorf("%w: only approved requests can be cancelled", ErrInvalidState)
	}
	remaining := req.RemainingDates()
	if len(remaining) > 0 {
		c := Cancellation{Dates: remaining, CancelledAt: time.Now().UTC(), Reason: reason}
		if _, err := s.Store.AddCancellation(ctx, id, c); err != nil {
			return Request{}, err
		}
		req.Cancellations = append(req.Cancellations, c)
	}
	if err := s.Store.SetState(ctx, id, StateCancelled, nil); err != nil {
		return Request{}, err
	}
	req.State = StateCancelled
	return req, nil
}

// CancelPartial records a partial-cancellation sub-event over a subset of
// the request's dates. A date can only be cancelled once.
func (s *Service) CancelPartial(ctx context.Context, id string, dates []string, reason string) (Request, error) {
	if len(dates) == 0 {
		return Request{}, fmt.Errorf("at least one date is required")
	}
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.State != StateApproved {
		return Request{}, fmt.Errorf("%w: only approved requests can be partially cancelled", ErrInvalidState)
	}

	requested := make(map[string]bool, len(req.Dates))
	for _, d := range req.Dates {
		requested[d] = true
	}
	alreadyCancelled := req.CancelledDates()
	for _, d := range dates {
		if !requested[d] {
			return Request{}, fmt.Errorf("%w: %s", ErrDateNotRequested, d)
		}
		if alreadyCancelled[d] {
			return Request{}, fmt.Errorf("%w: %s", ErrDateCancelled, d)
		}
	}

	c := Cancellation{Dates: dates, CancelledAt: time.Now().UTC(), Reason: reason}
	if _, err := s.Store.AddCancellation(ctx, id, c); err != nil {
		return Request{}, err
	}
	req.Cancellations = append(req.Cancellations, c)

	if len(req.RemainingDates()) == 0 {
		if err := s.Store.SetState(ctx, id, StateCancelled, nil); err != nil {
			return Request{}, err
		}
		req.State = StateCancelled
	}
	return req, nil
}

// BalanceFor replays the employee's full request history from their initial
// allowance.
func (s *Service) BalanceFor(ctx context.Context, email string) (Balance, error) {
	initial, err := s.Allowances.InitialAllowanceHours(ctx, email)
	if err != nil {
		return Balance{}, err
	}
	requests, err := s.Store.ListByRequester(ctx, email)
	if err != nil {
		return Balance{}, err
	}
	return ReplayBalance(requests, initial, s.Options), nil
}

func (s *Service) History(ctx context.Context, email string) ([]Request, error) {
	return s.Store.ListByRequester(ctx, email)
}

func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.Store.ListPending(ctx)
}

// OffToday lists employees on vacation for the given calendar date.
func (s *Service) OffToday(ctx context.Context, date string) ([]Request, error) {
	return s.Store.ListApprovedOnDate(ctx, date)
}
