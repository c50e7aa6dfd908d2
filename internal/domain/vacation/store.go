package vacation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO vacation_requests (requester, dates, requested_hours, state, submitted_at)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, req.Requester, req.Dates, req.RequestedHours, req.State, req.SubmittedAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	var req Request
	err := s.DB.QueryRow(ctx, `
    SELECT id, requester, dates, requested_hours, state, submitted_at, decision_at
    FROM vacation_requests
    WHERE id = $1
  `, id).Scan(&req.ID, &req.Requester, &req.Dates, &req.RequestedHours, &req.State, &req.SubmittedAt, &req.DecisionAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	req.Cancellations, err = s.listCancellations(ctx, req.ID)
	return req, err
}

// SetState records a decision. decisionAt is written only once: approve and
// deny set it, subsequent cancellation keeps the original decision time.
func (s *Store) SetState(ctx context.Context, id string, state State, decisionAt *time.Time) error {
	var tag pgconn.CommandTag
	var err error
	if decisionAt != nil {
		tag, err = s.DB.Exec(ctx, `
      UPDATE vacation_requests SET state = $1, decision_at = $2 WHERE id = $3
    `, state, decisionAt, id)
	} else {
		tag, err = s.DB.Exec(ctx, `
      UPDATE vacation_requests SET state = $1 WHERE id = $2
    `, state, id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddCancellation(ctx context.Context, requestID string, c Cancellation) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO vacation_cancellations (request_id, dates, cancelled_at, reason)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, requestID, c.Dates, c.CancelledAt, c.Reason).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListByRequester returns the full request history with cancellations,
// oldest submission first — the order the ledger replay expects.
func (s *Store) ListByRequester(ctx context.Context, requester string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, requester, dates, requested_hours, state, submitted_at, decision_at
    FROM vacation_requests
    WHERE requester = $1
    ORDER BY submitted_at
  `, requester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.Requester, &req.Dates, &req.RequestedHours, &req.State, &req.SubmittedAt, &req.DecisionAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		cancellations, err := s.listCancellations(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Cancellations = cancellations
	}
	return requests, nil
}

func (s *Store) ListPending(ctx context.Context) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, requester, dates, requested_hours, state, submitted_at, decision_at
    FROM vacation_requests
    WHERE state = 'pending'
    ORDER BY submitted_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.Requester, &req.Dates, &req.RequestedHours, &req.State, &req.SubmittedAt, &req.DecisionAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListApprovedOnDate finds requests that still cover the given date, for the
// daily vacation report.
func (s *Store) ListApprovedOnDate(ctx context.Context, date string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, requester, dates, requested_hours, state, submitted_at, decision_at
    FROM vacation_requests
    WHERE state = 'approved' AND $1 = ANY(dates)
    ORDER BY requester
  `, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.Requester, &req.Dates, &req.RequestedHours, &req.State, &req.SubmittedAt, &req.DecisionAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A partially cancelled date no longer counts as being off.
	var covered []Request
	for _, req := range requests {
		cancellations, err := s.listCancellations(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		req.Cancellations = cancellations
		if !req.CancelledDates()[date] {
			covered = append(covered, req)
		}
	}
	return covered, nil
}

func (s *Store) listCancellations(ctx context.Context, requestID string) ([]Cancellation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, dates, cancelled_at, COALESCE(reason, '')
    FROM vacation_cancellations
    WHERE request_id = $1
    ORDER BY cancelled_at, id
  `, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cancellations []Cancellation
	for rows.Next() {
		var c Cancellation
		if err := rows.Scan(&c.ID, &c.Dates, &c.CancelledAt, &c.Reason); err != nil {
			return nil, err
		}
		cancellations = append(cancellations, c)
	}
	return cancellations, rows.Err()
}
