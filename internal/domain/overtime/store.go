package overtime

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, entry Entry) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO overtime_entries (employee_email, entry_date, entry_type, hours, minutes, rate, amount)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, entry.EmployeeEmail, entry.Date, entry.Type, entry.Hours, entry.Minutes, entry.Rate, entry.Amount).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, entry Entry) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE overtime_entries
    SET entry_date = $1, entry_type = $2, hours = $3, minutes = $4, rate = $5, amount = $6
    WHERE id = $7 AND employee_email = $8
  `, entry.Date, entry.Type, entry.Hours, entry.Minutes, entry.Rate, entry.Amount, entry.ID, entry.EmployeeEmail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id, employeeEmail string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM overtime_entries
    WHERE id = $1 AND employee_email = $2
  `, id, employeeEmail)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var entry Entry
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_email, entry_date, entry_type, hours, minutes, rate, amount, created_at
    FROM overtime_entries
    WHERE id = $1
  `, id).Scan(&entry.ID, &entry.EmployeeEmail, &entry.Date, &entry.Type, &entry.Hours, &entry.Minutes, &entry.Rate, &entry.Amount, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ListByPeriod returns a user's entries within [start, end] inclusive,
// oldest first. Date-range filtering lives here, not in the calculator.
func (s *Store) ListByPeriod(ctx context.Context, employeeEmail string, start, end time.Time) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_email, entry_date, entry_type, hours, minutes, rate, amount, created_at
    FROM overtime_entries
    WHERE employee_email = $1 AND entry_date >= $2 AND entry_date <= $3
    ORDER BY entry_date, created_at
  `, employeeEmail, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.EmployeeEmail, &entry.Date, &entry.Type, &entry.Hours, &entry.Minutes, &entry.Rate, &entry.Amount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
