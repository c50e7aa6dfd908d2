package employee

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

const employeeColumns = `email, name, role, hire_date, allowance_hours,
  stored_available_hours, stored_pending_hours, default_rate, active, created_at, password_hash`

func (s *Store) Create(ctx context.Context, e Employee) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (email, name, role, hire_date, allowance_hours, default_rate, active, password_hash)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, e.Email, e.Name, e.Role, e.HireDate, e.AllowanceHours, e.DefaultRate, e.Active, e.PasswordHash)
	return err
}

func (s *Store) Get(ctx context.Context, email string) (Employee, error) {
	var e Employee
	err := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE email = $1
  `, email).Scan(&e.Email, &e.Name, &e.Role, &e.HireDate, &e.AllowanceHours,
		&e.StoredAvailable, &e.StoredPending, &e.DefaultRate, &e.Active, &e.CreatedAt, &e.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employees WHERE email = $1`, email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE active
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.Email, &e.Name, &e.Role, &e.HireDate, &e.AllowanceHours,
			&e.StoredAvailable, &e.StoredPending, &e.DefaultRate, &e.Active, &e.CreatedAt, &e.PasswordHash); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) ListAdminEmails(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT email FROM employees WHERE role = 'admin' AND active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (s *Store) UpdateProfile(ctx context.Context, email, name string, hireDate *time.Time, allowanceHours, defaultRate float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET name = $1, hire_date = $2, allowance_hours = $3, default_rate = $4
    WHERE email = $5
  `, name, hireDate, allowanceHours, defaultRate, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, hash string) error {
	tag, err := s.DB.Exec(ctx, `UPDATE employees SET password_hash = $1 WHERE email = $2`, hash, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OverwriteStoredBalance force-writes the stored balance fields. Only the
// reconciliation tooling calls this; normal request flows never touch the
// stored counters.
func (s *Store) OverwriteStoredBalance(ctx context.Context, email string, available, pending float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET stored_available_hours = $1, stored_pending_hours = $2
    WHERE email = $3
  `, available, pending, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, email string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM employees WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InitialAllowanceHours satisfies the vacation ledger's allowance lookup.
func (s *Store) InitialAllowanceHours(ctx context.Context, email string) (float64, error) {
	var hours float64
	err := s.DB.QueryRow(ctx, `SELECT allowance_hours FROM employees WHERE email = $1`, email).Scan(&hours)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return hours, err
}

// HireDate satisfies the payroll trienio lookup; a NULL hire date comes
// back as the zero time.
func (s *Store) HireDate(ctx context.Context, email string) (time.Time, error) {
	var hired *time.Time
	err := s.DB.QueryRow(ctx, `SELECT hire_date FROM employees WHERE email = $1`, email).Scan(&hired)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	if hired == nil {
		return time.Time{}, nil
	}
	return *hired, nil
}
