package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/overtime"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListLevels(ctx context.Context, year int) ([]SalaryLevel, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT level, base_salary, trienio_value
    FROM salary_levels
    WHERE year = $1
    ORDER BY level
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []SalaryLevel
	for rows.Next() {
		var l SalaryLevel
		if err := rows.Scan(&l.Level, &l.BaseSalary, &l.TrienioValue); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (s *Store) GetLevel(ctx context.Context, year, level int) (SalaryLevel, error) {
	var l SalaryLevel
	err := s.DB.QueryRow(ctx, `
    SELECT level, base_salary, trienio_value
    FROM salary_levels
    WHERE year = $1 AND level = $2
  `, year, level).Scan(&l.Level, &l.BaseSalary, &l.TrienioValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryLevel{}, ErrLevelNotFound
	}
	return l, err
}

func (s *Store) UpsertLevel(ctx context.Context, year int, level SalaryLevel) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO salary_levels (year, level, base_salary, trienio_value)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (year, level)
    DO UPDATE SET base_salary = EXCLUDED.base_salary, trienio_value = EXCLUDED.trienio_value
  `, year, level.Level, level.BaseSalary, level.TrienioValue)
	return err
}

// RaiseLevels applies a percentage increase across a whole year's table.
func (s *Store) RaiseLevels(ctx context.Context, year int, percent float64) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salary_levels
    SET base_salary = base_salary * (1 + $1 / 100.0),
        trienio_value = trienio_value * (1 + $1 / 100.0)
    WHERE year = $2
  `, percent, year)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) GetConfig(ctx context.Context, email string, year int) (Config, error) {
	var cfg Config
	var complementsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT employee_email, year, salary_level, base_salary, has_trienios, trienio_value,
           has_other_complements, complements_json, extra_pay_amount
    FROM payroll_configs
    WHERE employee_email = $1 AND year = $2
  `, email, year).Scan(&cfg.EmployeeEmail, &cfg.Year, &cfg.SalaryLevel, &cfg.BaseSalary, &cfg.HasTrienios, &cfg.TrienioValue, &cfg.HasOtherComplements, &complementsJSON, &cfg.ExtraPayAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Config{}, ErrConfigNotFound
	}
	if err != nil {
		return Config{}, err
	}
	if len(complementsJSON) > 0 {
		if err := json.Unmarshal(complementsJSON, &cfg.Complements); err != nil {
			cfg.Complements = nil
		}
	}
	return cfg, nil
}

func (s *Store) UpsertConfig(ctx context.Context, cfg Config) error {
	complementsJSON, err := json.Marshal(cfg.Complements)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payroll_configs
      (employee_email, year, salary_level, base_salary, has_trienios, trienio_value,
       has_other_complements, complements_json, extra_pay_amount)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    ON CONFLICT (employee_email, year)
    DO UPDATE SET salary_level = EXCLUDED.salary_level,
                  base_salary = EXCLUDED.base_salary,
                  has_trienios = EXCLUDED.has_trienios,
                  trienio_value = EXCLUDED.trienio_value,
                  has_other_complements = EXCLUDED.has_other_complements,
                  complements_json = EXCLUDED.complements_json,
                  extra_pay_amount = EXCLUDED.extra_pay_amount
  `, cfg.EmployeeEmail, cfg.Year, cfg.SalaryLevel, cfg.BaseSalary, cfg.HasTrienios, cfg.TrienioValue, cfg.HasOtherComplements, complementsJSON, cfg.ExtraPayAmount)
	return err
}

// NominaExists is the duplicate-prevention check: it must run before any
// insert so a second record for the same period is refused, never
// overwritten.
func (s *Store) NominaExists(ctx context.Context, email string, year int, month string, nType NominaType) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM nominas
    WHERE employee_email = $1 AND year = $2 AND month = $3 AND nomina_type = $4
  `, email, year, month, nType).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateNomina(ctx context.Context, n Nomina) (string, error) {
	complementsJSON, err := json.Marshal(n.OtherComplements)
	if err != nil {
		return "", err
	}
	overtimeJSON, err := json.Marshal(n.Overtime)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO nominas
      (employee_email, year, month, nomina_type, base_salary, trienios,
       complements_json, overtime_json, extra_concept, extra_amount,
       deduction_concept, deduction_amount, total, period_start, period_end)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `, n.EmployeeEmail, n.Year, n.Month, n.Type, n.BaseSalary, n.Trienios,
		complementsJSON, overtimeJSON, n.Extra.Concept, n.Extra.Amount,
		n.Deduction.Concept, n.Deduction.Amount, n.Total, n.PeriodStart, n.PeriodEnd).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateNomina(ctx context.Context, n Nomina) error {
	complementsJSON, err := json.Marshal(n.OtherComplements)
	if err != nil {
		return err
	}
	overtimeJSON, err := json.Marshal(n.Overtime)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE nominas
    SET base_salary = $1, trienios = $2, complements_json = $3, overtime_json = $4,
        extra_concept = $5, extra_amount = $6, deduction_concept = $7,
        deduction_amount = $8, total = $9
    WHERE id = $10
  `, n.BaseSalary, n.Trienios, complementsJSON, overtimeJSON,
		n.Extra.Concept, n.Extra.Amount, n.Deduction.Concept, n.Deduction.Amount, n.Total, n.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteNomina(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM nominas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetNomina(ctx context.Context, id string) (Nomina, error) {
	return s.scanNomina(s.DB.QueryRow(ctx, `
    SELECT id, employee_email, year, month, nomina_type, base_salary, trienios,
           complements_json, overtime_json, extra_concept, extra_amount,
           deduction_concept, deduction_amount, total, period_start, period_end, created_at
    FROM nominas
    WHERE id = $1
  `, id))
}

func (s *Store) ListNominas(ctx context.Context, email string, year int) ([]Nomina, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_email, year, month, nomina_type, base_salary, trienios,
           complements_json, overtime_json, extra_concept, extra_amount,
           deduction_concept, deduction_amount, total, period_start, period_end, created_at
    FROM nominas
    WHERE employee_email = $1 AND ($2 = 0 OR year = $2)
    ORDER BY year DESC, created_at DESC
  `, email, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nominas []Nomina
	for rows.Next() {
		n, err := s.scanNomina(rows)
		if err != nil {
			return nil, err
		}
		nominas = append(nominas, n)
	}
	return nominas, rows.Err()
}

// LastPeriodEnd returns the end of the overtime-collection period of the
// most recent monthly nómina strictly before the given time. Feeds the
// period resolver's payroll-anchored shorthands.
func (s *Store) LastPeriodEnd(ctx context.Context, email string, before time.Time) (time.Time, error) {
	var end time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT period_end
    FROM nominas
    WHERE employee_email = $1 AND nomina_type = 'monthly'
      AND period_end IS NOT NULL AND period_end < $2
    ORDER BY period_end DESC
    LIMIT 1
  `, email, before).Scan(&end)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	return end, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanNomina(row rowScanner) (Nomina, error) {
	var n Nomina
	var complementsJSON, overtimeJSON []byte
	err := row.Scan(&n.ID, &n.EmployeeEmail, &n.Year, &n.Month, &n.Type, &n.BaseSalary, &n.Trienios,
		&complementsJSON, &overtimeJSON, &n.Extra.Concept, &n.Extra.Amount,
		&n.Deduction.Concept, &n.Deduction.Amount, &n.Total, &n.PeriodStart, &n.PeriodEnd, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Nomina{}, ErrNotFound
	}
	if err != nil {
		return Nomina{}, err
	}
	if len(complementsJSON) > 0 {
		if err := json.Unmarshal(complementsJSON, &n.OtherComplements); err != nil {
			n.OtherComplements = nil
		}
	}
	if len(overtimeJSON) > 0 {
		if err := json.Unmarshal(overtimeJSON, &n.Overtime); err != nil {
			n.Overtime = overtime.Totals{}
		}
	}
	return n, nil
}
