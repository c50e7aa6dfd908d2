package payroll

import (
	"context"
	"fmt"
	"time"

	"nomina/internal/domain/overtime"
)

// EmployeeLookup resolves the hire date used for automatic trienios. A zero
// time means no hire date is on file.
type EmployeeLookup interface {
	HireDate(ctx context.Context, email string) (time.Time, error)
}

type Service struct {
	Store     *Store
	Overtime  *overtime.Store
	Employees EmployeeLookup
}

func NewService(store *Store, overtimeStore *overtime.Store, employees EmployeeLookup) *Service {
	return &Service{Store: store, Overtime: overtimeStore, Employees: employees}
}

// ConfigForYear returns the employee's payroll configuration for a year,
// defaulting a missing one from the prior year, or failing that from the
// year's salary level table. The defaulted config is not persisted until
// explicitly saved.
func (s *Service) ConfigForYear(ctx context.Context, email string, year int) (Config, error) {
	cfg, err := s.Store.GetConfig(ctx, email, year)
	if err == nil {
		return cfg, nil
	}
	if err != ErrConfigNotFound {
		return Config{}, err
	}

	prior, err := s.Store.GetConfig(ctx, email, year-1)
	if err == nil {
		prior.Year = year
		return prior, nil
	}
	if err != ErrConfigNotFound {
		return Config{}, err
	}

	return Config{EmployeeEmail: email, Year: year, SalaryLevel: MinSalaryLevel}, nil
}

func (s *Service) SaveConfig(ctx context.Context, cfg Config) error {
	if cfg.SalaryLevel < MinSalaryLevel || cfg.SalaryLevel > MaxSalaryLevel {
		return fmt.Errorf("%w: %d", ErrInvalidLevel, cfg.SalaryLevel)
	}
	if len(cfg.Complements) > 2 {
		return fmt.Errorf("at most two complements are supported")
	}
	if cfg.BaseSalary == 0 {
		level, err := s.Store.GetLevel(ctx, cfg.Year, cfg.SalaryLevel)
		if err != nil {
			return err
		}
		cfg.BaseSalary = level.BaseSalary
		if cfg.TrienioValue == 0 {
			cfg.TrienioValue = level.TrienioValue
		}
	}
	return s.Store.UpsertConfig(ctx, cfg)
}

// AutoTrienioCount derives trienios from the hire date. No hire date forces
// the count to zero regardless of the config flag.
func (s *Service) AutoTrienioCount(ctx context.Context, email string, ref time.Time) (int, error) {
	hired, err := s.Employees.HireDate(ctx, email)
	if err != nil {
		return 0, err
	}
	return TrienioCount(hired, ref), nil
}

// CreateMonthly computes and persists a monthly nómina over the given
// overtime-collection period. trienioCount < 0 requests automatic
// derivation from the hire date.
func (s *Service) CreateMonthly(ctx context.Context, email string, year int, month string, trienioCount int, periodStart, periodEnd time.Time, extra, deduction Line) (Nomina, error) {
	exists, err := s.Store.NominaExists(ctx, email, year, month, TypeMonthly)
	if err != nil {
		return Nomina{}, err
	}
	if exists {
		return Nomina{}, ErrDuplicateNomina
	}

	cfg, err := s.ConfigForYear(ctx, email, year)
	if err != nil {
		return Nomina{}, err
	}

	if trienioCount < 0 {
		trienioCount, err = s.AutoTrienioCount(ctx, email, periodEnd)
		if err != nil {
			return Nomina{}, err
		}
	}

	entries, err := s.Overtime.ListByPeriod(ctx, email, periodStart, periodEnd)
	if err != nil {
		return Nomina{}, err
	}

	b := ComputeNomina(cfg, trienioCount, entries, extra, deduction)
	n := Nomina{
		EmployeeEmail:    email,
		Year:             year,
		Month:            month,
		Type:             TypeMonthly,
		BaseSalary:       b.BaseSalary,
		Trienios:         b.TotalTrienios,
		OtherComplements: b.Complements,
		Overtime:         b.Overtime,
		Extra:            extra,
		Deduction:        deduction,
		Total:            b.Total,
		PeriodStart:      &periodStart,
		PeriodEnd:        &periodEnd,
	}
	n.ID, err = s.Store.CreateNomina(ctx, n)
	if err != nil {
		return Nomina{}, err
	}
	return n, nil
}

// CreateExtraPay persists a flat extra-pay record for the summer or winter
// marker. amountOverride == 0 uses the configured ExtraPayAmount.
func (s *Service) CreateExtraPay(ctx context.Context, email string, year int, marker string, amountOverride float64) (Nomina, error) {
	if marker != ExtraPaySummer && marker != ExtraPayWinter {
		return Nomina{}, fmt.Errorf("invalid extra-pay marker %q", marker)
	}
	exists, err := s.Store.NominaExists(ctx, email, year, marker, TypeExtra)
	if err != nil {
		return Nomina{}, err
	}
	if exists {
		return Nomina{}, ErrDuplicateNomina
	}

	amount := amountOverride
	if amount == 0 {
		cfg, err := s.ConfigForYear(ctx, email, year)
		if err != nil {
			return Nomina{}, err
		}
		amount = cfg.ExtraPayAmount
	}

	b := ComputeExtraPay(amount)
	n := Nomina{
		EmployeeEmail: email,
		Year:          year,
		Month:         marker,
		Type:          TypeExtra,
		BaseSalary:    b.BaseSalary,
		Overtime:      b.Overtime,
		Total:         b.Total,
	}
	n.ID, err = s.Store.CreateNomina(ctx, n)
	if err != nil {
		return Nomina{}, err
	}
	return n, nil
}

// Recompute replaces the ad-hoc extra and deduction lines of a stored
// record and re-derives its total from the persisted components. The
// frozen overtime snapshot and salary figures are not refetched.
func (s *Service) Recompute(ctx context.Context, n Nomina, extra, deduction Line) (Nomina, error) {
	n.Extra = extra
	n.Deduction = deduction

	var complements float64
	for _, c := range n.OtherComplements {
		if c.Complete() {
			complements += c.Amount
		}
	}
	n.Total = n.BaseSalary + n.Trienios + complements + n.Overtime.TotalAmount + extra.Amount - deduction.Amount

	if err := s.Store.UpdateNomina(ctx, n); err != nil {
		return Nomina{}, err
	}
	return n, nil
}

// YearStats aggregates an employee's stored nóminas for reporting.
type YearStats struct {
	Year          int     `json:"year"`
	Records       int     `json:"records"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalOvertime float64 `json:"totalOvertime"`
	TotalTrienios float64 `json:"totalTrienios"`
	ByMonth       []struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	} `json:"byMonth"`
}

func (s *Service) Stats(ctx context.Context, email string, year int) (YearStats, error) {
	nominas, err := s.Store.ListNominas(ctx, email, year)
	if err != nil {
		return YearStats{}, err
	}
	stats := YearStats{Year: year}
	for _, n := range nominas {
		stats.Records++
		stats.TotalPaid += n.Total
		stats.TotalOvertime += n.Overtime.TotalAmount
		stats.TotalTrienios += n.Trienios
		stats.ByMonth = append(stats.ByMonth, struct {
			Month string  `json:"month"`
			Total float64 `json:"total"`
		}{Month: n.Month, Total: n.Total})
	}
	return stats, nil
}
