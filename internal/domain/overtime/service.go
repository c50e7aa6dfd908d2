package overtime

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// Log validates and persists a new entry. The amount is fixed here, at
// write time, from the current rate.
func (s *Service) Log(ctx context.Context, employeeEmail string, date time.Time, eType EntryType, hours, minutes int, rate float64) (string, error) {
	if err := validate(eType, hours, minutes, rate); err != nil {
		return "", err
	}
	entry := Entry{
		EmployeeEmail: employeeEmail,
		Date:          date,
		Type:          eType,
		Hours:         hours,
		Minutes:       minutes,
		Rate:          rate,
	}
	entry.Amount = entry.ComputedAmount()
	return s.Store.Create(ctx, entry)
}

func (s *Service) Edit(ctx context.Context, id, employeeEmail string, date time.Time, eType EntryType, hours, minutes int, rate float64) error {
	if err := validate(eType, hours, minutes, rate); err != nil {
		return err
	}
	entry := Entry{
		ID:            id,
		EmployeeEmail: employeeEmail,
		Date:          date,
		Type:          eType,
		Hours:         hours,
		Minutes:       minutes,
		Rate:          rate,
	}
	entry.Amount = entry.ComputedAmount()
	return s.Store.Update(ctx, entry)
}

func (s *Service) Remove(ctx context.Context, id, employeeEmail string) error {
	return s.Store.Delete(ctx, id, employeeEmail)
}

func (s *Service) ListPeriod(ctx context.Context, employeeEmail string, start, end time.Time) ([]Entry, error) {
	return s.Store.ListByPeriod(ctx, employeeEmail, start, end)
}

// PeriodTotals fetches the entries for the period and runs the calculator.
func (s *Service) PeriodTotals(ctx context.Context, employeeEmail string, start, end time.Time) (Totals, []Entry, error) {
	entries, err := s.Store.ListByPeriod(ctx, employeeEmail, start, end)
	if err != nil {
		return Totals{}, nil, err
	}
	return ComputeTotals(entries), entries, nil
}

func validate(eType EntryType, hours, minutes int, rate float64) error {
	if !eType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, eType)
	}
	if hours < 0 {
		return fmt.Errorf("hours must be non-negative")
	}
	if minutes < 0 || minutes > 59 {
		return fmt.Errorf("minutes must be in [0,59]")
	}
	if rate < 0 {
		return fmt.Errorf("rate must be non-negative")
	}
	return nil
}
