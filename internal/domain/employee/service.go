package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nomina/internal/domain/auth"
	"nomina/internal/domain/vacation"
)

// TokenPurger removes an employee's push-notification data. Kept as an
// interface so the delete flow can report which backing system failed.
type TokenPurger interface {
	PurgeUser(ctx context.Context, email string) error
}

type Service struct {
	Store     *Store
	Vacations *vacation.Service
	Tokens    TokenPurger
}

func NewService(store *Store, vacations *vacation.Service, tokens TokenPurger) *Service {
	return &Service{Store: store, Vacations: vacations, Tokens: tokens}
}

func (s *Service) Create(ctx context.Context, email, name, role, password string, hireDate *time.Time, allowanceHours, defaultRate float64) (Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Employee{}, fmt.Errorf("a valid email is required")
	}
	if role != RoleAdmin && role != RoleEmployee {
		return Employee{}, fmt.Errorf("invalid role %q", role)
	}
	exists, err := s.Store.Exists(ctx, email)
	if err != nil {
		return Employee{}, err
	}
	if exists {
		return Employee{}, ErrAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Employee{}, err
	}
	e := Employee{
		Email:          email,
		Name:           name,
		Role:           role,
		HireDate:       hireDate,
		AllowanceHours: allowanceHours,
		DefaultRate:    defaultRate,
		Active:         true,
		PasswordHash:   hash,
	}
	if err := s.Store.Create(ctx, e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Service) ChangePassword(ctx context.Context, email, current, next string) error {
	e, err := s.Store.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(e.PasswordHash, current); err != nil {
		return ErrBadCredentials
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, email, hash)
}

// Delete removes the employee from both backing systems: the profile store
// and the push-notification token store. Each step runs regardless of the
// other's outcome; a partial result is reported, not rolled back.
func (s *Service) Delete(ctx context.Context, email string) (DeleteReport, error) {
	var report DeleteReport

	if err := s.Store.Delete(ctx, email); err != nil {
		report.FailedStep = "profile"
		report.Detail = err.Error()
		if err == ErrNotFound {
			return report, err
		}
	} else {
		report.ProfileDeleted = true
	}

	if err := s.Tokens.PurgeUser(ctx, email); err != nil {
		if report.FailedStep == "" {
			report.FailedStep = "push_tokens"
			report.Detail = err.Error()
		}
	} else {
		report.TokensDeleted = true
	}

	return report, nil
}

// ReconcileBalance replays the employee's vacation history and force-writes
// the result into the stored balance fields. Intended for data imports and
// repair; the stored fields are otherwise never authoritative.
func (s *Service) ReconcileBalance(ctx context.Context, email string) (vacation.Balance, error) {
	balance, err := s.Vacations.BalanceFor(ctx, email)
	if err != nil {
		return vacation.Balance{}, err
	}
	if err := s.Store.OverwriteStoredBalance(ctx, email, balance.Available, balance.Pending); err != nil {
		return vacation.Balance{}, err
	}
	return balance, nil
}
