// Package payroll computes and stores monthly payroll records ("nóminas")
// from salary configuration, seniority tiers and collected overtime.
package payroll

import (
	"errors"
	"time"

	"nomina/internal/domain/overtime"
)

type NominaType string

const (
	TypeMonthly NominaType = "monthly"
	TypeExtra   NominaType = "extra"
)

// Extra-pay markers take the place of the month name on extra-pay records.
const (
	ExtraPaySummer = "summer"
	ExtraPayWinter = "winter"
)

const (
	MinSalaryLevel = 1
	MaxSalaryLevel = 21
)

var (
	ErrDuplicateNomina = errors.New("a payroll record already exists for this period")
	ErrNotFound        = errors.New("payroll record not found")
	ErrLevelNotFound   = errors.New("salary level not found")
	ErrConfigNotFound  = errors.New("payroll config not found")
	ErrInvalidLevel    = errors.New("salary level out of range")
)

// SalaryLevel is one row of a year's level table.
type SalaryLevel struct {
	Level        int     `json:"level"`
	BaseSalary   float64 `json:"baseSalary"`
	TrienioValue float64 `json:"trienioValue"`
}

// Complement is an optional fixed pay line. Only a fully specified
// complement (both concept and amount) counts toward totals; a half-set one
// is silently excluded, not an error.
type Complement struct {
	Concept string  `json:"concept"`
	Amount  float64 `json:"amount"`
}

func (c Complement) Complete() bool {
	return c.Concept != "" && c.Amount != 0
}

// Config is an employee's payroll configuration for one year. Superseded
// per year key, never deleted.
type Config struct {
	EmployeeEmail       string       `json:"employeeEmail"`
	Year                int          `json:"year"`
	SalaryLevel         int          `json:"salaryLevel"`
	BaseSalary          float64      `json:"baseSalary"`
	HasTrienios         bool         `json:"hasTrienios"`
	TrienioValue        float64      `json:"trienioValue"`
	HasOtherComplements bool         `json:"hasOtherComplements"`
	Complements         []Complement `json:"otherComplements,omitempty"`
	ExtraPayAmount      float64      `json:"extraPayAmount"`
}

// Line is an ad-hoc extra or deduction applied to a single nómina.
type Line struct {
	Concept string  `json:"concept"`
	Amount  float64 `json:"amount"`
}

// Nomina is a persisted payroll record, one per (employee, year, month,
// type). PeriodStart/PeriodEnd record the overtime-collection window used
// when the record was computed; the period resolver treats them as the
// authoritative boundary for later runs.
type Nomina struct {
	ID               string          `json:"id"`
	EmployeeEmail    string          `json:"employeeEmail"`
	Year             int             `json:"year"`
	Month            string          `json:"month"`
	Type             NominaType      `json:"type"`
	BaseSalary       float64         `json:"baseSalary"`
	Trienios         float64         `json:"trienios"`
	OtherComplements []Complement    `json:"otherComplements,omitempty"`
	Overtime         overtime.Totals `json:"overtime"`
	Extra            Line            `json:"extra"`
	Deduction        Line            `json:"deduction"`
	Total            float64         `json:"total"`
	PeriodStart      *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd        *time.Time      `json:"periodEnd,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}
