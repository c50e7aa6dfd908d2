package payroll

import (
	"math"
	"time"

	"nomina/internal/domain/overtime"
)

// daysPerYear uses the Julian year so leap years do not drift seniority.
const daysPerYear = 365.25

// TrienioCount returns the number of completed three-year seniority tiers
// at the reference date. A zero hire date yields zero: without a hire date
// on file trienios cannot be derived and manual entry is required.
func TrienioCount(hireDate, ref time.Time) int {
	if hireDate.IsZero() || ref.Before(hireDate) {
		return 0
	}
	years := ref.Sub(hireDate).Hours() / 24 / daysPerYear
	return int(math.Floor(years / 3))
}

// Breakdown is the computed decomposition of one nómina. The invariant
// Total = BaseSalary + TotalTrienios + TotalComplements +
// Overtime.TotalAmount + Extra.Amount − Deduction.Amount holds exactly.
type Breakdown struct {
	BaseSalary       float64         `json:"baseSalary"`
	TrienioCount     int             `json:"trienioCount"`
	TotalTrienios    float64         `json:"totalTrienios"`
	Complements      []Complement    `json:"otherComplements,omitempty"`
	TotalComplements float64         `json:"totalOtherComplements"`
	Overtime         overtime.Totals `json:"overtime"`
	Extra            Line            `json:"extra"`
	Deduction        Line            `json:"deduction"`
	Total            float64         `json:"total"`
}

// ComputeNomina aggregates a monthly payroll record from configuration,
// seniority, collected overtime entries and the ad-hoc extra/deduction
// lines.
func ComputeNomina(cfg Config, trienioCount int, entries []overtime.Entry, extra, deduction Line) Breakdown {
	b := Breakdown{
		BaseSalary: cfg.BaseSalary,
		Extra:      extra,
		Deduction:  deduction,
	}

	if cfg.HasTrienios {
		b.TrienioCount = trienioCount
		b.TotalTrienios = float64(trienioCount) * cfg.TrienioValue
	}

	if cfg.HasOtherComplements {
		for _, c := range cfg.Complements {
			if !c.Complete() {
				continue
			}
			b.Complements = append(b.Complements, c)
			b.TotalComplements += c.Amount
		}
	}

	b.Overtime = overtime.ComputeTotals(entries)
	b.Total = b.BaseSalary + b.TotalTrienios + b.TotalComplements + b.Overtime.TotalAmount + extra.Amount - deduction.Amount
	return b
}

// ComputeExtraPay builds the flat extra-pay breakdown: trienios and
// overtime do not apply, the total is simply the configured amount.
func ComputeExtraPay(amount float64) Breakdown {
	return Breakdown{
		BaseSalary: amount,
		Overtime:   overtime.ComputeTotals(nil),
		Total:      amount,
	}
}
