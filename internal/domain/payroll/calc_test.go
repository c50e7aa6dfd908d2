package payroll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nomina/internal/domain/overtime"
	"nomina/internal/domain/payroll"
)

func TestTrienioCount(t *testing.T) {
	ref := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		hire time.Time
		want int
	}{
		{time.Time{}, 0},
		{ref.AddDate(-6, 0, 0), 2},
		{ref.AddDate(-3, 0, -1), 1},
		{ref.AddDate(-2, -11, 0), 0},
		{ref.AddDate(-15, 0, 0), 5},
		{ref.AddDate(1, 0, 0), 0}, // hired in the future
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, payroll.TrienioCount(tc.hire, ref), "hire %v", tc.hire)
	}
}

func overtimeEntries() []overtime.Entry {
	e := overtime.Entry{Type: overtime.TypeNormal, Hours: 2, Minutes: 30, Rate: 10}
	e.Amount = e.ComputedAmount()
	return []overtime.Entry{e, e}
}

func TestComputeNominaDecomposition(t *testing.T) {
	cfg := payroll.Config{
		BaseSalary:          1500,
		HasTrienios:         true,
		TrienioValue:        25,
		HasOtherComplements: true,
		Complements: []payroll.Complement{
			{Concept: "transport", Amount: 80},
			{Concept: "languages", Amount: 40},
		},
	}
	extra := payroll.Line{Concept: "bonus", Amount: 100}
	deduction := payroll.Line{Concept: "advance", Amount: 200}

	b := payroll.ComputeNomina(cfg, 2, overtimeEntries(), extra, deduction)

	assert.Equal(t, 50.0, b.TotalTrienios)
	assert.Equal(t, 120.0, b.TotalComplements)
	assert.InDelta(t, 50.0, b.Overtime.TotalAmount, 1e-9)
	assert.InDelta(t, 1500+50+120+50+100-200, b.Total, 1e-9)
	assert.InDelta(t, b.BaseSalary+b.TotalTrienios+b.TotalComplements+b.Overtime.TotalAmount+b.Extra.Amount-b.Deduction.Amount, b.Total, 1e-9)
}

func TestComputeNominaTrieniosDisabled(t *testing.T) {
	cfg := payroll.Config{BaseSalary: 1200, HasTrienios: false, TrienioValue: 25}
	b := payroll.ComputeNomina(cfg, 4, nil, payroll.Line{}, payroll.Line{})
	assert.Zero(t, b.TotalTrienios)
	assert.Zero(t, b.TrienioCount)
	assert.InDelta(t, 1200.0, b.Total, 1e-9)
}

func TestComputeNominaHalfSetComplementExcluded(t *testing.T) {
	cfg := payroll.Config{
		BaseSalary:          1000,
		HasOtherComplements: true,
		Complements: []payroll.Complement{
			{Concept: "transport"},          // amount missing
			{Amount: 60},                    // concept missing
			{Concept: "seniority", Amount: 30},
		},
	}
	b := payroll.ComputeNomina(cfg, 0, nil, payroll.Line{}, payroll.Line{})
	assert.Equal(t, 30.0, b.TotalComplements)
	assert.Len(t, b.Complements, 1)
}

func TestComputeNominaComplementsFlagOff(t *testing.T) {
	cfg := payroll.Config{
		BaseSalary:  1000,
		Complements: []payroll.Complement{{Concept: "transport", Amount: 80}},
	}
	b := payroll.ComputeNomina(cfg, 0, nil, payroll.Line{}, payroll.Line{})
	assert.Zero(t, b.TotalComplements)
}

func TestComputeExtraPayFlat(t *testing.T) {
	b := payroll.ComputeExtraPay(1350)
	assert.Equal(t, 1350.0, b.Total)
	assert.Zero(t, b.TotalTrienios)
	assert.Zero(t, b.Overtime.TotalAmount)
}
