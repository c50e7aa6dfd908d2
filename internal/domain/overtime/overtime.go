// Package overtime tracks logged overtime entries and computes period
// totals for payroll and statistics.
package overtime

import (
	"errors"
	"time"

	"nomina/internal/domain/timeconv"
)

type EntryType string

const (
	TypeNormal       EntryType = "normal"
	TypeNight        EntryType = "night"
	TypeHoliday      EntryType = "holiday"
	TypeHolidayNight EntryType = "holiday_night"
)

// AllTypes is the fixed enumeration in stable report order.
var AllTypes = []EntryType{TypeNormal, TypeNight, TypeHoliday, TypeHolidayNight}

// typeMeta carries the stable display attributes per type so reports and
// charts keep a consistent ordering and color across renders.
type typeMeta struct {
	Order int
	Color string
}

var typeInfo = map[EntryType]typeMeta{
	TypeNormal:       {Order: 0, Color: "#4caf50"},
	TypeNight:        {Order: 1, Color: "#3f51b5"},
	TypeHoliday:      {Order: 2, Color: "#ff9800"},
	TypeHolidayNight: {Order: 3, Color: "#9c27b0"},
}

func (t EntryType) Valid() bool {
	_, ok := typeInfo[t]
	return ok
}

func (t EntryType) DisplayOrder() int { return typeInfo[t].Order }
func (t EntryType) Color() string     { return typeInfo[t].Color }

var (
	ErrNotFound    = errors.New("overtime entry not found")
	ErrInvalidType = errors.New("invalid overtime type")
)

// Entry is one logged block of overtime. Amount is fixed at write time as
// decimalHours × rate; a later rate change is never applied retroactively.
type Entry struct {
	ID            string    `json:"id"`
	EmployeeEmail string    `json:"employeeEmail"`
	Date          time.Time `json:"date"`
	Type          EntryType `json:"type"`
	Hours         int       `json:"hours"`
	Minutes       int       `json:"minutes"`
	Rate          float64   `json:"rate"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DecimalHours prefers nothing stored: it is always derived from the
// hour/minute pair.
func (e Entry) DecimalHours() float64 {
	return timeconv.ToDecimalHours(e.Hours, e.Minutes)
}

// ComputedAmount is the canonical amount for the entry at its current rate.
func (e Entry) ComputedAmount() float64 {
	return e.DecimalHours() * e.Rate
}
