// Package notifications delivers push payloads to registered device tokens
// and keeps an in-app notification feed.
package notifications

import (
	"errors"
	"time"
)

// TokenMaxAge is how long a device token is trusted. Older tokens are
// treated as expired and pruned opportunistically on send failure and by
// the scheduled cleanup job.
const TokenMaxAge = 60 * 24 * time.Hour

const (
	TypeVacationSubmitted = "vacation_submitted"
	TypeVacationApproved  = "vacation_approved"
	TypeVacationDenied    = "vacation_denied"
	TypeVacationCancelled = "vacation_cancelled"
	TypeNominaCreated     = "nomina_created"
	TypeDailyReport       = "daily_vacation_report"
	TypeBroadcast         = "broadcast"
)

var ErrNotFound = errors.New("notification not found")

// Payload is the push message fanned out to device tokens.
type Payload struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type DeviceToken struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t DeviceToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > TokenMaxAge
}

// Notification is one row of the in-app feed.
type Notification struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
