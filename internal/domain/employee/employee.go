// Package employee manages employee profiles and their stored balance
// fields.
package employee

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrAlreadyExists  = errors.New("employee already exists")
	ErrBadCredentials = errors.New("current password mismatch")
)

type Employee struct {
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	HireDate           *time.Time `json:"hireDate,omitempty"`
	AllowanceHours     float64    `json:"allowanceHours"`
	StoredAvailable    float64    `json:"storedAvailableHours"`
	StoredPending      float64    `json:"storedPendingHours"`
	DefaultRate        float64    `json:"defaultRate"`
	Active             bool       `json:"active"`
	CreatedAt          time.Time  `json:"createdAt"`
	PasswordHash       string     `json:"-"`
}

// DeleteReport describes the outcome of the dual-system delete: the profile
// row and the push-notification data are removed independently, and a
// failure in either is reported rather than hidden.
type DeleteReport struct {
	ProfileDeleted bool   `json:"profileDeleted"`
	TokensDeleted  bool   `json:"tokensDeleted"`
	FailedStep     string `json:"failedStep,omitempty"`
	Detail         string `json:"detail,omitempty"`
}

func (r DeleteReport) Partial() bool {
	return r.ProfileDeleted != r.TokensDeleted
}
