package models

import (
	"errors"
	"strings"
	"time"
)

// Derived client statuses, in precedence order
const (
	ClientActive   = "active"
	ClientProspect = "prospect"
	ClientLead     = "lead"
	ClientInactive = "inactive"
)

// ValidClientStatus reports whether s is a known derived client status
func ValidClientStatus(s string) bool {
	switch s {
	case ClientActive, ClientProspect, ClientLead, ClientInactive:
		return true
	}
	return false
}

// ClientHistory holds the pre-fetched facts the status classification
// operates on. The status itself is never stored.
type ClientHistory struct {
	HasCompletedTransaction bool     `json:"has_completed_transaction" db:"has_completed_transaction"`
	LastViewingAt           NullTime `json:"last_viewing_at,omitempty" db:"last_viewing_at"`
	LastInquiryAt           NullTime `json:"last_inquiry_at,omitempty" db:"last_inquiry_at"`
}

// ClientSummary is one row of the clients index page. Status is computed
// per request from History.
type ClientSummary struct {
	ID           int64      `json:"id" db:"id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	Phone        NullString `json:"phone,omitempty" db:"phone"`
	ProfileImage NullString `json:"profile_image,omitempty" db:"profile_image"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	ClientHistory
	Status string `json:"status" db:"-"`
}

// UpdateClientRequest carries the client edit form fields
type UpdateClientRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	Bio       string `form:"bio" json:"bio"`
}

// Validate checks required client fields
func (r *UpdateClientRequest) Validate() error {
	if r.FirstName == "" {
		return errors.New("first_name is required")
	}
	if r.LastName == "" {
		return errors.New("last_name is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(r.Email, "@") || strings.HasPrefix(r.Email, "@") || strings.HasSuffix(r.Email, "@") {
		return errors.New("email is not valid")
	}
	return nil
}
