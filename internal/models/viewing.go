package models

import (
	"errors"
	"fmt"
	"time"
)

// Viewing statuses
const (
	ViewingRequested = "requested"
	ViewingConfirmed = "confirmed"
	ViewingCompleted = "completed"
	ViewingCanceled  = "canceled"
)

// ValidViewingStatus reports whether s is a known viewing status
func ValidViewingStatus(s string) bool {
	switch s {
	case ViewingRequested, ViewingConfirmed, ViewingCompleted, ViewingCanceled:
		return true
	}
	return false
}

// Viewing is a scheduled property appointment
type Viewing struct {
	ID          int64      `json:"id" db:"id"`
	PropertyID  int64      `json:"property_id" db:"property_id"`
	AgentID     int64      `json:"agent_id" db:"agent_id"`
	UserID      NullInt64  `json:"user_id,omitempty" db:"user_id"`
	ViewingDate time.Time  `json:"viewing_date" db:"viewing_date"`
	Status      string     `json:"status" db:"status"`
	Notes       NullString `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ViewingSummary joins the viewing with property and visitor details
type ViewingSummary struct {
	Viewing
	PropertyTitle   string     `json:"property_title" db:"property_title"`
	PropertyAddress string     `json:"property_address" db:"property_address"`
	VisitorName     NullString `json:"visitor_name,omitempty" db:"visitor_name"`
	VisitorEmail    NullString `json:"visitor_email,omitempty" db:"visitor_email"`
	VisitorPhone    NullString `json:"visitor_phone,omitempty" db:"visitor_phone"`
}

// CreateViewingRequest schedules a new appointment
type CreateViewingRequest struct {
	PropertyID  int64  `form:"property_id" json:"property_id"`
	UserID      int64  `form:"user_id" json:"user_id"` // optional registered client
	ViewingDate string `form:"viewing_date" json:"viewing_date"`
	Notes       string `form:"notes" json:"notes"`
}

// Validate checks the viewing submission
func (r *CreateViewingRequest) Validate() error {
	if r.PropertyID <= 0 {
		return errors.New("property_id is required")
	}
	if r.ViewingDate == "" {
		return errors.New("viewing_date is required")
	}
	if _, err := time.Parse("2006-01-02 15:04", r.ViewingDate); err != nil {
		return errors.New("viewing_date must be in YYYY-MM-DD HH:MM format")
	}
	return nil
}

// ParsedViewingDate returns the parsed appointment time. Call Validate first.
func (r *CreateViewingRequest) ParsedViewingDate() time.Time {
	t, _ := time.Parse("2006-01-02 15:04", r.ViewingDate)
	return t
}

// UpdateViewingStatusRequest carries a viewing status change
type UpdateViewingStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// Validate checks the submitted status value
func (r *UpdateViewingStatusRequest) Validate() error {
	if !ValidViewingStatus(r.Status) {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}

// UpdateViewingNotesRequest carries an add_note submission
type UpdateViewingNotesRequest struct {
	Notes string `form:"notes" json:"notes" binding:"required"`
}
