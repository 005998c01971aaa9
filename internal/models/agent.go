package models

import (
	"errors"
	"time"
)

// Agent represents an agent's professional profile, owned by one user
type Agent struct {
	ID              int64      `json:"id" db:"id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	LicenseNumber   string     `json:"license_number" db:"license_number"`
	Brokerage       NullString `json:"brokerage,omitempty" db:"brokerage"`
	YearsExperience int        `json:"years_experience" db:"years_experience"`
	Specialties     NullString `json:"specialties,omitempty" db:"specialties"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// AgentProfile combines the user account and the agent record for the
// profile page.
type AgentProfile struct {
	User  User  `json:"user"`
	Agent Agent `json:"agent"`
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone" json:"phone"`
	Bio             string `form:"bio" json:"bio"`
	LicenseNumber   string `form:"license_number" json:"license_number"`
	Brokerage       string `form:"brokerage" json:"brokerage"`
	YearsExperience int    `form:"years_experience" json:"years_experience"`
	Specialties     string `form:"specialties" json:"specialties"`
}

// Validate checks required profile fields
func (r *UpdateProfileRequest) Validate() error {
	if r.FirstName == "" {
		return errors.New("first_name is required")
	}
	if r.LastName == "" {
		return errors.New("last_name is required")
	}
	if r.LicenseNumber == "" {
		return errors.New("license_number is required")
	}
	if r.YearsExperience < 0 {
		return errors.New("years_experience cannot be negative")
	}
	return nil
}

// ChangePasswordRequest carries a password change submission
type ChangePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password" binding:"required"`
	NewPassword     string `form:"new_password" json:"new_password" binding:"required"`
}
