package models

import (
	"time"
)

// User types
const (
	UserTypeAgent  = "agent"
	UserTypeClient = "client"
)

// User represents an account holder (agent or client)
type User struct {
	ID           int64      `json:"id" db:"id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	Phone        NullString `json:"phone,omitempty" db:"phone"`
	Bio          NullString `json:"bio,omitempty" db:"bio"`
	ProfileImage NullString `json:"profile_image,omitempty" db:"profile_image"`
	UserType     string     `json:"user_type" db:"user_type"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// LoginSession is an audit record of a successful login
type LoginSession struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	DeviceType NullString `json:"device_type,omitempty" db:"device_type"`
	Browser    NullString `json:"browser,omitempty" db:"browser"`
	Platform   NullString `json:"platform,omitempty" db:"platform"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
