package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is not a valid format
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrEmailTooLong indicates the email address exceeds the storage limit
	ErrEmailTooLong = errors.New("email address must be at most 255 characters")

	// ErrPasswordTooShort indicates the password is shorter than 8 characters
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordTooWeak indicates the password lacks required character classes
	ErrPasswordTooWeak = errors.New("password must contain at least one letter and one number")
)

// emailRegex matches the common email shape without attempting full RFC 5322
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// EmailValidator handles email address validation
type EmailValidator struct{}

// NewEmailValidator creates a new email validator instance
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{}
}

// Validate validates an email address and returns it sanitized
// (trimmed and lowercased) so lookups and uniqueness checks are
// case-insensitive.
func (v *EmailValidator) Validate(email string) (string, error) {
	sanitized := v.Sanitize(email)

	if sanitized == "" {
		return "", ErrEmptyEmail
	}

	if len(sanitized) > 255 {
		return "", ErrEmailTooLong
	}

	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}

	return sanitized, nil
}

// Sanitize trims whitespace and lowercases an email address
func (v *EmailValidator) Sanitize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValid is a convenience method that returns true if the email is valid
func (v *EmailValidator) IsValid(email string) bool {
	_, err := v.Validate(email)
	return err == nil
}

// PasswordValidator handles password strength validation
type PasswordValidator struct {
	minLength int
}

// NewPasswordValidator creates a new password validator instance
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{minLength: 8}
}

// Validate checks that a password meets the minimum strength rules:
// at least 8 characters, with at least one letter and one number.
func (v *PasswordValidator) Validate(password string) error {
	if len(password) < v.minLength {
		return ErrPasswordTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}

	return nil
}

// IsValid is a convenience method that returns true if the password is valid
func (v *PasswordValidator) IsValid(password string) bool {
	return v.Validate(password) == nil
}
