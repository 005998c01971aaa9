package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator_Validate(t *testing.T) {
	v := NewEmailValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"simple address", "agent@example.com", "agent@example.com", nil},
		{"uppercase is lowercased", "Agent@Example.COM", "agent@example.com", nil},
		{"surrounding whitespace trimmed", "  agent@example.com  ", "agent@example.com", nil},
		{"plus addressing", "agent+leads@example.com", "agent+leads@example.com", nil},
		{"subdomain", "agent@mail.example.co.uk", "agent@mail.example.co.uk", nil},
		{"empty", "", "", ErrEmptyEmail},
		{"whitespace only", "   ", "", ErrEmptyEmail},
		{"missing at sign", "agent.example.com", "", ErrInvalidEmail},
		{"missing domain", "agent@", "", ErrInvalidEmail},
		{"missing tld", "agent@example", "", ErrInvalidEmail},
		{"spaces inside", "ag ent@example.com", "", ErrInvalidEmail},
		{"too long", strings.Repeat("a", 250) + "@example.com", "", ErrEmailTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmailValidator_IsValid(t *testing.T) {
	v := NewEmailValidator()

	assert.True(t, v.IsValid("agent@example.com"))
	assert.False(t, v.IsValid("not-an-email"))
}

func TestPasswordValidator_Validate(t *testing.T) {
	v := NewPasswordValidator()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid password", "sunset42beach", nil},
		{"exactly eight characters", "abcdefg1", nil},
		{"symbols are fine", "p@ssw0rd!", nil},
		{"empty", "", ErrPasswordTooShort},
		{"seven characters", "abcdef1", ErrPasswordTooShort},
		{"letters only", "abcdefgh", ErrPasswordTooWeak},
		{"digits only", "12345678", ErrPasswordTooWeak},
		{"symbols only", "!@#$%^&*", ErrPasswordTooWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordValidator_IsValid(t *testing.T) {
	v := NewPasswordValidator()

	assert.True(t, v.IsValid("sunset42beach"))
	assert.False(t, v.IsValid("short1"))
}
