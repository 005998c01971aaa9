package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrDuplicateEmail is returned when an email address is already taken.
var ErrDuplicateEmail = fmt.Errorf("email address is already in use")

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, phone, bio,
	       profile_image, user_type, password_hash, created_at, updated_at`

// GetByID retrieves a user by ID. Returns nil without error when not found.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	var user models.User

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email. Returns nil without error when not found.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// UpdateProfile updates the user-level profile fields
func (r *UserRepository) UpdateProfile(id int64, firstName, lastName, phone, bio string) error {
	query := `
		UPDATE users
		SET first_name = $1,
		    last_name = $2,
		    phone = $3,
		    bio = $4,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(query, firstName, lastName, nullString(phone), nullString(bio), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateEmail changes a user's email, surfacing ErrDuplicateEmail on a
// unique-constraint violation.
func (r *UserRepository) UpdateEmail(id int64, email string) error {
	query := `
		UPDATE users
		SET email = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, email, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update email: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdatePassword stores a new bcrypt hash
func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateProfileImage stores the relative path of a newly uploaded photo and
// returns the previous path so the caller can remove the old file.
func (r *UserRepository) UpdateProfileImage(id int64, path string) (string, error) {
	var previous sql.NullString

	err := r.db.QueryRow(`SELECT profile_image FROM users WHERE id = $1`, id).Scan(&previous)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("user not found")
		}
		return "", fmt.Errorf("failed to get current profile image: %w", err)
	}

	query := `
		UPDATE users
		SET profile_image = $1,
		    updated_at = $2
		WHERE id = $3
	`

	if _, err := r.db.Exec(query, path, time.Now(), id); err != nil {
		return "", fmt.Errorf("failed to update profile image: %w", err)
	}

	return previous.String, nil
}

// nullString converts an empty string to a SQL NULL
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation detects a Postgres unique-constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
