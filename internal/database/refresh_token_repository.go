package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// RefreshTokenRepository stores hashed refresh tokens so they can be
// revoked server-side.
type RefreshTokenRepository struct {
	db DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// hashToken creates a SHA-256 hash of the token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Store saves a refresh token hash
func (r *RefreshTokenRepository) Store(userID int64, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(query, userID, hashToken(token), expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// IsValid reports whether the token is stored, unrevoked, and unexpired
func (r *RefreshTokenRepository) IsValid(userID int64, token string) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE user_id = $1
			  AND token_hash = $2
			  AND revoked_at IS NULL
			  AND expires_at > NOW()
		)
	`

	err := r.db.QueryRow(query, userID, hashToken(token)).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}

	return exists, nil
}

// Revoke marks one refresh token as revoked
func (r *RefreshTokenRepository) Revoke(userID int64, token string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(query, userID, hashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllForUser revokes every live refresh token of a user (password
// change, logout-everywhere).
func (r *RefreshTokenRepository) RevokeAllForUser(userID int64) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	return nil
}
