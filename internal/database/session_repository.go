package database

import (
	"fmt"
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
	"github.com/homevista/brokerage-backend/internal/utils"
)

// SessionRepository records login session audit rows
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// RecordLogin stores one audit row for a successful login, with the device
// details parsed from the User-Agent header.
func (r *SessionRepository) RecordLogin(userID int64, ipAddress, userAgent string) (*models.LoginSession, error) {
	device := utils.ParseUserAgent(userAgent)

	query := `
		INSERT INTO login_sessions (
			user_id, ip_address, user_agent, device_type, browser,
			platform, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	session := &models.LoginSession{
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	err := r.db.QueryRow(query,
		userID,
		nullString(ipAddress),
		nullString(userAgent),
		nullString(device.DeviceType),
		nullString(device.Browser),
		nullString(device.Platform),
		session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record login session: %w", err)
	}

	return session, nil
}

// RecentByUser lists a user's latest logins, newest first
func (r *SessionRepository) RecentByUser(userID int64, limit int) ([]models.LoginSession, error) {
	sessions := []models.LoginSession{}

	query := `
		SELECT id, user_id, ip_address, user_agent, device_type, browser,
		       platform, created_at
		FROM login_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if err := r.db.Select(&sessions, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list login sessions: %w", err)
	}

	return sessions, nil
}
