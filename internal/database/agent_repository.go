package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
)

// AgentRepository handles agent profile database operations
type AgentRepository struct {
	db DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// GetByUserID retrieves the agent record owned by a user. Returns nil
// without error when the user has no agent profile.
func (r *AgentRepository) GetByUserID(userID int64) (*models.Agent, error) {
	var agent models.Agent

	query := `
		SELECT id, user_id, license_number, brokerage, years_experience,
		       specialties, created_at, updated_at
		FROM agents
		WHERE user_id = $1
	`

	err := r.db.Get(&agent, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by user ID: %w", err)
	}

	return &agent, nil
}

// GetByID retrieves an agent by its own ID
func (r *AgentRepository) GetByID(id int64) (*models.Agent, error) {
	var agent models.Agent

	query := `
		SELECT id, user_id, license_number, brokerage, years_experience,
		       specialties, created_at, updated_at
		FROM agents
		WHERE id = $1
	`

	err := r.db.Get(&agent, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get agent by ID: %w", err)
	}

	return &agent, nil
}

// UpdateProfile updates the agent-level profile fields
func (r *AgentRepository) UpdateProfile(id int64, licenseNumber, brokerage string, yearsExperience int, specialties string) error {
	query := `
		UPDATE agents
		SET license_number = $1,
		    brokerage = $2,
		    years_experience = $3,
		    specialties = $4,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.Exec(query, licenseNumber, nullString(brokerage), yearsExperience, nullString(specialties), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update agent profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("agent not found")
	}

	return nil
}
