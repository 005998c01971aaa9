package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrClientNotFound is returned when a client does not exist or has no
// history with the agent.
var ErrClientNotFound = errors.New("client not found")

// ClientRepository reads the client book of an agent: every client user
// who has inquired about, viewed, or transacted on one of the agent's
// properties, with the pre-fetched history facts the derived status is
// computed from.
type ClientRepository struct {
	db DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// clientBaseQuery collects each related client with the aggregates the
// status classification needs. The status itself is computed in Go
// (services.ClassifyClient), never in SQL and never stored.
const clientBaseQuery = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.phone,
	       u.profile_image, u.created_at,
	       EXISTS (
		SELECT 1 FROM transactions t
		WHERE (t.buyer_id = u.id OR t.seller_id = u.id)
		  AND (t.listing_agent_id = $1 OR t.buyer_agent_id = $1)
		  AND t.status = 'completed'
	       ) AS has_completed_transaction,
	       (SELECT MAX(v.viewing_date) FROM property_viewings v
		WHERE v.user_id = u.id AND v.agent_id = $1) AS last_viewing_at,
	       (SELECT MAX(i.created_at) FROM inquiries i
		JOIN property_listings pl ON pl.property_id = i.property_id
		WHERE i.user_id = u.id AND pl.agent_id = $1) AS last_inquiry_at
	FROM users u
	WHERE u.user_type = 'client'
	  AND (
		EXISTS (SELECT 1 FROM inquiries i
			JOIN property_listings pl ON pl.property_id = i.property_id
			WHERE i.user_id = u.id AND pl.agent_id = $1)
		OR EXISTS (SELECT 1 FROM property_viewings v
			WHERE v.user_id = u.id AND v.agent_id = $1)
		OR EXISTS (SELECT 1 FROM transactions t
			WHERE (t.buyer_id = u.id OR t.seller_id = u.id)
			  AND (t.listing_agent_id = $1 OR t.buyer_agent_id = $1))
	  )`

// ListByAgent returns the agent's clients with their history facts,
// optionally narrowed by a free-text search. Status filtering happens in
// the handler after classification, because the status is derived.
func (r *ClientRepository) ListByAgent(agentID int64, search string) ([]models.ClientSummary, error) {
	qb := NewQueryBuilder()
	qb.AddSearch(search, "u.first_name", "u.last_name", "u.email", "u.phone")

	where, args := qb.Where(2)
	baseArgs := append([]interface{}{agentID}, args...)

	query := clientBaseQuery + where + `
	ORDER BY u.last_name, u.first_name`

	clients := []models.ClientSummary{}
	if err := r.db.Select(&clients, query, baseArgs...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, nil
}

// GetByID returns one of the agent's clients with history facts
func (r *ClientRepository) GetByID(agentID, clientID int64) (*models.ClientSummary, error) {
	query := clientBaseQuery + ` AND u.id = $2`

	var client models.ClientSummary
	if err := r.db.Get(&client, query, agentID, clientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

// Update edits a client's contact record. A duplicate email surfaces as
// ErrDuplicateEmail so the form can re-render with a field error.
func (r *ClientRepository) Update(clientID int64, req *models.UpdateClientRequest) error {
	query := `
		UPDATE users
		SET first_name = $1,
		    last_name = $2,
		    email = $3,
		    phone = $4,
		    bio = $5,
		    updated_at = NOW()
		WHERE id = $6 AND user_type = 'client'
	`

	result, err := r.db.Exec(query, req.FirstName, req.LastName, req.Email,
		nullString(req.Phone), nullString(req.Bio), clientID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}
