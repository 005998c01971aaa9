package database

import (
	"errors"
	"fmt"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrReviewNotFound is returned when a review does not exist or belongs to
// another agent.
var ErrReviewNotFound = errors.New("review not found")

// ReviewFilters are the optional filters of the reviews index page
type ReviewFilters struct {
	Filter string // all | pending | responded | approved
	Sort   string // newest | oldest | highest | lowest
	Page   int
}

// ReviewRepository handles review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListByAgent returns one page of the agent's reviews plus the total
// matching count.
func (r *ReviewRepository) ListByAgent(agentID int64, filters ReviewFilters) ([]models.ReviewSummary, int, error) {
	qb := NewQueryBuilder()
	switch filters.Filter {
	case models.ReviewFilterPending:
		qb.Add("rv.agent_response IS NULL")
	case models.ReviewFilterResponded:
		qb.Add("rv.agent_response IS NOT NULL")
	case models.ReviewFilterApproved:
		qb.Add("rv.is_approved = TRUE")
	}

	where, args := qb.Where(2)
	baseArgs := append([]interface{}{agentID}, args...)

	countQuery := `
		SELECT COUNT(*)
		FROM reviews rv
		WHERE rv.agent_id = $1` + where

	var total int
	if err := r.db.QueryRow(countQuery, baseArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	orderBy := "rv.created_at DESC"
	switch filters.Sort {
	case models.ReviewSortOldest:
		orderBy = "rv.created_at ASC"
	case models.ReviewSortHighest:
		orderBy = "rv.rating DESC, rv.created_at DESC"
	case models.ReviewSortLowest:
		orderBy = "rv.rating ASC, rv.created_at DESC"
	}

	limit, offset := Paginate(filters.Page, DefaultPageSize)
	listQuery := fmt.Sprintf(`
		SELECT rv.id, rv.agent_id, rv.user_id, rv.property_id, rv.rating,
		       rv.title, rv.content, rv.is_approved, rv.agent_response,
		       rv.response_date, rv.created_at,
		       u.first_name || ' ' || u.last_name AS reviewer_name,
		       u.email AS reviewer_email,
		       p.title AS property_title
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		LEFT JOIN properties p ON p.id = rv.property_id
		WHERE rv.agent_id = $1%s
		ORDER BY %s
		LIMIT %d OFFSET %d`, where, orderBy, limit, offset)

	reviews := []models.ReviewSummary{}
	if err := r.db.Select(&reviews, listQuery, baseArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}

// Respond records the agent's response and its date
func (r *ReviewRepository) Respond(agentID, reviewID int64, response string) error {
	query := `
		UPDATE reviews
		SET agent_response = $1,
		    response_date = NOW()
		WHERE id = $2 AND agent_id = $3
	`

	result, err := r.db.Exec(query, response, reviewID, agentID)
	if err != nil {
		return fmt.Errorf("failed to respond to review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Stats returns the agent's review aggregates for the dashboard and the
// reviews page header.
func (r *ReviewRepository) Stats(agentID int64) (*models.ReviewStats, error) {
	var stats models.ReviewStats

	query := `
		SELECT COUNT(*) AS total_reviews,
		       COALESCE(AVG(rating), 0) AS average_rating,
		       COUNT(*) FILTER (WHERE agent_response IS NULL) AS pending_count
		FROM reviews
		WHERE agent_id = $1
	`

	if err := r.db.Get(&stats, query, agentID); err != nil {
		return nil, fmt.Errorf("failed to get review stats: %w", err)
	}

	return &stats, nil
}
