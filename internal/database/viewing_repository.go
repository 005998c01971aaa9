package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrViewingNotFound is returned when a viewing does not exist or belongs
// to another agent.
var ErrViewingNotFound = errors.New("viewing not found")

// Date filter buckets for the viewings index page
const (
	DateFilterToday    = "today"
	DateFilterUpcoming = "upcoming"
	DateFilterPast     = "past"
)

// ViewingFilters are the optional filters of the viewings index page
type ViewingFilters struct {
	Status     string
	DateFilter string
	Search     string
	Page       int
}

// ViewingRepository handles viewing appointment database operations
type ViewingRepository struct {
	db DB
}

// NewViewingRepository creates a new viewing repository
func NewViewingRepository(db DB) *ViewingRepository {
	return &ViewingRepository{db: db}
}

// Create schedules a new viewing for a property the agent lists
func (r *ViewingRepository) Create(agentID int64, req *models.CreateViewingRequest) (*models.Viewing, error) {
	var owned bool
	ownershipQuery := `
		SELECT EXISTS (
			SELECT 1 FROM property_listings
			WHERE property_id = $1 AND agent_id = $2
		)
	`
	if err := r.db.QueryRow(ownershipQuery, req.PropertyID, agentID).Scan(&owned); err != nil {
		return nil, fmt.Errorf("failed to check listing ownership: %w", err)
	}
	if !owned {
		return nil, ErrListingNotFound
	}

	now := time.Now()
	viewing := &models.Viewing{
		PropertyID:  req.PropertyID,
		AgentID:     agentID,
		ViewingDate: req.ParsedViewingDate(),
		Status:      models.ViewingRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO property_viewings (
			property_id, agent_id, user_id, viewing_date, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRow(query,
		viewing.PropertyID, viewing.AgentID, nullInt(req.UserID),
		viewing.ViewingDate, viewing.Status, nullString(req.Notes),
		now, now,
	).Scan(&viewing.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create viewing: %w", err)
	}

	if req.UserID != 0 {
		viewing.UserID.Int64 = req.UserID
		viewing.UserID.Valid = true
	}
	if req.Notes != "" {
		viewing.Notes = models.NewNullString(req.Notes)
	}

	return viewing, nil
}

// ListByAgent returns one page of the agent's viewings plus the total
// matching count.
func (r *ViewingRepository) ListByAgent(agentID int64, filters ViewingFilters) ([]models.ViewingSummary, int, error) {
	qb := NewQueryBuilder()
	if filters.Status != "" {
		qb.Add("v.status = ?", filters.Status)
	}
	switch filters.DateFilter {
	case DateFilterToday:
		qb.Add("v.viewing_date::date = CURRENT_DATE")
	case DateFilterUpcoming:
		qb.Add("v.viewing_date > NOW()")
	case DateFilterPast:
		qb.Add("v.viewing_date < NOW()")
	}
	qb.AddSearch(filters.Search, "p.title", "p.address", "u.first_name", "u.last_name")

	where, args := qb.Where(2)
	baseArgs := append([]interface{}{agentID}, args...)

	countQuery := `
		SELECT COUNT(*)
		FROM property_viewings v
		JOIN properties p ON p.id = v.property_id
		LEFT JOIN users u ON u.id = v.user_id
		WHERE v.agent_id = $1` + where

	var total int
	if err := r.db.QueryRow(countQuery, baseArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count viewings: %w", err)
	}

	limit, offset := Paginate(filters.Page, DefaultPageSize)
	listQuery := fmt.Sprintf(`
		SELECT v.id, v.property_id, v.agent_id, v.user_id, v.viewing_date,
		       v.status, v.notes, v.created_at, v.updated_at,
		       p.title AS property_title, p.address AS property_address,
		       u.first_name || ' ' || u.last_name AS visitor_name,
		       u.email AS visitor_email, u.phone AS visitor_phone
		FROM property_viewings v
		JOIN properties p ON p.id = v.property_id
		LEFT JOIN users u ON u.id = v.user_id
		WHERE v.agent_id = $1%s
		ORDER BY v.viewing_date DESC
		LIMIT %d OFFSET %d`, where, limit, offset)

	viewings := []models.ViewingSummary{}
	if err := r.db.Select(&viewings, listQuery, baseArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list viewings: %w", err)
	}

	return viewings, total, nil
}

// UpdateStatus changes a viewing's status
func (r *ViewingRepository) UpdateStatus(agentID, viewingID int64, status string) error {
	query := `
		UPDATE property_viewings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND agent_id = $4
	`

	result, err := r.db.Exec(query, status, time.Now(), viewingID, agentID)
	if err != nil {
		return fmt.Errorf("failed to update viewing status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrViewingNotFound
	}

	return nil
}

// UpdateNotes replaces a viewing's notes
func (r *ViewingRepository) UpdateNotes(agentID, viewingID int64, notes string) error {
	query := `
		UPDATE property_viewings
		SET notes = $1, updated_at = $2
		WHERE id = $3 AND agent_id = $4
	`

	result, err := r.db.Exec(query, notes, time.Now(), viewingID, agentID)
	if err != nil {
		return fmt.Errorf("failed to update viewing notes: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrViewingNotFound
	}

	return nil
}

// Delete hard-deletes a viewing
func (r *ViewingRepository) Delete(agentID, viewingID int64) error {
	query := `DELETE FROM property_viewings WHERE id = $1 AND agent_id = $2`

	result, err := r.db.Exec(query, viewingID, agentID)
	if err != nil {
		return fmt.Errorf("failed to delete viewing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrViewingNotFound
	}

	return nil
}

// CountUpcomingByAgent counts confirmed or requested future viewings for
// the dashboard.
func (r *ViewingRepository) CountUpcomingByAgent(agentID int64) (int, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM property_viewings
		WHERE agent_id = $1
		  AND viewing_date > NOW()
		  AND status IN ('requested', 'confirmed')
	`

	if err := r.db.QueryRow(query, agentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count upcoming viewings: %w", err)
	}

	return count, nil
}
