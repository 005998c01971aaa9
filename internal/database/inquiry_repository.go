package database

import (
	"errors"
	"fmt"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrInquiryNotFound is returned when an inquiry does not exist or does
// not belong to one of the agent's listed properties.
var ErrInquiryNotFound = errors.New("inquiry not found")

// InquiryFilters are the optional filters of the inquiries index page
type InquiryFilters struct {
	Status     string
	PropertyID int64
	Search     string
	Page       int
}

// InquiryRepository handles inquiry database operations
type InquiryRepository struct {
	db DB
}

// NewInquiryRepository creates a new inquiry repository
func NewInquiryRepository(db DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// statusOrderCase is the explicit ordinal for inquiry ordering: open work
// sorts before closed work. Mirrors models.InquiryStatusRank.
const statusOrderCase = `CASE i.status
			WHEN 'new' THEN 0
			WHEN 'in_progress' THEN 1
			WHEN 'responded' THEN 2
			WHEN 'closed' THEN 3
			ELSE 4
		END`

// ListByAgent returns one page of inquiries about the agent's listed
// properties plus the total matching count. Rows are ordered by status
// ordinal first, then recency.
func (r *InquiryRepository) ListByAgent(agentID int64, filters InquiryFilters) ([]models.InquirySummary, int, error) {
	qb := NewQueryBuilder()
	if filters.Status != "" {
		qb.Add("i.status = ?", filters.Status)
	}
	if filters.PropertyID > 0 {
		qb.Add("i.property_id = ?", filters.PropertyID)
	}
	qb.AddSearch(filters.Search, "i.name", "i.email", "i.message", "p.title")

	where, args := qb.Where(2)
	baseArgs := append([]interface{}{agentID}, args...)

	countQuery := `
		SELECT COUNT(*)
		FROM inquiries i
		JOIN properties p ON p.id = i.property_id
		JOIN property_listings pl ON pl.property_id = p.id
		WHERE pl.agent_id = $1` + where

	var total int
	if err := r.db.QueryRow(countQuery, baseArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	limit, offset := Paginate(filters.Page, DefaultPageSize)
	listQuery := fmt.Sprintf(`
		SELECT i.id, i.property_id, i.user_id, i.name, i.email, i.phone,
		       i.message, i.status, i.created_at,
		       p.title AS property_title, p.address AS property_address,
		       p.city AS property_city,
		       (SELECT pi.url FROM property_images pi
		        WHERE pi.property_id = p.id AND pi.is_primary
		        ORDER BY pi.display_order LIMIT 1) AS primary_image
		FROM inquiries i
		JOIN properties p ON p.id = i.property_id
		JOIN property_listings pl ON pl.property_id = p.id
		WHERE pl.agent_id = $1%s
		ORDER BY %s, i.created_at DESC
		LIMIT %d OFFSET %d`, where, statusOrderCase, limit, offset)

	inquiries := []models.InquirySummary{}
	if err := r.db.Select(&inquiries, listQuery, baseArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list inquiries: %w", err)
	}

	return inquiries, total, nil
}

// UpdateStatus changes an inquiry's status. Ownership runs through the
// property's listing; foreign inquiries surface as ErrInquiryNotFound.
func (r *InquiryRepository) UpdateStatus(agentID, inquiryID int64, status string) error {
	query := `
		UPDATE inquiries i
		SET status = $1
		FROM property_listings pl
		WHERE pl.property_id = i.property_id AND i.id = $2 AND pl.agent_id = $3
	`

	result, err := r.db.Exec(query, status, inquiryID, agentID)
	if err != nil {
		return fmt.Errorf("failed to update inquiry status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInquiryNotFound
	}

	return nil
}

// CountNewByAgent counts unhandled inquiries for the dashboard
func (r *InquiryRepository) CountNewByAgent(agentID int64) (int, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM inquiries i
		JOIN property_listings pl ON pl.property_id = i.property_id
		WHERE pl.agent_id = $1 AND i.status = 'new'
	`

	if err := r.db.QueryRow(query, agentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count new inquiries: %w", err)
	}

	return count, nil
}
