package models

import (
	"errors"
	"time"
)

// Review filters for the reviews index page
const (
	ReviewFilterAll       = "all"
	ReviewFilterPending   = "pending"   // approved but not yet responded to
	ReviewFilterResponded = "responded"
	ReviewFilterApproved  = "approved"
)

// Review sort orders
const (
	ReviewSortNewest  = "newest"
	ReviewSortOldest  = "oldest"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
)

// Review is client feedback on an agent
type Review struct {
	ID            int64      `json:"id" db:"id"`
	AgentID       int64      `json:"agent_id" db:"agent_id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	PropertyID    NullInt64  `json:"property_id,omitempty" db:"property_id"`
	Rating        int        `json:"rating" db:"rating"`
	Title         NullString `json:"title,omitempty" db:"title"`
	Content       string     `json:"content" db:"content"`
	IsApproved    bool       `json:"is_approved" db:"is_approved"`
	AgentResponse NullString `json:"agent_response,omitempty" db:"agent_response"`
	ResponseDate  NullTime   `json:"response_date,omitempty" db:"response_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// ReviewSummary joins the review with reviewer and property details
type ReviewSummary struct {
	Review
	ReviewerName  string     `json:"reviewer_name" db:"reviewer_name"`
	ReviewerEmail string     `json:"reviewer_email" db:"reviewer_email"`
	PropertyTitle NullString `json:"property_title,omitempty" db:"property_title"`
}

// ReviewStats is the aggregate shown on the reviews and dashboard pages
type ReviewStats struct {
	TotalReviews  int     `json:"total_reviews" db:"total_reviews"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	PendingCount  int     `json:"pending_count" db:"pending_count"`
}

// RespondToReviewRequest carries an agent's response to a review
type RespondToReviewRequest struct {
	Response string `form:"response" json:"response" binding:"required"`
}

// Validate checks the response text
func (r *RespondToReviewRequest) Validate() error {
	if len(r.Response) < 2 {
		return errors.New("response is too short")
	}
	return nil
}
