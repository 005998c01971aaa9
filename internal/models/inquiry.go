package models

import (
	"fmt"
	"time"
)

// Inquiry statuses, in display order: new work first, closed last
const (
	InquiryNew        = "new"
	InquiryInProgress = "in_progress"
	InquiryResponded  = "responded"
	InquiryClosed     = "closed"
)

// inquiryStatusRank is the explicit sort ordinal for inquiry statuses
var inquiryStatusRank = map[string]int{
	InquiryNew:        0,
	InquiryInProgress: 1,
	InquiryResponded:  2,
	InquiryClosed:     3,
}

// InquiryStatusRank returns the sort ordinal for a status. Unknown statuses
// sort after all known ones.
func InquiryStatusRank(status string) int {
	if rank, ok := inquiryStatusRank[status]; ok {
		return rank
	}
	return len(inquiryStatusRank)
}

// ValidInquiryStatus reports whether s is a known inquiry status
func ValidInquiryStatus(s string) bool {
	_, ok := inquiryStatusRank[s]
	return ok
}

// Inquiry is a client-submitted message about a property
type Inquiry struct {
	ID         int64      `json:"id" db:"id"`
	PropertyID int64      `json:"property_id" db:"property_id"`
	UserID     NullInt64  `json:"user_id,omitempty" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Phone      NullString `json:"phone,omitempty" db:"phone"`
	Message    string     `json:"message" db:"message"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// InquirySummary joins the inquiry with its property for the index page
type InquirySummary struct {
	Inquiry
	PropertyTitle   string     `json:"property_title" db:"property_title"`
	PropertyAddress string     `json:"property_address" db:"property_address"`
	PropertyCity    string     `json:"property_city" db:"property_city"`
	PrimaryImage    NullString `json:"primary_image,omitempty" db:"primary_image"`
}

// UpdateInquiryStatusRequest carries an inquiry status change
type UpdateInquiryStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// Validate checks the submitted status value
func (r *UpdateInquiryStatusRequest) Validate() error {
	if !ValidInquiryStatus(r.Status) {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}
