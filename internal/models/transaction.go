package models

import (
	"errors"
	"fmt"
	"time"
)

// Transaction statuses
const (
	TransactionPending    = "pending"
	TransactionInProgress = "in_progress"
	TransactionCompleted  = "completed"
	TransactionCanceled   = "canceled"
)

// Transaction types
const (
	TransactionSale   = "sale"
	TransactionRental = "rental"
)

// ValidTransactionStatus reports whether s is a known transaction status
func ValidTransactionStatus(s string) bool {
	switch s {
	case TransactionPending, TransactionInProgress, TransactionCompleted, TransactionCanceled:
		return true
	}
	return false
}

// ValidTransactionType reports whether t is a known transaction type
func ValidTransactionType(t string) bool {
	return t == TransactionSale || t == TransactionRental
}

// Transaction is a completed or in-progress deal
type Transaction struct {
	ID              int64     `json:"id" db:"id"`
	PropertyID      int64     `json:"property_id" db:"property_id"`
	BuyerID         NullInt64 `json:"buyer_id,omitempty" db:"buyer_id"`
	SellerID        NullInt64 `json:"seller_id,omitempty" db:"seller_id"`
	ListingAgentID  int64     `json:"listing_agent_id" db:"listing_agent_id"`
	BuyerAgentID    NullInt64 `json:"buyer_agent_id,omitempty" db:"buyer_agent_id"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	SalePrice       float64   `json:"sale_price" db:"sale_price"`
	Status          string    `json:"status" db:"status"`
	ClosingDate     NullTime  `json:"closing_date,omitempty" db:"closing_date"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TransactionSummary joins the transaction with property and party names
type TransactionSummary struct {
	Transaction
	PropertyTitle   string     `json:"property_title" db:"property_title"`
	PropertyAddress string     `json:"property_address" db:"property_address"`
	BuyerName       NullString `json:"buyer_name,omitempty" db:"buyer_name"`
	SellerName      NullString `json:"seller_name,omitempty" db:"seller_name"`
}

// CreateTransactionRequest opens a new deal
type CreateTransactionRequest struct {
	PropertyID      int64   `form:"property_id" json:"property_id"`
	BuyerID         int64   `form:"buyer_id" json:"buyer_id"`
	SellerID        int64   `form:"seller_id" json:"seller_id"`
	BuyerAgentID    int64   `form:"buyer_agent_id" json:"buyer_agent_id"`
	TransactionType string  `form:"transaction_type" json:"transaction_type"`
	SalePrice       float64 `form:"sale_price" json:"sale_price"`
	ClosingDate     string  `form:"closing_date" json:"closing_date"` // YYYY-MM-DD, optional
}

// Validate checks the transaction submission
func (r *CreateTransactionRequest) Validate() error {
	if r.PropertyID <= 0 {
		return errors.New("property_id is required")
	}
	if !ValidTransactionType(r.TransactionType) {
		return fmt.Errorf("invalid transaction_type: %s", r.TransactionType)
	}
	if r.SalePrice <= 0 {
		return errors.New("sale_price must be positive")
	}
	if r.ClosingDate != "" {
		if _, err := time.Parse("2006-01-02", r.ClosingDate); err != nil {
			return errors.New("closing_date must be in YYYY-MM-DD format")
		}
	}
	return nil
}

// UpdateTransactionStatusRequest carries a deal status change
type UpdateTransactionStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// Validate checks the submitted status value
func (r *UpdateTransactionStatusRequest) Validate() error {
	if !ValidTransactionStatus(r.Status) {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return nil
}
