package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/homevista/brokerage-backend/internal/models"
)

// ErrTransactionNotFound is returned when a transaction does not exist or
// the agent is not a party to it.
var ErrTransactionNotFound = errors.New("transaction not found")

// Date range filters for the transactions index page
const (
	DateFilterThisMonth = "this_month"
	DateFilterThisYear  = "this_year"
)

// TransactionFilters are the optional filters of the transactions index page
type TransactionFilters struct {
	Status     string
	Type       string
	Search     string
	DateFilter string // this_month | this_year
	Page       int
}

// TransactionRepository handles deal database operations
type TransactionRepository struct {
	db DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create opens a new deal with the agent as listing agent
func (r *TransactionRepository) Create(agentID int64, req *models.CreateTransactionRequest) (*models.Transaction, error) {
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

	var closing interface{}
	if req.ClosingDate != "" {
		if parsed, perr := time.Parse("2006-01-02", req.ClosingDate); perr == nil {
			closing = parsed
		}
	}

	now := time.Now()
	txn := &models.Transaction{
		PropertyID:      req.PropertyID,
		ListingAgentID:  agentID,
		TransactionType: req.TransactionType,
		SalePrice:       req.SalePrice,
		Status:          models.TransactionPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	query := `
		INSERT INTO transactions (
			property_id, buyer_id, seller_id, listing_agent_id, buyer_agent_id,
			transaction_type, sale_price, status, closing_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(query,
		req.PropertyID, nullInt(req.BuyerID), nullInt(req.SellerID),
		agentID, nullInt(req.BuyerAgentID),
		req.TransactionType, req.SalePrice, txn.Status, closing,
		now, now,
	).Scan(&txn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return txn, nil
}

// ListByAgent returns one page of transactions the agent participates in
// (as listing agent or buyer agent) plus the total matching count.
func (r *TransactionRepository) ListByAgent(agentID int64, filters TransactionFilters) ([]models.TransactionSummary, int, error) {
	qb := NewQueryBuilder()
	if filters.Status != "" {
		qb.Add("t.status = ?", filters.Status)
	}
	if filters.Type != "" {
		qb.Add("t.transaction_type = ?", filters.Type)
	}
	switch filters.DateFilter {
	case DateFilterThisMonth:
		qb.Add("date_trunc('month', t.created_at) = date_trunc('month', NOW())")
	case DateFilterThisYear:
		qb.Add("date_trunc('year', t.created_at) = date_trunc('year', NOW())")
	}
	qb.AddSearch(filters.Search, "p.title", "p.address", "b.first_name", "b.last_name")

	where, args := qb.Where(3)
	baseArgs := append([]interface{}{agentID, agentID}, args...)

	countQuery := `
		SELECT COUNT(*)
		FROM transactions t
		JOIN properties p ON p.id = t.property_id
		LEFT JOIN users b ON b.id = t.buyer_id
		WHERE (t.listing_agent_id = $1 OR t.buyer_agent_id = $2)` + where

	var total int
	if err := r.db.QueryRow(countQuery, baseArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limit, offset := Paginate(filters.Page, DefaultPageSize)
	listQuery := fmt.Sprintf(`
		SELECT t.id, t.property_id, t.buyer_id, t.seller_id,
		       t.listing_agent_id, t.buyer_agent_id, t.transaction_type,
		       t.sale_price, t.status, t.closing_date, t.created_at, t.updated_at,
		       p.title AS property_title, p.address AS property_address,
		       b.first_name || ' ' || b.last_name AS buyer_name,
		       s.first_name || ' ' || s.last_name AS seller_name
		FROM transactions t
		JOIN properties p ON p.id = t.property_id
		LEFT JOIN users b ON b.id = t.buyer_id
		LEFT JOIN users s ON s.id = t.seller_id
		WHERE (t.listing_agent_id = $1 OR t.buyer_agent_id = $2)%s
		ORDER BY t.created_at DESC
		LIMIT %d OFFSET %d`, where, limit, offset)

	transactions := []models.TransactionSummary{}
	if err := r.db.Select(&transactions, listQuery, baseArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// UpdateStatus changes a deal's status; completing a deal stamps the
// closing date if it was never set.
func (r *TransactionRepository) UpdateStatus(agentID, transactionID int64, status string) error {
	query := `
		UPDATE transactions
		SET status = $1,
		    closing_date = CASE
			WHEN $1 = 'completed' AND closing_date IS NULL THEN NOW()
			ELSE closing_date
		    END,
		    updated_at = $2
		WHERE id = $3 AND (listing_agent_id = $4 OR buyer_agent_id = $4)
	`

	result, err := r.db.Exec(query, status, time.Now(), transactionID, agentID)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// CountInProgressByAgent counts open deals for the dashboard
func (r *TransactionRepository) CountInProgressByAgent(agentID int64) (int, error) {
	var count int

	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE (listing_agent_id = $1 OR buyer_agent_id = $1)
		  AND status IN ('pending', 'in_progress')
	`

	if err := r.db.QueryRow(query, agentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count in-progress transactions: %w", err)
	}

	return count, nil
}
