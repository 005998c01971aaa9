package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
)

// TransactionHandler handles deal HTTP requests
type TransactionHandler struct {
	transactionRepo *database.TransactionRepository
	agentRepo       *database.AgentRepository
	logger          *logrus.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactionRepo *database.TransactionRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
		agentRepo:       agentRepo,
		logger:          logger,
	}
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	filters := database.TransactionFilters{
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		Search:     c.Query("search"),
		DateFilter: c.Query("date_filter"),
		Page:       parsePage(c),
	}

	if filters.Status != "" && !models.ValidTransactionStatus(filters.Status) {
		respondValidationError(c, "Invalid status filter")
		return
	}
	if filters.Type != "" && !models.ValidTransactionType(filters.Type) {
		respondValidationError(c, "Invalid type filter")
		return
	}
	switch filters.DateFilter {
	case "", database.DateFilterThisMonth, database.DateFilterThisYear:
	default:
		respondValidationError(c, "Invalid date filter")
		return
	}

	transactions, total, err := h.transactionRepo.ListByAgent(agent.ID, filters)
	if err != nil {
		respondInternal(c, h.logger, "list_transactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       transactions,
		"pagination": newPagination(filters.Page, total),
	})
}

// Create handles POST /api/v1/transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	transaction, err := h.transactionRepo.Create(agent.ID, &req)
	if err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "create_transaction", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"property_id":    transaction.PropertyID,
		"agent_id":       agent.ID,
	}).Info("Transaction opened")

	c.JSON(http.StatusCreated, transaction)
}

// UpdateStatus handles PATCH /api/v1/transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	transactionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTransactionStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "status is required")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.transactionRepo.UpdateStatus(agent.ID, transactionID, req.Status); err != nil {
		if errors.Is(err, database.ErrTransactionNotFound) {
			respondNotFound(c, "Transaction not found")
			return
		}
		respondInternal(c, h.logger, "update_transaction_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
