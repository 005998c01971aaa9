package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
)

// InquiryHandler handles inquiry HTTP requests
type InquiryHandler struct {
	inquiryRepo *database.InquiryRepository
	agentRepo   *database.AgentRepository
	logger      *logrus.Logger
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(
	inquiryRepo *database.InquiryRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *InquiryHandler {
	return &InquiryHandler{
		inquiryRepo: inquiryRepo,
		agentRepo:   agentRepo,
		logger:      logger,
	}
}

// List handles GET /api/v1/inquiries
func (h *InquiryHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	filters := database.InquiryFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   parsePage(c),
	}
	if propertyID := c.Query("property_id"); propertyID != "" {
		id, err := strconv.ParseInt(propertyID, 10, 64)
		if err != nil || id <= 0 {
			respondValidationError(c, "Invalid property_id filter")
			return
		}
		filters.PropertyID = id
	}

	if filters.Status != "" && !models.ValidInquiryStatus(filters.Status) {
		respondValidationError(c, "Invalid status filter")
		return
	}

	inquiries, total, err := h.inquiryRepo.ListByAgent(agent.ID, filters)
	if err != nil {
		respondInternal(c, h.logger, "list_inquiries", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       inquiries,
		"pagination": newPagination(filters.Page, total),
	})
}

// UpdateStatus handles PATCH /api/v1/inquiries/:id/status
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	inquiryID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateInquiryStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "status is required")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.inquiryRepo.UpdateStatus(agent.ID, inquiryID, req.Status); err != nil {
		if errors.Is(err, database.ErrInquiryNotFound) {
			respondNotFound(c, "Inquiry not found")
			return
		}
		respondInternal(c, h.logger, "update_inquiry_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}
