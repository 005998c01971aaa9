package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
)

// ViewingHandler handles viewing appointment HTTP requests
type ViewingHandler struct {
	viewingRepo *database.ViewingRepository
	agentRepo   *database.AgentRepository
	logger      *logrus.Logger
}

// NewViewingHandler creates a new viewing handler
func NewViewingHandler(
	viewingRepo *database.ViewingRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *ViewingHandler {
	return &ViewingHandler{
		viewingRepo: viewingRepo,
		agentRepo:   agentRepo,
		logger:      logger,
	}
}

// List handles GET /api/v1/viewings
func (h *ViewingHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	filters := database.ViewingFilters{
		Status:     c.Query("status"),
		DateFilter: c.Query("date_filter"),
		Search:     c.Query("search"),
		Page:       parsePage(c),
	}

	if filters.Status != "" && !models.ValidViewingStatus(filters.Status) {
		respondValidationError(c, "Invalid status filter")
		return
	}
	switch filters.DateFilter {
	case "", database.DateFilterToday, database.DateFilterUpcoming, database.DateFilterPast:
	default:
		respondValidationError(c, "Invalid date filter")
		return
	}

	viewings, total, err := h.viewingRepo.ListByAgent(agent.ID, filters)
	if err != nil {
		respondInternal(c, h.logger, "list_viewings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       viewings,
		"pagination": newPagination(filters.Page, total),
	})
}

// Create handles POST /api/v1/viewings
func (h *ViewingHandler) Create(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	var req models.CreateViewingRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	viewing, err := h.viewingRepo.Create(agent.ID, &req)
	if err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "create_viewing", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"viewing_id":  viewing.ID,
		"property_id": viewing.PropertyID,
		"agent_id":    agent.ID,
	}).Info("Viewing scheduled")

	c.JSON(http.StatusCreated, viewing)
}

// UpdateStatus handles PATCH /api/v1/viewings/:id/status
func (h *ViewingHandler) UpdateStatus(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	viewingID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateViewingStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "status is required")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.viewingRepo.UpdateStatus(agent.ID, viewingID, req.Status); err != nil {
		if errors.Is(err, database.ErrViewingNotFound) {
			respondNotFound(c, "Viewing not found")
			return
		}
		respondInternal(c, h.logger, "update_viewing_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// UpdateNotes handles PATCH /api/v1/viewings/:id/notes
func (h *ViewingHandler) UpdateNotes(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	viewingID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateViewingNotesRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "notes is required")
		return
	}

	if err := h.viewingRepo.UpdateNotes(agent.ID, viewingID, req.Notes); err != nil {
		if errors.Is(err, database.ErrViewingNotFound) {
			respondNotFound(c, "Viewing not found")
			return
		}
		respondInternal(c, h.logger, "update_viewing_notes", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notes updated"})
}

// Delete handles DELETE /api/v1/viewings/:id
func (h *ViewingHandler) Delete(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	viewingID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.viewingRepo.Delete(agent.ID, viewingID); err != nil {
		if errors.Is(err, database.ErrViewingNotFound) {
			respondNotFound(c, "Viewing not found")
			return
		}
		respondInternal(c, h.logger, "delete_viewing", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Viewing deleted"})
}
