package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewRepo *database.ReviewRepository
	agentRepo  *database.AgentRepository
	logger     *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviewRepo *database.ReviewRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviewRepo: reviewRepo,
		agentRepo:  agentRepo,
		logger:     logger,
	}
}

// List handles GET /api/v1/reviews. The response carries the agent's rating
// aggregate alongside the page of reviews.
func (h *ReviewHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	filters := database.ReviewFilters{
		Filter: c.DefaultQuery("filter", models.ReviewFilterAll),
		Sort:   c.DefaultQuery("sort", models.ReviewSortNewest),
		Page:   parsePage(c),
	}

	switch filters.Filter {
	case models.ReviewFilterAll, models.ReviewFilterPending, models.ReviewFilterResponded, models.ReviewFilterApproved:
	default:
		respondValidationError(c, "Invalid filter")
		return
	}
	switch filters.Sort {
	case models.ReviewSortNewest, models.ReviewSortOldest, models.ReviewSortHighest, models.ReviewSortLowest:
	default:
		respondValidationError(c, "Invalid sort")
		return
	}

	reviews, total, err := h.reviewRepo.ListByAgent(agent.ID, filters)
	if err != nil {
		respondInternal(c, h.logger, "list_reviews", err)
		return
	}

	stats, err := h.reviewRepo.Stats(agent.ID)
	if err != nil {
		respondInternal(c, h.logger, "review_stats", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       reviews,
		"stats":      stats,
		"pagination": newPagination(filters.Page, total),
	})
}

// Respond handles POST /api/v1/reviews/:id/response
func (h *ReviewHandler) Respond(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.RespondToReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "response is required")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.reviewRepo.Respond(agent.ID, reviewID, req.Response); err != nil {
		if errors.Is(err, database.ErrReviewNotFound) {
			respondNotFound(c, "Review not found")
			return
		}
		respondInternal(c, h.logger, "respond_to_review", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response saved"})
}
