package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
)

// DashboardHandler serves the agent's landing-page summary
type DashboardHandler struct {
	propertyRepo    *database.PropertyRepository
	inquiryRepo     *database.InquiryRepository
	viewingRepo     *database.ViewingRepository
	transactionRepo *database.TransactionRepository
	reviewRepo      *database.ReviewRepository
	agentRepo       *database.AgentRepository
	logger          *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	propertyRepo *database.PropertyRepository,
	inquiryRepo *database.InquiryRepository,
	viewingRepo *database.ViewingRepository,
	transactionRepo *database.TransactionRepository,
	reviewRepo *database.ReviewRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		propertyRepo:    propertyRepo,
		inquiryRepo:     inquiryRepo,
		viewingRepo:     viewingRepo,
		transactionRepo: transactionRepo,
		reviewRepo:      reviewRepo,
		agentRepo:       agentRepo,
		logger:          logger,
	}
}

// Stats handles GET /api/v1/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	var stats models.DashboardStats
	var err error

	if stats.ActiveListings, err = h.propertyRepo.CountActiveByAgent(agent.ID); err != nil {
		respondInternal(c, h.logger, "dashboard_listings", err)
		return
	}
	if stats.NewInquiries, err = h.inquiryRepo.CountNewByAgent(agent.ID); err != nil {
		respondInternal(c, h.logger, "dashboard_inquiries", err)
		return
	}
	if stats.UpcomingViewings, err = h.viewingRepo.CountUpcomingByAgent(agent.ID); err != nil {
		respondInternal(c, h.logger, "dashboard_viewings", err)
		return
	}
	if stats.InProgressTransactions, err = h.transactionRepo.CountInProgressByAgent(agent.ID); err != nil {
		respondInternal(c, h.logger, "dashboard_transactions", err)
		return
	}

	reviewStats, err := h.reviewRepo.Stats(agent.ID)
	if err != nil {
		respondInternal(c, h.logger, "dashboard_reviews", err)
		return
	}
	stats.PendingReviews = reviewStats.PendingCount
	stats.AverageRating = reviewStats.AverageRating

	c.JSON(http.StatusOK, stats)
}
