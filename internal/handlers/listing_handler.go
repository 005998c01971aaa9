package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
	"github.com/homevista/brokerage-backend/internal/services"
)

// ListingHandler handles property listing HTTP requests
type ListingHandler struct {
	propertyRepo *database.PropertyRepository
	agentRepo    *database.AgentRepository
	uploadSvc    *services.UploadService
	logger       *logrus.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(
	propertyRepo *database.PropertyRepository,
	agentRepo *database.AgentRepository,
	uploadSvc *services.UploadService,
	logger *logrus.Logger,
) *ListingHandler {
	return &ListingHandler{
		propertyRepo: propertyRepo,
		agentRepo:    agentRepo,
		uploadSvc:    uploadSvc,
		logger:       logger,
	}
}

// UpdateListingStatusRequest carries a listing status change
type UpdateListingStatusRequest struct {
	Status string `form:"status" json:"status" binding:"required"`
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	filters := database.ListingFilters{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Page:   parsePage(c),
	}

	if filters.Status != "" && !models.ValidPropertyStatus(filters.Status) {
		respondValidationError(c, "Invalid status filter")
		return
	}
	if filters.Type != "" && !models.ValidPropertyType(filters.Type) {
		respondValidationError(c, "Invalid type filter")
		return
	}

	listings, total, err := h.propertyRepo.GetListings(agent.ID, filters)
	if err != nil {
		respondInternal(c, h.logger, "list_listings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       listings,
		"pagination": newPagination(filters.Page, total),
	})
}

// Get handles GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.propertyRepo.GetListingDetail(agent.ID, propertyID)
	if err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "get_listing", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Create handles POST /api/v1/listings (multipart form with images)
func (h *ListingHandler) Create(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	var req models.ListingRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	staged, uploads, ok := h.stageImages(c, req.PrimaryIndex)
	if !ok {
		return
	}

	propertyID, err := h.propertyRepo.CreateListing(agent.ID, &req, uploads)
	if err != nil {
		h.uploadSvc.Discard(staged...)
		respondInternal(c, h.logger, "create_listing", err)
		return
	}

	// Files move to their served paths only once the rows are committed
	if err := h.uploadSvc.CommitProperty(propertyID, staged...); err != nil {
		h.logger.WithError(err).WithField("property_id", propertyID).Error("Failed to commit staged images")
	}

	h.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"agent_id":    agent.ID,
	}).Info("Listing created")

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Listing created",
		"property_id": propertyID,
	})
}

// Update handles PUT /api/v1/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.ListingRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.propertyRepo.UpdateListing(agent.ID, propertyID, &req); err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "update_listing", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing updated"})
}

// UpdateStatus handles PATCH /api/v1/listings/:id/status
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateListingStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "status is required")
		return
	}
	if !models.ValidPropertyStatus(req.Status) {
		respondValidationError(c, "Invalid status: "+req.Status)
		return
	}

	if err := h.propertyRepo.UpdateStatus(agent.ID, propertyID, req.Status); err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "update_listing_status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// Delete handles DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	imagePaths, err := h.propertyRepo.DeleteListing(agent.ID, propertyID)
	if err != nil {
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "delete_listing", err)
		return
	}

	// Disk cleanup happens after the delete commits
	h.uploadSvc.RemoveAll(imagePaths)

	h.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"agent_id":    agent.ID,
	}).Info("Listing deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

// Features handles GET /api/v1/features
func (h *ListingHandler) Features(c *gin.Context) {
	features, err := h.propertyRepo.GetFeatures()
	if err != nil {
		respondInternal(c, h.logger, "list_features", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": features})
}

// stageImages validates and stages the multipart image files. primaryIndex
// marks which upload becomes the primary image; captions pair with files by
// position.
func (h *ListingHandler) stageImages(c *gin.Context, primaryIndex int) ([]*services.StagedFile, []database.ImageUpload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all means no images, which is fine
		return nil, nil, true
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil, true
	}

	staged, err := h.uploadSvc.StageAll(files)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    "FILE_TOO_LARGE",
			})
		case errors.Is(err, services.ErrUnsupportedFileType):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    "UNSUPPORTED_FILE_TYPE",
			})
		default:
			respondInternal(c, h.logger, "stage_images", err)
		}
		return nil, nil, false
	}

	captions := form.Value["captions"]
	uploads := make([]database.ImageUpload, len(staged))
	for i, sf := range staged {
		caption := ""
		if i < len(captions) {
			caption = captions[i]
		}
		uploads[i] = database.ImageUpload{
			Filename:     sf.Filename,
			Caption:      caption,
			IsPrimary:    i == primaryIndex,
			DisplayOrder: i,
		}
	}

	return staged, uploads, true
}
