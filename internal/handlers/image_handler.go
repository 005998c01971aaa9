package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/services"
)

// ImageHandler handles property image HTTP requests
type ImageHandler struct {
	imageRepo *database.PropertyImageRepository
	agentRepo *database.AgentRepository
	uploadSvc *services.UploadService
	logger    *logrus.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(
	imageRepo *database.PropertyImageRepository,
	agentRepo *database.AgentRepository,
	uploadSvc *services.UploadService,
	logger *logrus.Logger,
) *ImageHandler {
	return &ImageHandler{
		imageRepo: imageRepo,
		agentRepo: agentRepo,
		uploadSvc: uploadSvc,
		logger:    logger,
	}
}

// Add handles POST /api/v1/listings/:id/images (multipart form)
func (h *ImageHandler) Add(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		respondValidationError(c, "At least one image file is required")
		return
	}

	staged, err := h.uploadSvc.StageAll(form.File["images"])
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
		return
	}

	captions := form.Value["captions"]
	primary := c.PostForm("primary_filename") // optional: original filename to promote

	uploads := make([]database.ImageUpload, len(staged))
	for i, sf := range staged {
		caption := ""
		if i < len(captions) {
			caption = captions[i]
		}
		uploads[i] = database.ImageUpload{
			Filename:     sf.Filename,
			Caption:      caption,
			IsPrimary:    primary != "" && form.File["images"][i].Filename == primary,
			DisplayOrder: i,
		}
	}

	if err := h.imageRepo.AddImages(agent.ID, propertyID, uploads); err != nil {
		h.uploadSvc.Discard(staged...)
		if errors.Is(err, database.ErrListingNotFound) {
			respondNotFound(c, "Listing not found")
			return
		}
		respondInternal(c, h.logger, "add_images", err)
		return
	}

	if err := h.uploadSvc.CommitProperty(propertyID, staged...); err != nil {
		h.logger.WithError(err).WithField("property_id", propertyID).Error("Failed to commit staged images")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Images added",
		"count":   len(uploads),
	})
}

// SetPrimary handles PATCH /api/v1/listings/:id/images/:imageID/primary
func (h *ImageHandler) SetPrimary(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageID")
	if !ok {
		return
	}

	if err := h.imageRepo.SetPrimary(agent.ID, propertyID, imageID); err != nil {
		switch {
		case errors.Is(err, database.ErrListingNotFound):
			respondNotFound(c, "Listing not found")
		case errors.Is(err, database.ErrImageNotFound):
			respondNotFound(c, "Image not found")
		default:
			respondInternal(c, h.logger, "set_primary_image", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Primary image updated"})
}

// Delete handles DELETE /api/v1/listings/:id/images/:imageID
func (h *ImageHandler) Delete(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageID")
	if !ok {
		return
	}

	imagePath, err := h.imageRepo.DeleteImage(agent.ID, propertyID, imageID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrListingNotFound):
			respondNotFound(c, "Listing not found")
		case errors.Is(err, database.ErrImageNotFound):
			respondNotFound(c, "Image not found")
		default:
			respondInternal(c, h.logger, "delete_image", err)
		}
		return
	}

	if err := h.uploadSvc.Remove(imagePath); err != nil {
		h.logger.WithError(err).WithField("file", imagePath).Warn("Failed to remove image file")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
