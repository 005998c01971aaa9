package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/middleware"
	"github.com/homevista/brokerage-backend/internal/models"
	"github.com/homevista/brokerage-backend/internal/services"
	"github.com/homevista/brokerage-backend/pkg/validator"
)

// ProfileHandler handles agent profile HTTP requests
type ProfileHandler struct {
	userRepo          *database.UserRepository
	agentRepo         *database.AgentRepository
	sessionRepo       *database.SessionRepository
	refreshTokenRepo  *database.RefreshTokenRepository
	uploadSvc         *services.UploadService
	emailValidator    *validator.EmailValidator
	passwordValidator *validator.PasswordValidator
	logger            *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	userRepo *database.UserRepository,
	agentRepo *database.AgentRepository,
	sessionRepo *database.SessionRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	uploadSvc *services.UploadService,
	emailValidator *validator.EmailValidator,
	passwordValidator *validator.PasswordValidator,
	logger *logrus.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		userRepo:          userRepo,
		agentRepo:         agentRepo,
		sessionRepo:       sessionRepo,
		refreshTokenRepo:  refreshTokenRepo,
		uploadSvc:         uploadSvc,
		emailValidator:    emailValidator,
		passwordValidator: passwordValidator,
		logger:            logger,
	}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(agent.UserID)
	if err != nil {
		respondInternal(c, h.logger, "get_profile", err)
		return
	}
	if user == nil {
		respondNotFound(c, "Account not found")
		return
	}

	c.JSON(http.StatusOK, models.AgentProfile{User: *user, Agent: *agent})
}

// Update handles PUT /api/v1/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if req.Email != "" {
		email, err := h.emailValidator.Validate(req.Email)
		if err != nil {
			respondValidationError(c, err.Error())
			return
		}
		if err := h.userRepo.UpdateEmail(agent.UserID, email); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				c.JSON(http.StatusConflict, ErrorResponse{
					Error:   "conflict",
					Message: "Another account already uses that email address",
					Code:    "DUPLICATE_EMAIL",
				})
				return
			}
			respondInternal(c, h.logger, "update_email", err)
			return
		}
	}

	if err := h.userRepo.UpdateProfile(agent.UserID, req.FirstName, req.LastName, req.Phone, req.Bio); err != nil {
		respondInternal(c, h.logger, "update_profile", err)
		return
	}

	if err := h.agentRepo.UpdateProfile(agent.ID, req.LicenseNumber, req.Brokerage, req.YearsExperience, req.Specialties); err != nil {
		respondInternal(c, h.logger, "update_agent_profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UploadPhoto handles POST /api/v1/profile/photo (multipart form)
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondValidationError(c, "An image file is required")
		return
	}

	staged, err := h.uploadSvc.Stage(fileHeader)
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
			respondInternal(c, h.logger, "stage_profile_photo", err)
		}
		return
	}

	// The stored path is known before the move, so the row can be updated
	// first and the file committed only if the update sticks.
	newPath := "profiles/" + staged.Filename
	oldPath, err := h.userRepo.UpdateProfileImage(userCtx.UserID, newPath)
	if err != nil {
		h.uploadSvc.Discard(staged)
		respondInternal(c, h.logger, "update_profile_image", err)
		return
	}

	if _, err := h.uploadSvc.CommitProfile(staged); err != nil {
		h.logger.WithError(err).WithField("user_id", userCtx.UserID).Error("Failed to commit profile photo")
	}

	if oldPath != "" && oldPath != newPath {
		if err := h.uploadSvc.Remove(oldPath); err != nil {
			h.logger.WithError(err).WithField("file", oldPath).Warn("Failed to remove previous profile photo")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Profile photo updated",
		"profile_image": newPath,
	})
}

// ChangePassword handles POST /api/v1/profile/password
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "current_password and new_password are required")
		return
	}

	if err := h.passwordValidator.Validate(req.NewPassword); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID)
	if err != nil {
		respondInternal(c, h.logger, "change_password_lookup", err)
		return
	}
	if user == nil {
		respondNotFound(c, "Account not found")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Current password is incorrect",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondInternal(c, h.logger, "hash_password", err)
		return
	}

	if err := h.userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		respondInternal(c, h.logger, "update_password", err)
		return
	}

	// Other sessions must log in again with the new password
	if err := h.refreshTokenRepo.RevokeAllForUser(user.ID); err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to revoke refresh tokens")
	}

	h.logger.WithField("user_id", user.ID).Info("Password changed")
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// Sessions handles GET /api/v1/profile/sessions
func (h *ProfileHandler) Sessions(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	sessions, err := h.sessionRepo.RecentByUser(userCtx.UserID, 10)
	if err != nil {
		respondInternal(c, h.logger, "list_sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessions})
}
