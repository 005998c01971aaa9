package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/homevista/brokerage-backend/internal/config"
	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/middleware"
	"github.com/homevista/brokerage-backend/internal/models"
	"github.com/homevista/brokerage-backend/pkg/jwt"
	"github.com/homevista/brokerage-backend/pkg/validator"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService       *jwt.Service
	emailValidator   *validator.EmailValidator
	userRepo         *database.UserRepository
	refreshTokenRepo *database.RefreshTokenRepository
	sessionRepo      *database.SessionRepository
	config           *config.Config
	logger           *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	emailValidator *validator.EmailValidator,
	userRepo *database.UserRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	sessionRepo *database.SessionRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:       jwtService,
		emailValidator:   emailValidator,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		sessionRepo:      sessionRepo,
		config:           cfg,
		logger:           logger,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Email and password are required")
		return
	}

	email, err := h.emailValidator.Validate(req.Email)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(email)
	if err != nil {
		respondInternal(c, h.logger, "login_lookup", err)
		return
	}

	// Unknown email and wrong password produce the same response, so the
	// endpoint cannot be used to enumerate accounts.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.logger.WithFields(logrus.Fields{
			"email": email,
			"ip":    c.ClientIP(),
		}).Warn("Login failed")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
			Code:    "INVALID_CREDENTIALS",
		})
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		respondInternal(c, h.logger, "login_issue_tokens", err)
		return
	}

	// Session audit is best effort and never blocks the login
	if _, err := h.sessionRepo.RecordLogin(user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to record login session")
	}

	h.setAccessCookie(c, tokens.AccessToken)

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"ip":      c.ClientIP(),
	}).Info("User logged in")

	c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "refresh_token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
			Code:    "INVALID_REFRESH_TOKEN",
		})
		return
	}

	valid, err := h.refreshTokenRepo.IsValid(claims.UserID, req.RefreshToken)
	if err != nil {
		respondInternal(c, h.logger, "refresh_check", err)
		return
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Refresh token has been revoked",
			Code:    "INVALID_REFRESH_TOKEN",
		})
		return
	}

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		respondInternal(c, h.logger, "refresh_lookup", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Account no longer exists",
			Code:    "INVALID_REFRESH_TOKEN",
		})
		return
	}

	// Rotate: the presented token is revoked and replaced
	if err := h.refreshTokenRepo.Revoke(claims.UserID, req.RefreshToken); err != nil {
		respondInternal(c, h.logger, "refresh_revoke", err)
		return
	}

	tokens, err := h.issueTokens(user)
	if err != nil {
		respondInternal(c, h.logger, "refresh_issue_tokens", err)
		return
	}

	h.setAccessCookie(c, tokens.AccessToken)
	c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.refreshTokenRepo.RevokeAllForUser(userCtx.UserID); err != nil {
		respondInternal(c, h.logger, "logout_revoke", err)
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)

	h.logger.WithField("user_id", userCtx.UserID).Info("User logged out")
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) issueTokens(user *models.User) (*models.TokenResponse, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.UserType)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.refreshTokenRepo.Store(user.ID, refreshToken, expiresAt); err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.config.JWT.AccessTokenExpiry.Seconds()),
		User:         user,
	}, nil
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, token string) {
	secure := h.config.Server.Environment == "production"
	maxAge := int(h.config.JWT.AccessTokenExpiry.Seconds())
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", secure, true)
}
