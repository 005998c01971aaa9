package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/pkg/jwt"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// AccessTokenCookie is the cookie consulted when no Authorization header is
// present, so browser clients can authenticate without a JS-managed header.
const AccessTokenCookie = "access_token"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// AuthMiddleware creates a middleware that validates JWT tokens. The token is
// read from the Authorization header, falling back to the access_token cookie.
func AuthMiddleware(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, errCode, errMessage := extractToken(c)
		if tokenString == "" {
			logger.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
				"code": errCode,
			}).Warn("Authentication failed")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": errMessage,
				"code":    errCode,
			})
			c.Abort()
			return
		}

		// Validate token
		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				logger.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).Warn("Authentication failed: token expired")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please refresh your token.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				logger.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).WithError(err).Warn("Authentication failed: invalid token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})

		c.Next()
	}
}

// extractToken pulls the access token from the Authorization header or the
// access_token cookie. Returns the token, or an error code and message when
// no usable token is present.
func extractToken(c *gin.Context) (token, errCode, errMessage string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
			return cookie, "", ""
		}
		return "", "MISSING_AUTH_HEADER", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", "INVALID_AUTH_FORMAT", "Token cannot be empty"
	}

	return tokenString, "", ""
}

// RequireRole creates a middleware that checks if the user has one of the
// required roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, requiredRole := range roles {
			if userCtx.Role == requiredRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_ROLE",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
