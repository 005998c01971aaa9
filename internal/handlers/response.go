package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Pagination describes the page of a list response
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPagination(page, total int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := (total + database.DefaultPageSize - 1) / database.DefaultPageSize
	return Pagination{
		Page:       page,
		PageSize:   database.DefaultPageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// parsePage reads the page query parameter. Missing or malformed values
// fall back to the first page.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}

func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// respondInternal logs the underlying error and returns a generic message.
// Driver and query errors never reach the client.
func respondInternal(c *gin.Context, logger *logrus.Logger, action string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"action": action,
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Something went wrong. Please try again.",
	})
}
