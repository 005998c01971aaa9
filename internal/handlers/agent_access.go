package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/middleware"
	"github.com/homevista/brokerage-backend/internal/models"
)

// requireAgent resolves the authenticated user's agent record. A logged-in
// user without an agent profile gets an explicit 403 rather than an empty
// result set, so the two cases are distinguishable to the client.
func requireAgent(c *gin.Context, agentRepo *database.AgentRepository, logger *logrus.Logger) (*models.Agent, bool) {
	userCtx := middleware.MustGetUserContext(c)

	agent, err := agentRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		respondInternal(c, logger, "resolve_agent", err)
		return nil, false
	}
	if agent == nil {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "No agent profile is associated with this account",
			Code:    "AGENT_PROFILE_REQUIRED",
		})
		return nil, false
	}

	return agent, true
}
