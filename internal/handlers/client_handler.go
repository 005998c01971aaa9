package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/homevista/brokerage-backend/internal/database"
	"github.com/homevista/brokerage-backend/internal/models"
	"github.com/homevista/brokerage-backend/internal/services"
)

// ClientHandler handles client book HTTP requests
type ClientHandler struct {
	clientRepo *database.ClientRepository
	agentRepo  *database.AgentRepository
	logger     *logrus.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clientRepo *database.ClientRepository,
	agentRepo *database.AgentRepository,
	logger *logrus.Logger,
) *ClientHandler {
	return &ClientHandler{
		clientRepo: clientRepo,
		agentRepo:  agentRepo,
		logger:     logger,
	}
}

// List handles GET /api/v1/clients. Status is derived per request from each
// client's history, so the status filter is applied after classification
// rather than in SQL.
func (h *ClientHandler) List(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	statusFilter := c.Query("status")
	if statusFilter != "" && !models.ValidClientStatus(statusFilter) {
		respondValidationError(c, "Invalid status filter")
		return
	}

	clients, err := h.clientRepo.ListByAgent(agent.ID, c.Query("search"))
	if err != nil {
		respondInternal(c, h.logger, "list_clients", err)
		return
	}

	now := time.Now()
	filtered := make([]models.ClientSummary, 0, len(clients))
	for i := range clients {
		clients[i].Status = services.ClassifyClient(clients[i].ClientHistory, now)
		if statusFilter == "" || clients[i].Status == statusFilter {
			filtered = append(filtered, clients[i])
		}
	}

	page := parsePage(c)
	total := len(filtered)
	limit, offset := database.Paginate(page, database.DefaultPageSize)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       filtered[offset:end],
		"pagination": newPagination(page, total),
	})
}

// Get handles GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientRepo.GetByID(agent.ID, clientID)
	if err != nil {
		if errors.Is(err, database.ErrClientNotFound) {
			respondNotFound(c, "Client not found")
			return
		}
		respondInternal(c, h.logger, "get_client", err)
		return
	}

	client.Status = services.ClassifyClient(client.ClientHistory, time.Now())
	c.JSON(http.StatusOK, client)
}

// Update handles PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	agent, ok := requireAgent(c, h.agentRepo, h.logger)
	if !ok {
		return
	}

	clientID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateClientRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidationError(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	// Only clients with history with this agent are editable
	if _, err := h.clientRepo.GetByID(agent.ID, clientID); err != nil {
		if errors.Is(err, database.ErrClientNotFound) {
			respondNotFound(c, "Client not found")
			return
		}
		respondInternal(c, h.logger, "get_client", err)
		return
	}

	if err := h.clientRepo.Update(clientID, &req); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "conflict",
				Message: "Another account already uses that email address",
				Code:    "DUPLICATE_EMAIL",
			})
			return
		}
		if errors.Is(err, database.ErrClientNotFound) {
			respondNotFound(c, "Client not found")
			return
		}
		respondInternal(c, h.logger, "update_client", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client updated"})
}
