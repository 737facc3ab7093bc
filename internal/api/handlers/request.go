package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/api/middleware"
	"gw-wallet-core/internal/service"
	"gw-wallet-core/pkg"
)

// RequestHandler обработчик для запросов на перевод (request-to-pay)
type RequestHandler struct {
	service *service.WalletService
	logger  *logrus.Logger
}

// NewRequestHandler создает новый обработчик запросов на перевод
func NewRequestHandler(service *service.WalletService, logger *logrus.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		logger:  logger,
	}
}

// CreateMoneyRequestRequest запрос на создание запроса на перевод
type CreateMoneyRequestRequest struct {
	TargetUserID int64  `json:"target_user_id" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Description  string `json:"description"`
	ExpiresInSec int64  `json:"expires_in_sec"`
}

// RespondMoneyRequestRequest ответ на запрос на перевод
type RespondMoneyRequestRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

// Create создает запрос на перевод денег
// @Summary Create money request
// @Description Ask another user to pay the given amount; no money moves until the target accepts
// @Tags request
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateMoneyRequestRequest true "Money request data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateMoneyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	amount, err := pkg.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var expiresAt *time.Time
	if req.ExpiresInSec > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresInSec) * time.Second)
		expiresAt = &t
	}

	request, err := h.service.CreateMoneyRequest(c.Request.Context(), userID, req.TargetUserID, amount, req.Description, expiresAt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// List возвращает входящие ожидающие запросы на перевод
// @Summary List pending money requests
// @Description Get pending money requests addressed to the authenticated user
// @Tags request
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requests, err := h.service.ListMoneyRequests(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to list money requests: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list money requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Respond принимает или отклоняет запрос на перевод
// @Summary Respond to money request
// @Description Accept (settles atomically from the default wallet) or reject a pending money request
// @Tags request
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body RespondMoneyRequestRequest true "Action"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/requests/{id}/respond [post]
func (h *RequestHandler) Respond(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req RespondMoneyRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	request, err := h.service.RespondMoneyRequest(c.Request.Context(), requestID, userID, req.Action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}
