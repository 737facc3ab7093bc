package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/service"
)

// AdminHandler обработчик административных операций
type AdminHandler struct {
	service *service.WalletService
	logger  *logrus.Logger
}

// NewAdminHandler создает новый обработчик административных операций
func NewAdminHandler(service *service.WalletService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// UpdateWalletStatusRequest запрос на смену статуса кошелька
type UpdateWalletStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive frozen"`
}

// TransactionAction применяет административное действие к транзакции
// @Summary Admin transaction action
// @Description Approve or decline a pending transaction, or reverse a completed one
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Transaction ID"
// @Param action path string true "Action" Enums(approve, decline, reverse)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/transactions/{id}/{action} [post]
func (h *AdminHandler) TransactionAction(c *gin.Context) {
	txID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID"})
		return
	}

	action := c.Param("action")
	switch action {
	case service.AdminActionApprove, service.AdminActionDecline, service.AdminActionReverse:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action: " + action})
		return
	}

	tx, err := h.service.AdminTransactionAction(c.Request.Context(), txID, action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateWalletStatus меняет статус кошелька
// @Summary Update wallet status
// @Description Activate, deactivate or freeze a wallet
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Wallet ID"
// @Param request body UpdateWalletStatusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/wallets/{id}/status [post]
func (h *AdminHandler) UpdateWalletStatus(c *gin.Context) {
	walletID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	var req UpdateWalletStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.UpdateWalletStatus(c.Request.Context(), walletID, req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet status updated"})
}
