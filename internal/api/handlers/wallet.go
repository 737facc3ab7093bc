package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/api/middleware"
	"gw-wallet-core/internal/service"
	"gw-wallet-core/pkg"
)

// WalletHandler обработчик для операций с кошельками
type WalletHandler struct {
	service *service.WalletService
	logger  *logrus.Logger
}

// NewWalletHandler создает новый обработчик кошельков
func NewWalletHandler(service *service.WalletService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// SetDefaultWalletRequest запрос на смену кошелька по умолчанию
type SetDefaultWalletRequest struct {
	WalletID int64 `json:"wallet_id" binding:"required"`
}

// GetWallets возвращает кошельки пользователя
// @Summary List user wallets
// @Description Get all wallets of the authenticated user
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/wallets [get]
func (h *WalletHandler) GetWallets(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallets, err := h.service.GetUserWallets(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to get wallets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wallets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallets": wallets})
}

// GetBalance возвращает активный баланс кошелька
// @Summary Get wallet balance
// @Description Get the active balance snapshot of a wallet
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Param id path int true "Wallet ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/v1/wallets/{id}/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	walletID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	balance, err := h.service.GetWalletBalance(c.Request.Context(), userID, walletID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_id": balance.WalletID,
		"amount":    pkg.FormatAmount(balance.Amount),
	})
}

// SetDefaultWallet делает кошелек кошельком по умолчанию
// @Summary Set default wallet
// @Description Make the given wallet the user's default wallet
// @Tags wallet
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SetDefaultWalletRequest true "Wallet"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/wallets/default [post]
func (h *WalletHandler) SetDefaultWallet(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SetDefaultWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.SetDefaultWallet(c.Request.Context(), userID, req.WalletID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Default wallet updated"})
}

// GetTransactions возвращает транзакции пользователя
// @Summary List user transactions
// @Description Get recent transactions of the authenticated user
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max number of transactions" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	transactions, err := h.service.GetUserTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Errorf("Failed to get transactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
