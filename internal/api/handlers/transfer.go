package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/api/middleware"
	"gw-wallet-core/internal/service"
	"gw-wallet-core/pkg"
)

// TransferHandler обработчик для переводов между кошельками
type TransferHandler struct {
	service *service.WalletService
	logger  *logrus.Logger
}

// NewTransferHandler создает новый обработчик переводов
func NewTransferHandler(service *service.WalletService, logger *logrus.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		logger:  logger,
	}
}

// TransferRequest запрос на перевод
type TransferRequest struct {
	FromWalletID int64  `json:"from_wallet_id" binding:"required"`
	ToUserID     int64  `json:"to_user_id" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Description  string `json:"description"`
}

// Transfer выполняет перевод между кошельками двух пользователей
// @Summary Transfer money
// @Description Transfer money from the user's wallet to another user's wallet in the same currency
// @Tags transfer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transfers [post]
func (h *TransferHandler) Transfer(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	amount, err := pkg.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debit, credit, err := h.service.Transfer(c.Request.Context(), userID, req.FromWalletID, req.ToUserID, amount, req.Description)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Transfer completed",
		"reference": debit.Reference,
		"debit":     debit,
		"credit":    credit,
	})
}
