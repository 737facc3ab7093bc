package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/api/middleware"
	"gw-wallet-core/internal/service"
	"gw-wallet-core/pkg"
)

// BillPayHandler обработчик для оплаты счетов
type BillPayHandler struct {
	service *service.WalletService
	logger  *logrus.Logger
}

// NewBillPayHandler создает новый обработчик оплаты счетов
func NewBillPayHandler(service *service.WalletService, logger *logrus.Logger) *BillPayHandler {
	return &BillPayHandler{
		service: service,
		logger:  logger,
	}
}

// PayBillRequest запрос на оплату счета
type PayBillRequest struct {
	WalletID      int64                  `json:"wallet_id" binding:"required"`
	Amount        string                 `json:"amount" binding:"required"`
	Fee           string                 `json:"fee"`
	Action        string                 `json:"action" binding:"required"`
	ProductID     *int64                 `json:"product_id"`
	ProviderID    *int64                 `json:"provider_id"`
	PaymentMethod string                 `json:"payment_method"`
	ServiceData   map[string]interface{} `json:"service_data"`
}

// ProviderWebhookRequest уведомление провайдера об исходе платежа
type ProviderWebhookRequest struct {
	Reference    string                 `json:"reference" binding:"required"`
	Status       string                 `json:"status" binding:"required"`
	ProviderData map[string]interface{} `json:"provider_data"`
}

// PayBill оплачивает счет с кошелька
// @Summary Pay a bill
// @Description Debit the wallet and execute the payment through the external provider; on provider failure the debit is refunded
// @Tags billpay
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PayBillRequest true "Bill payment data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/bills/pay [post]
func (h *BillPayHandler) PayBill(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	amount, err := pkg.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fee, err := pkg.ParseFee(req.Fee)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.service.PayBill(c.Request.Context(), userID, service.BillPaymentInput{
		WalletID:      req.WalletID,
		Amount:        amount,
		Fee:           fee,
		ProductID:     req.ProductID,
		ProviderID:    req.ProviderID,
		Action:        req.Action,
		PaymentMethod: req.PaymentMethod,
		ServiceData:   req.ServiceData,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// ProviderWebhook досводит платеж по уведомлению провайдера
// @Summary Provider webhook
// @Description Resolve a processing bill payment by the provider's asynchronous notification
// @Tags billpay
// @Accept json
// @Produce json
// @Param request body ProviderWebhookRequest true "Provider notification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /webhooks/provider [post]
func (h *BillPayHandler) ProviderWebhook(c *gin.Context) {
	var req ProviderWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	tx, err := h.service.ResolveProviderResult(c.Request.Context(), req.Reference, req.Status, req.ProviderData)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}
