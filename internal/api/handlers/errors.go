package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-wallet-core/internal/storages"
)

// respondError отображает типизированные ошибки ядра на HTTP-коды.
// Ожидаемые отказы (не найдено, недостаточно средств) отдаются как 4xx
// с конкретным сообщением, а не как общий 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, storages.ErrWalletNotFound),
		errors.Is(err, storages.ErrUserNotFound),
		errors.Is(err, storages.ErrTransactionNotFound),
		errors.Is(err, storages.ErrRequestNotFound),
		errors.Is(err, storages.ErrCurrencyMismatch):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, storages.ErrInsufficientFunds),
		errors.Is(err, storages.ErrRequestExpired),
		errors.Is(err, storages.ErrInvalidTransition),
		errors.Is(err, storages.ErrWalletNotActive),
		errors.Is(err, storages.ErrSameWallet):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, storages.ErrWalletExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, storages.ErrCategoryNotFound),
		errors.Is(err, storages.ErrNoActiveCurrencies),
		errors.Is(err, storages.ErrBalanceNotFound):
		// Ошибки конфигурации и целостности данных
		logger.Errorf("Configuration error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})

	default:
		logger.Errorf("Unexpected error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
