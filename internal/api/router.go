package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gw-wallet-core/internal/api/handlers"
	"gw-wallet-core/internal/api/middleware"
	"gw-wallet-core/internal/service"
)

// SetupRouter настраивает и возвращает роутер с всеми эндпоинтами
func SetupRouter(
	walletService *service.WalletService,
	jwtMiddleware *middleware.JWTMiddleware,
	jwtExpiration time.Duration,
	logger *logrus.Logger,
	ginMode string,
) *gin.Engine {
	// Установка режима Gin
	gin.SetMode(ginMode)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Инициализация handlers
	authHandler := handlers.NewAuthHandler(walletService, jwtMiddleware, jwtExpiration, logger)
	walletHandler := handlers.NewWalletHandler(walletService, logger)
	transferHandler := handlers.NewTransferHandler(walletService, logger)
	requestHandler := handlers.NewRequestHandler(walletService, logger)
	billPayHandler := handlers.NewBillPayHandler(walletService, logger)
	adminHandler := handlers.NewAdminHandler(walletService, logger)

	// Вебхук провайдера (аутентифицируется на уровне сети/шлюза)
	router.POST("/webhooks/provider", billPayHandler.ProviderWebhook)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (без авторизации)
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)

		// Protected routes (требуют авторизации)
		authorized := v1.Group("")
		authorized.Use(jwtMiddleware.Auth())
		{
			// Wallet operations
			authorized.GET("/wallets", walletHandler.GetWallets)
			authorized.GET("/wallets/:id/balance", walletHandler.GetBalance)
			authorized.POST("/wallets/default", walletHandler.SetDefaultWallet)
			authorized.GET("/transactions", walletHandler.GetTransactions)

			// Transfer operations
			authorized.POST("/transfers", transferHandler.Transfer)

			// Money request operations
			authorized.POST("/requests", requestHandler.Create)
			authorized.GET("/requests", requestHandler.List)
			authorized.POST("/requests/:id/respond", requestHandler.Respond)

			// Bill payment operations
			authorized.POST("/bills/pay", billPayHandler.PayBill)

			// Admin operations
			admin := authorized.Group("/admin")
			{
				admin.POST("/transactions/:id/:action", adminHandler.TransactionAction)
				admin.POST("/wallets/:id/status", adminHandler.UpdateWalletStatus)
			}
		}
	}

	return router
}
