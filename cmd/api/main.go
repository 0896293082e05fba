package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"pocketbook/internal/config"
	"pocketbook/internal/database"
	"pocketbook/internal/handlers"
	"pocketbook/internal/logger"
	"pocketbook/internal/middleware"
	"pocketbook/internal/services"
	"pocketbook/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	budgetService := services.NewBudgetService(db)
	transferService := services.NewTransferService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(ledgerService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transferHandler := handlers.NewTransferHandler(transferService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.DELETE("/profile", authHandler.DeleteProfile)

	// Account ledger routes
	account := protected.Group("/account")
	account.GET("/balance", accountHandler.GetBalance)
	account.GET("/available", accountHandler.GetAvailableFunds)
	account.GET("/transactions", accountHandler.GetTransactions)
	account.POST("/income", accountHandler.AddIncome)
	account.POST("/expense", accountHandler.AddExpense)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/summary", budgetHandler.GetFundsSummary)
	budgets.GET("/:name", budgetHandler.GetBudget)
	budgets.DELETE("/:name", budgetHandler.DeleteBudget)
	budgets.POST("/:name/funds", budgetHandler.AddFunds)
	budgets.DELETE("/:name/funds", budgetHandler.RemoveFunds)

	// Transfer routes
	transfers := protected.Group("/transfers")
	transfers.POST("", transferHandler.SendMoney)

	log.Infof("Starting pocketbook backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
