package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inventory-service/internal/catalog"
	"inventory-service/internal/handler"
	mid "inventory-service/internal/middleware"
	"inventory-service/internal/store"
	"inventory-service/pkg/config"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

func main() {
	// Load .env file. Missing file is fine: production environments set
	// real environment variables instead.
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load("inventory-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting inventory-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Open(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established",
		zap.String("driver", appConfig.DB.Driver))

	// Build the catalog repository with the configured policies and
	// prime it from storage.
	repo := catalog.NewRepository(
		store.NewGormStore(db),
		catalog.CodePolicyByName(appConfig.Catalog.CodePolicy),
		catalog.LedgerPolicyByName(appConfig.Catalog.LedgerPolicy),
	)
	if err := repo.Load(context.Background()); err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}
	log.Info("Catalog loaded",
		zap.Int("products", len(repo.Products())),
		zap.String("code_policy", appConfig.Catalog.CodePolicy),
		zap.String("ledger_policy", appConfig.Catalog.LedgerPolicy))

	products := handler.NewProductHandler(repo)
	auth := handler.NewAuthHandler(db, appConfig)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes - public
	authAPI := e.Group("/api/auth")
	authAPI.POST("/register", auth.Register)
	authAPI.POST("/login", auth.Login)
	authAPI.POST("/verify", auth.Verify)
	authAPI.POST("/resend", auth.Resend)

	// Product API routes - behind JWT validation
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", products.ListProducts)
	productAPI.GET("/:id", products.GetProduct)
	productAPI.GET("/:id/price-history", products.GetPriceHistory)
	productAPI.POST("", products.CreateProduct)
	productAPI.PUT("/:id", products.UpdateProduct)
	productAPI.DELETE("/:id", products.DeleteProduct)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
