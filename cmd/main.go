package main

import (
	"alumglass-backend/internal/handler"
	mid "alumglass-backend/internal/middleware"
	"alumglass-backend/pkg/config"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/jwtutil"
	"alumglass-backend/pkg/logger"
	"alumglass-backend/pkg/upload"
	"alumglass-backend/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env if present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting alumglass-backend",
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
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Select the image persistence strategy
	uploader, err := upload.New(&appConfig.Upload)
	if err != nil {
		log.Fatal("Failed to configure image uploads", zap.Error(err))
	}
	handler.SetUploader(uploader)
	log.Info("Image uploads configured", zap.String("driver", appConfig.Upload.Driver))

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Locally persisted images are served from the uploads directory
	if appConfig.Upload.Driver == "local" {
		e.Static(appConfig.Upload.PublicPath, appConfig.Upload.LocalDir)
	}

	// Service API routes
	serviceAPI := e.Group("/api/services")
	serviceAPI.GET("", handler.ListServices)
	serviceAPI.GET("/:slug", handler.GetService)
	serviceAPI.POST("", handler.CreateService)
	serviceAPI.PUT("/:slug", handler.UpdateService)
	serviceAPI.DELETE("/:slug", handler.DeleteService)

	// Segment API routes
	segmentAPI := e.Group("/api/segments")
	segmentAPI.GET("", handler.ListSegments)
	segmentAPI.GET("/:slug", handler.GetSegment)
	segmentAPI.POST("", handler.CreateSegment)

	// Project API routes
	projectAPI := e.Group("/api/projects")
	projectAPI.GET("", handler.ListProjects)
	projectAPI.GET("/:id", handler.GetProject)
	projectAPI.POST("", handler.CreateProject)
	projectAPI.PUT("/:id", handler.UpdateProject)
	projectAPI.DELETE("/:id", handler.DeleteProject)

	// Admin routes: login is open, the dashboard listing requires a token
	e.POST("/api/admin/login", handler.Login)
	adminAPI := e.Group("/api/admin", mid.AdminAuthMiddleware)
	adminAPI.GET("/services", handler.ListAllServices)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
