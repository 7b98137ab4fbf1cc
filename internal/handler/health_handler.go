package handler

import (
	"net/http"
	"time"

	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	log := logger.FromContext(c)

	// Basic response
	result := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	// Check database connection if requested
	if c.QueryParam("check") == "db" {
		sqlDB, err := database.GetDB().DB()
		if err != nil {
			log.Error("Database connection error", zap.Error(err))
			result["status"] = "error"
			result["db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, result)
		}

		// Ping database to check connection
		if err := sqlDB.Ping(); err != nil {
			log.Error("Database ping error", zap.Error(err))
			result["status"] = "error"
			result["db_status"] = "error"
			return c.JSON(http.StatusInternalServerError, result)
		}

		// Database is healthy
		result["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, result)
}
