package middleware

import (
	"net/http"
	"strings"

	"alumglass-backend/pkg/jwtutil"
	"alumglass-backend/pkg/logger"
	"alumglass-backend/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminAuthMiddleware validates the JWT token issued at admin login
// and stores the admin identity on the context
func AdminAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return response.Error(c, http.StatusUnauthorized, "missing authorization token")
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return response.Error(c, http.StatusUnauthorized, "invalid authorization format, expected Bearer token")
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return response.Error(c, http.StatusUnauthorized, "invalid or expired token")
		}

		// Store admin info in context for later use
		c.Set("admin_id", claims.AdminID)
		c.Set("admin_email", claims.Email)

		return next(c)
	}
}

// GetAdminIDFromContext retrieves the authenticated admin ID from the
// context. Returns 0, false when the request was not authenticated.
func GetAdminIDFromContext(c echo.Context) (uint, bool) {
	adminID, ok := c.Get("admin_id").(uint)
	return adminID, ok
}
