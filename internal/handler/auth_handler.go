package handler

import (
	"net/http"
	"time"

	"alumglass-backend/internal/model"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/jwtutil"
	"alumglass-backend/pkg/logger"
	"alumglass-backend/pkg/response"
	"alumglass-backend/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a dashboard admin and issues a JWT. The failure
// message never distinguishes an unknown email from a wrong password.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginAttemptsCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		prometheus.RecordLoginError("invalid_request")
		return response.Error(c, http.StatusBadRequest, "Invalid request data")
	}

	if req.Email == "" || req.Password == "" {
		log.Warn("Incomplete login request")
		prometheus.RecordLoginError("incomplete_request")
		return response.Error(c, http.StatusBadRequest, "email and password are required")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var admin model.Admin
	if err := database.GetDB().Where("email = ?", req.Email).First(&admin).Error; err != nil {
		log.Warn("Admin not found", zap.String("email", req.Email))
		prometheus.RecordLoginError("unknown_email")
		return response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid admin password", zap.String("email", req.Email))
		prometheus.RecordLoginError("invalid_password")
		return response.Error(c, http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := jwtutil.GenerateToken(admin.Email, admin.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordLoginError("token_generation_failed")
		return response.Error(c, http.StatusInternalServerError, "Login failed")
	}

	prometheus.LoginSuccessCounter.Inc()
	log.Info("Admin logged in", zap.String("email", admin.Email))
	return response.OK(c, "Login successful", echo.Map{
		"token": token,
		"admin": echo.Map{
			"id":    admin.ID,
			"email": admin.Email,
		},
	})
}
