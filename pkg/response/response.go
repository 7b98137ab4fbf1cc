package response

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform shape wrapping every API response
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	StatusCode int         `json:"statusCode,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination carries list metadata for paginated endpoints
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// OK writes a 200 envelope
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created writes a 201 envelope
func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Paginated writes a 200 envelope with pagination metadata
func Paginated(c echo.Context, message string, data interface{}, page, limit int, total int64) error {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return c.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Pagination: &Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	})
}

// Error writes a failure envelope with the given status code
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{
		Success:    false,
		Message:    message,
		StatusCode: status,
	})
}
