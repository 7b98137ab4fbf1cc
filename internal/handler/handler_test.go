package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	mid "alumglass-backend/internal/middleware"
	"alumglass-backend/pkg/config"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/jwtutil"
	"alumglass-backend/pkg/response"
	"alumglass-backend/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var metricsOnce sync.Once

// setupTest points the handlers at a fresh in-memory database and
// returns an Echo instance with the full route table registered
func setupTest(t *testing.T) *echo.Echo {
	t.Helper()

	metricsOnce.Do(func() {
		cfg, err := config.Load()
		require.NoError(t, err)
		prometheus.InitMetrics(cfg)
		jwtutil.Initialize(&cfg.JWT)
	})

	// A named shared in-memory database keeps all pooled connections
	// on the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.SetDB(db)

	e := echo.New()

	serviceAPI := e.Group("/api/services")
	serviceAPI.GET("", ListServices)
	serviceAPI.GET("/:slug", GetService)
	serviceAPI.POST("", CreateService)
	serviceAPI.PUT("/:slug", UpdateService)
	serviceAPI.DELETE("/:slug", DeleteService)

	segmentAPI := e.Group("/api/segments")
	segmentAPI.GET("", ListSegments)
	segmentAPI.GET("/:slug", GetSegment)
	segmentAPI.POST("", CreateSegment)

	projectAPI := e.Group("/api/projects")
	projectAPI.GET("", ListProjects)
	projectAPI.GET("/:id", GetProject)
	projectAPI.POST("", CreateProject)
	projectAPI.PUT("/:id", UpdateProject)
	projectAPI.DELETE("/:id", DeleteProject)

	e.POST("/api/admin/login", Login)
	adminAPI := e.Group("/api/admin", mid.AdminAuthMiddleware)
	adminAPI.GET("/services", ListAllServices)

	return e
}

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	StatusCode int                  `json:"statusCode"`
	Pagination *response.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func formRequest(t *testing.T, method, target string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func formRequestWithFile(t *testing.T, method, target string, fields map[string]string, fileField, filename string, payload []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func getRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func deleteRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodDelete, target, nil)
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
