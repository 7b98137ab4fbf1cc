package handler

import (
	"errors"
	"net/http"
	"time"

	"alumglass-backend/internal/model"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/logger"
	"alumglass-backend/pkg/response"
	"alumglass-backend/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SegmentRequest defines the JSON body for segment creation
type SegmentRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Overview    string `json:"overview"`
	ServiceType string `json:"service_type"`
}

// withSegmentServices preloads each segment's active services in
// display order, with their child collections
func withSegmentServices(db *gorm.DB) *gorm.DB {
	ordered := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("display_order ASC")
	}
	return db.
		Preload("Services", func(tx *gorm.DB) *gorm.DB {
			return tx.Where("is_active = ?", true).Order("display_order ASC, created_at DESC")
		}).
		Preload("Services.Features", ordered).
		Preload("Services.Specifications", ordered).
		Preload("Services.Benefits", ordered).
		Preload("Services.Applications", ordered)
}

func segmentView(s model.Segment) model.SegmentView {
	for i := range s.Services {
		s.Services[i].NormalizeChildren()
	}
	return model.SegmentView{
		SegmentID:   s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Overview:    s.Overview,
		ServiceType: s.ServiceType,
		Services:    s.Services,
	}
}

// ListSegments returns all segments, by default with their services
// folded in under a key chosen by the segment's service type
func ListSegments(c echo.Context) error {
	log := logger.FromContext(c)
	includeServices := c.QueryParam("includeServices") != "false"

	defer prometheus.TrackDBOperation("query")(time.Now())

	if !includeServices {
		var segments []model.Segment
		if err := database.GetDB().Find(&segments).Error; err != nil {
			log.Error("Failed to list segments", zap.Error(err))
			return response.Error(c, http.StatusInternalServerError, "Failed to retrieve segments")
		}
		log.Info("Segments retrieved", zap.Int("count", len(segments)))
		return response.OK(c, "Segments retrieved successfully", segments)
	}

	var segments []model.Segment
	if err := withSegmentServices(database.GetDB()).Find(&segments).Error; err != nil {
		log.Error("Failed to list segments with services", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve segments")
	}

	views := make([]model.SegmentView, 0, len(segments))
	for _, s := range segments {
		views = append(views, segmentView(s))
	}

	log.Info("Segments retrieved with services", zap.Int("count", len(views)))
	return response.OK(c, "Segments retrieved successfully", views)
}

// GetSegment returns one segment by slug with its services folded in
func GetSegment(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	var segment model.Segment
	err := withSegmentServices(database.GetDB()).Where("slug = ?", slug).First(&segment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Segment not found", zap.String("slug", slug))
			return response.Error(c, http.StatusNotFound, "Segment not found")
		}
		log.Error("Failed to get segment", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve segment")
	}

	return response.OK(c, "Segment retrieved successfully", segmentView(segment))
}

// CreateSegment handles creating a new segment
func CreateSegment(c echo.Context) error {
	log := logger.FromContext(c)

	var req SegmentRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid segment request", zap.Error(err))
		return response.Error(c, http.StatusBadRequest, "Invalid request data")
	}

	if req.Name == "" || req.Slug == "" || req.Overview == "" || req.ServiceType == "" {
		log.Warn("Missing required segment fields", zap.String("slug", req.Slug))
		return response.Error(c, http.StatusBadRequest, "name, slug, overview and service_type are required")
	}

	// Duplicate slugs are rejected before any write
	var count int64
	if err := database.GetDB().Model(&model.Segment{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		log.Error("Failed to check segment slug", zap.String("slug", req.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create segment")
	}
	if count > 0 {
		log.Warn("Segment slug already exists", zap.String("slug", req.Slug))
		return response.Error(c, http.StatusBadRequest, "A segment with this slug already exists")
	}

	segment := model.Segment{
		Name:        req.Name,
		Slug:        req.Slug,
		Overview:    req.Overview,
		ServiceType: req.ServiceType,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&segment).Error; err != nil {
		log.Error("Failed to create segment", zap.String("slug", req.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create segment")
	}

	prometheus.RecordSegmentOperation("create")
	log.Info("Segment created",
		zap.Uint("segment_id", segment.ID),
		zap.String("slug", segment.Slug))
	return response.Created(c, "Segment created successfully", segment)
}
