package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"alumglass-backend/internal/model"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/logger"
	"alumglass-backend/pkg/response"
	"alumglass-backend/pkg/upload"
	"alumglass-backend/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var imageUploader upload.Uploader

// SetUploader installs the image persistence strategy used by the
// create/update handlers
func SetUploader(u upload.Uploader) {
	imageUploader = u
}

// serviceForm carries the multipart fields of a service create/update
// request. Child collections arrive as JSON-encoded arrays in their
// form fields.
type serviceForm struct {
	Title           string
	Slug            string
	Tagline         string
	Category        string
	Description     string
	FullDescription string
	Icon            string
	IsActive        bool
	DisplayOrder    int
	SegmentID       *uint
	ExistingImage   string
	Features        []featureInput
	Specifications  []string
	Benefits        []string
	Applications    []string
}

type featureInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func parseServiceForm(c echo.Context) (*serviceForm, error) {
	f := &serviceForm{
		Title:           c.FormValue("title"),
		Slug:            c.FormValue("slug"),
		Tagline:         c.FormValue("tagline"),
		Category:        c.FormValue("category"),
		Description:     c.FormValue("description"),
		FullDescription: c.FormValue("fullDescription"),
		Icon:            c.FormValue("icon"),
		ExistingImage:   c.FormValue("existingImage"),
		IsActive:        true,
	}

	if v := c.FormValue("isActive"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			f.IsActive = active
		}
	}
	if v := c.FormValue("displayOrder"); v != "" {
		if order, err := strconv.Atoi(v); err == nil {
			f.DisplayOrder = order
		}
	}
	if v := c.FormValue("segmentId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			segmentID := uint(id)
			f.SegmentID = &segmentID
		}
	}

	if raw := c.FormValue("features"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Features); err != nil {
			return nil, errors.New("features must be a JSON array")
		}
	}
	for field, dst := range map[string]*[]string{
		"specifications": &f.Specifications,
		"benefits":       &f.Benefits,
		"applications":   &f.Applications,
	} {
		if raw := c.FormValue(field); raw != "" {
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				return nil, errors.New(field + " must be a JSON array")
			}
		}
	}

	return f, nil
}

// featureRows drops entries without a title and assigns display order
// by array position
func (f *serviceForm) featureRows(serviceID uint) []model.ServiceFeature {
	rows := make([]model.ServiceFeature, 0, len(f.Features))
	for _, in := range f.Features {
		if in.Title == "" {
			continue
		}
		rows = append(rows, model.ServiceFeature{
			ServiceID:    serviceID,
			Title:        in.Title,
			Description:  in.Description,
			Icon:         in.Icon,
			DisplayOrder: len(rows),
		})
	}
	return rows
}

// compact drops empty entries so display order stays dense
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// insertChildRows writes the four child sets for a service inside the
// caller's transaction
func insertChildRows(tx *gorm.DB, serviceID uint, f *serviceForm) error {
	if features := f.featureRows(serviceID); len(features) > 0 {
		if err := tx.Create(&features).Error; err != nil {
			return err
		}
	}

	var specs []model.ServiceSpecification
	for i, v := range compact(f.Specifications) {
		specs = append(specs, model.ServiceSpecification{ServiceID: serviceID, Value: v, DisplayOrder: i})
	}
	if len(specs) > 0 {
		if err := tx.Create(&specs).Error; err != nil {
			return err
		}
	}

	var benefits []model.ServiceBenefit
	for i, v := range compact(f.Benefits) {
		benefits = append(benefits, model.ServiceBenefit{ServiceID: serviceID, Value: v, DisplayOrder: i})
	}
	if len(benefits) > 0 {
		if err := tx.Create(&benefits).Error; err != nil {
			return err
		}
	}

	var applications []model.ServiceApplication
	for i, v := range compact(f.Applications) {
		applications = append(applications, model.ServiceApplication{ServiceID: serviceID, Value: v, DisplayOrder: i})
	}
	if len(applications) > 0 {
		if err := tx.Create(&applications).Error; err != nil {
			return err
		}
	}

	return nil
}

// deleteChildRows removes every child row of a service inside the
// caller's transaction. Updates always fully replace the child sets,
// they never merge.
func deleteChildRows(tx *gorm.DB, serviceID uint) error {
	if err := tx.Where("service_id = ?", serviceID).Delete(&model.ServiceFeature{}).Error; err != nil {
		return err
	}
	if err := tx.Where("service_id = ?", serviceID).Delete(&model.ServiceSpecification{}).Error; err != nil {
		return err
	}
	if err := tx.Where("service_id = ?", serviceID).Delete(&model.ServiceBenefit{}).Error; err != nil {
		return err
	}
	return tx.Where("service_id = ?", serviceID).Delete(&model.ServiceApplication{}).Error
}

// withChildren preloads the four child collections in display order
func withChildren(db *gorm.DB) *gorm.DB {
	ordered := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("display_order ASC")
	}
	return db.
		Preload("Features", ordered).
		Preload("Specifications", ordered).
		Preload("Benefits", ordered).
		Preload("Applications", ordered)
}

// persistImage reads an optional uploaded image and runs it through
// the configured persistence strategy. Returns "" when no file was
// submitted.
func persistImage(c echo.Context) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file in the form
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	if imageUploader == nil {
		return "", errors.New("no image uploader configured")
	}

	url, err := imageUploader.Upload(fileHeader.Filename, data)
	if err != nil {
		prometheus.RecordUpload("error")
		return "", err
	}
	prometheus.RecordUpload("success")
	return url, nil
}

// ListServices handles retrieving active services with optional
// category filtering and pagination
func ListServices(c echo.Context) error {
	log := logger.FromContext(c)

	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	limit := 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	category := c.QueryParam("category")

	filtered := func() *gorm.DB {
		q := database.GetDB().Model(&model.Service{}).Where("is_active = ?", true)
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		log.Error("Failed to count services", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve services")
	}

	var services []model.Service
	err := withChildren(filtered()).
		Order("display_order ASC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&services).Error
	if err != nil {
		log.Error("Failed to list services", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve services")
	}

	for i := range services {
		services[i].NormalizeChildren()
	}

	log.Info("Services retrieved",
		zap.Int("count", len(services)),
		zap.String("category", category),
		zap.Int("page", page))
	return response.Paginated(c, "Services retrieved successfully", services, page, limit, total)
}

// ListAllServices returns every service including inactive ones, for
// the admin dashboard
func ListAllServices(c echo.Context) error {
	log := logger.FromContext(c)

	var services []model.Service
	err := withChildren(database.GetDB()).
		Order("display_order ASC, created_at DESC").
		Find(&services).Error
	if err != nil {
		log.Error("Failed to list services for dashboard", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve services")
	}

	for i := range services {
		services[i].NormalizeChildren()
	}

	return response.OK(c, "Services retrieved successfully", services)
}

// GetService handles retrieving a single service by slug
func GetService(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	var service model.Service
	err := withChildren(database.GetDB()).Where("slug = ?", slug).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Service not found", zap.String("slug", slug))
			return response.Error(c, http.StatusNotFound, "Service not found")
		}
		log.Error("Failed to get service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve service")
	}

	service.NormalizeChildren()
	return response.OK(c, "Service retrieved successfully", service)
}

// CreateService handles creating a service with its child collections
// in one transaction
func CreateService(c echo.Context) error {
	log := logger.FromContext(c)

	form, err := parseServiceForm(c)
	if err != nil {
		log.Warn("Invalid service form", zap.Error(err))
		return response.Error(c, http.StatusBadRequest, err.Error())
	}

	if form.Title == "" || form.Slug == "" || form.Description == "" {
		log.Warn("Missing required service fields", zap.String("slug", form.Slug))
		return response.Error(c, http.StatusBadRequest, "title, slug and description are required")
	}

	// Duplicate slugs are rejected before any write
	var count int64
	if err := database.GetDB().Model(&model.Service{}).Where("slug = ?", form.Slug).Count(&count).Error; err != nil {
		log.Error("Failed to check slug", zap.String("slug", form.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create service")
	}
	if count > 0 {
		log.Warn("Service slug already exists", zap.String("slug", form.Slug))
		return response.Error(c, http.StatusBadRequest, "A service with this slug already exists")
	}

	imageURL, err := persistImage(c)
	if err != nil {
		log.Error("Failed to persist service image", zap.String("slug", form.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to save image")
	}

	service := model.Service{
		Slug:            form.Slug,
		Title:           form.Title,
		Tagline:         form.Tagline,
		Category:        form.Category,
		Description:     form.Description,
		FullDescription: form.FullDescription,
		Icon:            form.Icon,
		ImageURL:        imageURL,
		IsActive:        form.IsActive,
		DisplayOrder:    form.DisplayOrder,
		SegmentID:       form.SegmentID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Features", "Specifications", "Benefits", "Applications").Create(&service).Error; err != nil {
			return err
		}
		return insertChildRows(tx, service.ID, form)
	})
	if err != nil {
		log.Error("Failed to create service", zap.String("slug", form.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create service")
	}

	var created model.Service
	if err := withChildren(database.GetDB()).First(&created, service.ID).Error; err != nil {
		log.Error("Failed to reload created service", zap.String("slug", form.Slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create service")
	}
	created.NormalizeChildren()

	prometheus.RecordServiceOperation("create")
	log.Info("Service created",
		zap.Uint("service_id", created.ID),
		zap.String("slug", created.Slug))
	return response.Created(c, "Service created successfully", created)
}

// UpdateService handles a full replace of a service's scalar fields
// and child collections in one transaction
func UpdateService(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	var existing model.Service
	err := database.GetDB().Where("slug = ?", slug).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Service not found for update", zap.String("slug", slug))
			return response.Error(c, http.StatusNotFound, "Service not found")
		}
		log.Error("Failed to look up service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to update service")
	}

	form, err := parseServiceForm(c)
	if err != nil {
		log.Warn("Invalid service form", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusBadRequest, err.Error())
	}

	if form.Title == "" || form.Slug == "" || form.Description == "" {
		log.Warn("Missing required service fields", zap.String("slug", slug))
		return response.Error(c, http.StatusBadRequest, "title, slug and description are required")
	}

	// A changed slug must not collide with a different service
	if form.Slug != existing.Slug {
		var count int64
		if err := database.GetDB().Model(&model.Service{}).Where("slug = ? AND id != ?", form.Slug, existing.ID).Count(&count).Error; err != nil {
			log.Error("Failed to check slug", zap.String("slug", form.Slug), zap.Error(err))
			return response.Error(c, http.StatusInternalServerError, "Failed to update service")
		}
		if count > 0 {
			log.Warn("Service slug already exists",
				zap.String("old_slug", existing.Slug),
				zap.String("new_slug", form.Slug))
			return response.Error(c, http.StatusBadRequest, "A service with this slug already exists")
		}
	}

	imageURL, err := persistImage(c)
	if err != nil {
		log.Error("Failed to persist service image", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to save image")
	}
	if imageURL == "" {
		if form.ExistingImage != "" {
			imageURL = form.ExistingImage
		} else {
			imageURL = existing.ImageURL
		}
	}

	existing.Slug = form.Slug
	existing.Title = form.Title
	existing.Tagline = form.Tagline
	existing.Category = form.Category
	existing.Description = form.Description
	existing.FullDescription = form.FullDescription
	existing.Icon = form.Icon
	existing.ImageURL = imageURL
	existing.IsActive = form.IsActive
	existing.DisplayOrder = form.DisplayOrder
	existing.SegmentID = form.SegmentID

	defer prometheus.TrackDBOperation("update")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Features", "Specifications", "Benefits", "Applications").Save(&existing).Error; err != nil {
			return err
		}
		if err := deleteChildRows(tx, existing.ID); err != nil {
			return err
		}
		return insertChildRows(tx, existing.ID, form)
	})
	if err != nil {
		log.Error("Failed to update service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to update service")
	}

	var updated model.Service
	if err := withChildren(database.GetDB()).First(&updated, existing.ID).Error; err != nil {
		log.Error("Failed to reload updated service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to update service")
	}
	updated.NormalizeChildren()

	prometheus.RecordServiceOperation("update")
	log.Info("Service updated",
		zap.Uint("service_id", updated.ID),
		zap.String("slug", updated.Slug))
	return response.OK(c, "Service updated successfully", updated)
}

// DeleteService handles deleting a service and its child rows by slug
func DeleteService(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	var service model.Service
	err := database.GetDB().Where("slug = ?", slug).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Service not found for deletion", zap.String("slug", slug))
			return response.Error(c, http.StatusNotFound, "Service not found")
		}
		log.Error("Failed to look up service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to delete service")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := deleteChildRows(tx, service.ID); err != nil {
			return err
		}
		return tx.Delete(&service).Error
	})
	if err != nil {
		log.Error("Failed to delete service", zap.String("slug", slug), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to delete service")
	}

	prometheus.RecordServiceOperation("delete")
	log.Info("Service deleted",
		zap.Uint("service_id", service.ID),
		zap.String("slug", slug))
	return response.OK(c, "Service deleted successfully", nil)
}
