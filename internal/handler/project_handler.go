package handler

import (
	"errors"
	"net/http"
	"strconv"
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

// ProjectRequest defines the JSON body for project creation
type ProjectRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Year        int    `json:"year"`
	Service     string `json:"service"`
	Image       string `json:"image"`
	Description string `json:"description"`
	ClientType  string `json:"client_type"`
}

// ListProjects handles retrieving all projects, newest first
func ListProjects(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var projects []model.Project
	if err := database.GetDB().Order("created_at DESC").Find(&projects).Error; err != nil {
		log.Error("Failed to list projects", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve projects")
	}

	log.Info("Projects retrieved", zap.Int("count", len(projects)))
	return response.OK(c, "Projects retrieved successfully", projects)
}

// GetProject handles retrieving a single project by ID
func GetProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var project model.Project
	err := database.GetDB().First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Project not found", zap.String("project_id", id))
			return response.Error(c, http.StatusNotFound, "Project not found")
		}
		log.Error("Failed to get project", zap.String("project_id", id), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to retrieve project")
	}

	return response.OK(c, "Project retrieved successfully", project)
}

// CreateProject handles creating a new project
func CreateProject(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid project request", zap.Error(err))
		return response.Error(c, http.StatusBadRequest, "Invalid request data")
	}

	if req.Title == "" {
		log.Warn("Missing project title")
		return response.Error(c, http.StatusBadRequest, "title is required")
	}

	project := model.Project{
		Title:       req.Title,
		Category:    req.Category,
		Location:    req.Location,
		Year:        req.Year,
		Service:     req.Service,
		Image:       req.Image,
		Description: req.Description,
		ClientType:  req.ClientType,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&project).Error; err != nil {
		log.Error("Failed to create project", zap.String("title", req.Title), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to create project")
	}

	prometheus.RecordProjectOperation("create")
	log.Info("Project created",
		zap.Uint("project_id", project.ID),
		zap.String("title", project.Title))
	return response.Created(c, "Project created successfully", project)
}

// UpdateProject handles updating a project from a multipart form,
// optionally replacing its image
func UpdateProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var project model.Project
	err := database.GetDB().First(&project, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Project not found for update", zap.String("project_id", id))
			return response.Error(c, http.StatusNotFound, "Project not found")
		}
		log.Error("Failed to look up project", zap.String("project_id", id), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to update project")
	}

	if v := c.FormValue("title"); v != "" {
		project.Title = v
	}
	if v := c.FormValue("category"); v != "" {
		project.Category = v
	}
	if v := c.FormValue("location"); v != "" {
		project.Location = v
	}
	if v := c.FormValue("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			project.Year = year
		}
	}
	if v := c.FormValue("service"); v != "" {
		project.Service = v
	}
	if v := c.FormValue("description"); v != "" {
		project.Description = v
	}
	if v := c.FormValue("clientType"); v != "" {
		project.ClientType = v
	}

	imageURL, err := persistImage(c)
	if err != nil {
		log.Error("Failed to persist project image", zap.String("project_id", id), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to save image")
	}
	if imageURL != "" {
		project.Image = imageURL
	} else if v := c.FormValue("existingImage"); v != "" {
		project.Image = v
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(&project).Error; err != nil {
		log.Error("Failed to update project", zap.String("project_id", id), zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, "Failed to update project")
	}

	prometheus.RecordProjectOperation("update")
	log.Info("Project updated",
		zap.Uint("project_id", project.ID),
		zap.String("title", project.Title))
	return response.OK(c, "Project updated successfully", project)
}

// DeleteProject handles deleting a project by ID
func DeleteProject(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.Project{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete project", zap.String("project_id", id), zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, "Failed to delete project")
	}
	if result.RowsAffected == 0 {
		log.Warn("Project not found for deletion", zap.String("project_id", id))
		return response.Error(c, http.StatusNotFound, "Project not found")
	}

	prometheus.RecordProjectOperation("delete")
	log.Info("Project deleted", zap.String("project_id", id))
	return response.OK(c, "Project deleted successfully", nil)
}
