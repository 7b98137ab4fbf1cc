package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"alumglass-backend/internal/model"
	"alumglass-backend/pkg/database"
	"alumglass-backend/pkg/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serviceDoc mirrors the API shape of a service: the plain-string
// child lists come back as bare string arrays
type serviceDoc struct {
	model.Service
	Specifications []string `json:"specifications"`
	Benefits       []string `json:"benefits"`
	Applications   []string `json:"applications"`
}

func serviceFields(slug string) map[string]string {
	return map[string]string{
		"title":           "Tempered Glass Partitions",
		"slug":            slug,
		"tagline":         "Clear division, solid safety",
		"category":        "glass",
		"description":     "Frameless tempered glass partitions for offices.",
		"fullDescription": "Full-height frameless partitions cut and toughened in-house.",
		"icon":            "partition",
		"features":        `[{"title":"Toughened panels","description":"10mm safety glass","icon":"shield"},{"title":"","description":"dropped, no title","icon":"x"}]`,
		"specifications":  `["10mm tempered glass","","Stainless fittings"]`,
		"benefits":        `["Daylight throughout"]`,
		"applications":    `["Offices","Showrooms"]`,
	}
}

func TestCreateServiceAndGetBySlug(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("tempered-partitions")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var created serviceDoc
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "tempered-partitions", created.Slug)
	assert.Equal(t, "Tempered Glass Partitions", created.Title)
	assert.True(t, created.IsActive)
	// Empty entries and untitled features are dropped before insert
	require.Len(t, created.Features, 1)
	assert.Equal(t, "Toughened panels", created.Features[0].Title)

	rec = do(e, getRequest("/api/services/tempered-partitions"))
	require.Equal(t, http.StatusOK, rec.Code)

	env = decodeEnvelope(t, rec)
	var fetched serviceDoc
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Description, fetched.Description)
	assert.Equal(t, created.FullDescription, fetched.FullDescription)
	assert.Equal(t, []string{"10mm tempered glass", "Stainless fittings"}, fetched.Specifications)
	assert.Equal(t, []string{"Daylight throughout"}, fetched.Benefits)
	assert.Equal(t, []string{"Offices", "Showrooms"}, fetched.Applications)
}

func TestCreateServiceMissingFields(t *testing.T) {
	e := setupTest(t)

	fields := serviceFields("incomplete")
	delete(fields, "description")
	fields["description"] = ""

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", fields))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
}

func TestCreateServiceDuplicateSlug(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("shower-enclosures")))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("shower-enclosures")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected request must not have written a second row
	var count int64
	require.NoError(t, database.GetDB().Model(&model.Service{}).Where("slug = ?", "shower-enclosures").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateServiceReplacesChildRows(t *testing.T) {
	e := setupTest(t)

	fields := serviceFields("curtain-walls")
	fields["specifications"] = `["A","B"]`
	rec := do(e, formRequest(t, http.MethodPost, "/api/services", fields))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Service
	require.NoError(t, database.GetDB().Where("slug = ?", "curtain-walls").First(&created).Error)

	fields["specifications"] = `["C"]`
	rec = do(e, formRequest(t, http.MethodPut, "/api/services/curtain-walls", fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Full replace: exactly the submitted set remains, no residue
	var specs []model.ServiceSpecification
	require.NoError(t, database.GetDB().Where("service_id = ?", created.ID).Order("display_order ASC").Find(&specs).Error)
	require.Len(t, specs, 1)
	assert.Equal(t, "C", specs[0].Value)
	assert.Equal(t, 0, specs[0].DisplayOrder)
}

func TestUpdateServiceSlugCollision(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("balustrades")))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("canopies")))
	require.Equal(t, http.StatusCreated, rec.Code)

	// Renaming canopies to an existing slug must fail
	fields := serviceFields("balustrades")
	rec = do(e, formRequest(t, http.MethodPut, "/api/services/canopies", fields))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Renaming to its own slug is fine
	fields = serviceFields("canopies")
	rec = do(e, formRequest(t, http.MethodPut, "/api/services/canopies", fields))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateServiceNotFound(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPut, "/api/services/missing", serviceFields("missing")))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteService(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("facade-cladding")))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, deleteRequest("/api/services/facade-cladding"))
	require.Equal(t, http.StatusOK, rec.Code)

	// Child rows go with the service
	var count int64
	require.NoError(t, database.GetDB().Model(&model.ServiceSpecification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	rec = do(e, getRequest("/api/services/facade-cladding"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteServiceNotFound(t *testing.T) {
	e := setupTest(t)

	rec := do(e, formRequest(t, http.MethodPost, "/api/services", serviceFields("mirrors")))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, deleteRequest("/api/services/not-there"))
	require.Equal(t, http.StatusNotFound, rec.Code)

	// The miss must leave the table untouched
	var count int64
	require.NoError(t, database.GetDB().Model(&model.Service{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateServiceWithImageRoundTrip(t *testing.T) {
	e := setupTest(t)

	dir := t.TempDir()
	SetUploader(&upload.Local{Dir: dir, PublicPath: "/uploads"})
	t.Cleanup(func() { SetUploader(nil) })
	e.Static("/uploads", dir)

	payload := []byte("glass-door-image-bytes")
	req := formRequestWithFile(t, http.MethodPost, "/api/services", serviceFields("glazed-doors"), "image", "door.jpg", payload)
	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	var created serviceDoc
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.True(t, strings.HasPrefix(created.ImageURL, "/uploads/"), created.ImageURL)

	// Fetching the stored URL serves the identical bytes
	rec = do(e, getRequest(created.ImageURL))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestListServicesPagination(t *testing.T) {
	e := setupTest(t)

	for i := 0; i < 12; i++ {
		service := model.Service{
			Slug:        fmt.Sprintf("service-%02d", i),
			Title:       fmt.Sprintf("Service %02d", i),
			Description: "desc",
			IsActive:    true,
		}
		require.NoError(t, database.GetDB().Create(&service).Error)
	}
	// Inactive services never appear in the public listing
	inactive := model.Service{Slug: "hidden", Title: "Hidden", Description: "desc", IsActive: false}
	require.NoError(t, database.GetDB().Create(&inactive).Error)

	rec := do(e, getRequest("/api/services?page=2&limit=5"))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var services []model.Service
	require.NoError(t, json.Unmarshal(env.Data, &services))
	assert.Len(t, services, 5)

	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 5, env.Pagination.Limit)
	assert.EqualValues(t, 12, env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.Pages)
}

func TestListServicesCategoryFilter(t *testing.T) {
	e := setupTest(t)

	for _, s := range []model.Service{
		{Slug: "glass-doors", Title: "Glass Doors", Description: "d", Category: "glass", IsActive: true},
		{Slug: "aluminum-windows", Title: "Aluminum Windows", Description: "d", Category: "aluminum", IsActive: true},
	} {
		require.NoError(t, database.GetDB().Create(&s).Error)
	}

	rec := do(e, getRequest("/api/services?category=glass"))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var services []model.Service
	require.NoError(t, json.Unmarshal(env.Data, &services))
	require.Len(t, services, 1)
	assert.Equal(t, "glass-doors", services[0].Slug)
}
