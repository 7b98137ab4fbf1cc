package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"alumglass-backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestAdminLogin(t *testing.T) {
	e := setupTest(t)
	require.NoError(t, database.SeedAdmin(database.GetDB(), "admin@alumglass.com", "s3cret"))

	rec := do(e, jsonRequest(t, http.MethodPost, "/api/admin/login", loginBody{"admin@alumglass.com", "s3cret"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var data struct {
		Token string `json:"token"`
		Admin struct {
			Email string `json:"email"`
		} `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "admin@alumglass.com", data.Admin.Email)

	// The token opens the admin-gated dashboard routes
	req := getRequest("/api/admin/services")
	req.Header.Set("Authorization", "Bearer "+data.Token)
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	e := setupTest(t)
	require.NoError(t, database.SeedAdmin(database.GetDB(), "admin@alumglass.com", "s3cret"))

	// Wrong password and unknown email get the same answer
	rec := do(e, jsonRequest(t, http.MethodPost, "/api/admin/login", loginBody{"admin@alumglass.com", "wrong"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassword := decodeEnvelope(t, rec)

	rec = do(e, jsonRequest(t, http.MethodPost, "/api/admin/login", loginBody{"nobody@alumglass.com", "s3cret"}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownEmail := decodeEnvelope(t, rec)

	assert.Equal(t, wrongPassword.Message, unknownEmail.Message)
}

func TestAdminLoginValidation(t *testing.T) {
	e := setupTest(t)

	rec := do(e, jsonRequest(t, http.MethodPost, "/api/admin/login", loginBody{Email: "admin@alumglass.com"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	e := setupTest(t)

	rec := do(e, getRequest("/api/admin/services"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := getRequest("/api/admin/services")
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = do(e, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
