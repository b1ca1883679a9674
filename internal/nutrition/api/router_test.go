package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hediske/fitness-microservices-app/internal/nutrition/api"
	"github.com/hediske/fitness-microservices-app/internal/platform/identity"
)

func doReq(t *testing.T, h http.Handler, path, email, role string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if email != "" {
		req.Header.Set(identity.HeaderUserEmail, email)
	}
	if role != "" {
		req.Header.Set(identity.HeaderUserRole, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNutritionRouter_HealthzIsPublic(t *testing.T) {
	t.Parallel()

	rec := doReq(t, api.NewRouter(), "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNutritionRouter_MeRequiresIdentity(t *testing.T) {
	t.Parallel()

	h := api.NewRouter()

	rec := doReq(t, h, "/api/nutrition/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doReq(t, h, "/api/nutrition/me", "a@b.com", "USER")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, []any{"ROLE_USER"}, body["authorities"])
}

func TestNutritionRouter_AdminRequiresAdminRole(t *testing.T) {
	t.Parallel()

	h := api.NewRouter()

	rec := doReq(t, h, "/api/nutrition/admin/status", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doReq(t, h, "/api/nutrition/admin/status", "a@b.com", "USER")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doReq(t, h, "/api/nutrition/admin/status", "root@x.com", "ADMIN,USER")
	assert.Equal(t, http.StatusOK, rec.Code)
}
