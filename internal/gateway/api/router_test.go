package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hediske/fitness-microservices-app/internal/gateway/api"
	"github.com/hediske/fitness-microservices-app/internal/gateway/config"
	"github.com/hediske/fitness-microservices-app/internal/platform/identity"
)

func TestGateway_EndToEnd(t *testing.T) {
	// Fake auth service: serves both proxied routes and introspection.
	fakeAuth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/authenticate":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"fake-jwt","refreshToken":"fake-refresh"}`))
		case "/api/auth/introspect":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"active":true,"email":"a@b.com","role":"USER"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer fakeAuth.Close()

	// Fake nutrition service: echoes the identity headers it received.
	fakeNutrition := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Email", r.Header.Get(identity.HeaderUserEmail))
		w.Header().Set("X-Seen-Role", r.Header.Get(identity.HeaderUserRole))
		w.WriteHeader(http.StatusOK)
	}))
	defer fakeNutrition.Close()

	cfg := &config.Config{
		Env:                 "dev",
		AuthServiceURL:      fakeAuth.URL,
		NutritionServiceURL: fakeNutrition.URL,
		WorkoutServiceURL:   fakeNutrition.URL,
		IntrospectTimeout:   time.Second,
		PublicRoutes:        []string{"/api/auth/**", "/healthz", "/metrics"},
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
	}

	router, err := api.NewRouter(cfg)
	require.NoError(t, err)

	t.Run("healthz is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("auth routes proxied without a token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/authenticate", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"token":"fake-jwt","refreshToken":"fake-refresh"}`, rec.Body.String())
	})

	t.Run("protected route without token is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/nutrition/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
		assert.Contains(t, rec.Body.String(), "timestamp")
	})

	t.Run("protected route with token gets identity injected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/nutrition/me", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		// A spoof attempt must be replaced by the introspection verdict.
		req.Header.Set(identity.HeaderUserEmail, "spoof@x.com")
		req.Header.Set(identity.HeaderUserRole, "ADMIN")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a@b.com", rec.Header().Get("X-Seen-Email"))
		assert.Equal(t, "USER", rec.Header().Get("X-Seen-Role"))
	})
}

func TestGateway_AuthServiceDown_401NotOpenDoor(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	deadAuth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadAuth.Close() // auth service unreachable

	cfg := &config.Config{
		Env:                 "dev",
		AuthServiceURL:      deadAuth.URL,
		NutritionServiceURL: downstream.URL,
		WorkoutServiceURL:   downstream.URL,
		IntrospectTimeout:   time.Second,
		PublicRoutes:        []string{"/api/auth/**", "/healthz"},
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
	}

	router, err := api.NewRouter(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/nutrition/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
