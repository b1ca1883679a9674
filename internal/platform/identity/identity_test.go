package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalEcho() (http.Handler, *struct {
	called    bool
	principal Principal
	ok        bool
}) {
	state := &struct {
		called    bool
		principal Principal
		ok        bool
	}{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state.called = true
		state.principal, state.ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, state
}

func TestTrustHeaders_BothPresent_BuildsPrincipal(t *testing.T) {
	t.Parallel()

	inner, state := principalEcho()
	h := TrustHeaders(inner)

	req := httptest.NewRequest("GET", "/api/nutrition/me", nil)
	req.Header.Set(HeaderUserEmail, "a@b.com")
	req.Header.Set(HeaderUserRole, "USER")

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, state.ok, "principal must be established")
	assert.Equal(t, "a@b.com", state.principal.Email)
	assert.Equal(t, []string{"ROLE_USER"}, state.principal.Authorities)
}

func TestTrustHeaders_CommaJoinedRoles_AllPrefixed(t *testing.T) {
	t.Parallel()

	inner, state := principalEcho()
	h := TrustHeaders(inner)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderUserEmail, "a@b.com")
	req.Header.Set(HeaderUserRole, "ADMIN, USER ,,")

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, state.ok)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, state.principal.Authorities)
}

func TestTrustHeaders_MissingEither_Anonymous(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		email string
		role  string
	}{
		{"no headers", "", ""},
		{"email only", "a@b.com", ""},
		{"role only", "", "USER"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			inner, state := principalEcho()
			h := TrustHeaders(inner)

			req := httptest.NewRequest("GET", "/", nil)
			if tc.email != "" {
				req.Header.Set(HeaderUserEmail, tc.email)
			}
			if tc.role != "" {
				req.Header.Set(HeaderUserRole, tc.role)
			}

			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.True(t, state.called, "anonymous requests still proceed")
			assert.False(t, state.ok, "no principal without both headers")
		})
	}
}

func TestTrustHeaders_ExistingPrincipal_NotOverwritten(t *testing.T) {
	t.Parallel()

	inner, state := principalEcho()
	h := TrustHeaders(inner)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderUserEmail, "late@x.com")
	req.Header.Set(HeaderUserRole, "ADMIN")
	req = req.WithContext(WithPrincipal(req.Context(), Principal{
		Email:       "first@x.com",
		Authorities: []string{"ROLE_USER"},
	}))

	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, state.ok)
	assert.Equal(t, "first@x.com", state.principal.Email, "first principal wins")
}

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	inner, state := principalEcho()
	h := RequireAuthenticated(inner)

	t.Run("anonymous is 401 with error body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), Principal{Email: "a@b.com"}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, state.called)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	inner, _ := principalEcho()
	h := RequireRole("ADMIN")(inner)

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong role is 403", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), Principal{
			Email:       "a@b.com",
			Authorities: []string{"ROLE_USER"},
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), Principal{
			Email:       "root@x.com",
			Authorities: []string{"ROLE_ADMIN", "ROLE_USER"},
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPrincipal_HasAuthority(t *testing.T) {
	t.Parallel()

	p := Principal{Authorities: []string{"ROLE_USER"}}
	assert.True(t, p.HasAuthority("ROLE_USER"))
	assert.False(t, p.HasAuthority("ROLE_ADMIN"))
	assert.False(t, p.HasAuthority("USER"), "authorities are always prefixed")
}
