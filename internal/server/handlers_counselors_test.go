package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerdesk/careerdesk-api/internal/db"
	"github.com/careerdesk/careerdesk-api/internal/server/middleware"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

func seedCounselor(store *fakeStore) db.Counselor {
	c := db.Counselor{
		ID:           uuid.New(),
		Name:         "Dana Reyes",
		Email:        "dana@careerdesk.example",
		PasswordHash: "existing-hash",
	}
	store.counselors[c.ID] = c
	return c
}

func asPrincipal(req *http.Request, p *types.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), p))
}

func TestHandleCreateCounselor(t *testing.T) {
	payload := func() map[string]any {
		return map[string]any{
			"name":     "Dana Reyes",
			"email":    "dana@careerdesk.example",
			"password": "long-enough-password",
		}
	}

	t.Run("creates with hashed password", func(t *testing.T) {
		s, store, _ := newTestServer()

		req := httptest.NewRequest("POST", "/counselors", jsonBody(t, payload()))
		rec := httptest.NewRecorder()
		s.handleCreateCounselor(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Len(t, store.counselors, 1)
		for _, c := range store.counselors {
			assert.NotEqual(t, "long-enough-password", c.PasswordHash)
			assert.True(t, s.passwords.VerifyPassword("long-enough-password", c.PasswordHash))
		}
	})

	t.Run("password hash never leaves the API", func(t *testing.T) {
		s, _, _ := newTestServer()

		req := httptest.NewRequest("POST", "/counselors", jsonBody(t, payload()))
		rec := httptest.NewRecorder()
		s.handleCreateCounselor(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
		assert.NotContains(t, rec.Body.String(), "$2a$")
	})

	t.Run("duplicate email", func(t *testing.T) {
		s, store, _ := newTestServer()
		seedCounselor(store)

		req := httptest.NewRequest("POST", "/counselors", jsonBody(t, payload()))
		rec := httptest.NewRecorder()
		s.handleCreateCounselor(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		s, _, _ := newTestServer()
		p := payload()
		p["password"] = "short"

		req := httptest.NewRequest("POST", "/counselors", jsonBody(t, p))
		rec := httptest.NewRecorder()
		s.handleCreateCounselor(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetCounselor(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)

		req := httptest.NewRequest("GET", "/counselors/"+c.ID.String(), nil)
		req.SetPathValue("id", c.ID.String())
		rec := httptest.NewRecorder()
		s.handleGetCounselor(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "existing-hash")
	})

	t.Run("not found", func(t *testing.T) {
		s, _, _ := newTestServer()
		id := uuid.New()

		req := httptest.NewRequest("GET", "/counselors/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()
		s.handleGetCounselor(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleUpdateCounselor(t *testing.T) {
	adminPrincipal := &types.Principal{ID: uuid.New(), Role: types.RoleAdmin}

	t.Run("admin can update any profile", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)

		req := httptest.NewRequest("PUT", "/counselors/"+c.ID.String(),
			jsonBody(t, map[string]any{"name": "Dana R."}))
		req.SetPathValue("id", c.ID.String())
		req = asPrincipal(req, adminPrincipal)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Dana R.", store.counselors[c.ID].Name)
	})

	t.Run("counselor can update their own profile", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)
		self := &types.Principal{ID: c.ID, Role: types.RoleCounselor}

		req := httptest.NewRequest("PUT", "/counselors/"+c.ID.String(),
			jsonBody(t, map[string]any{"bio": "20 years in career counseling"}))
		req.SetPathValue("id", c.ID.String())
		req = asPrincipal(req, self)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("counselor cannot update another profile", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)
		other := &types.Principal{ID: uuid.New(), Role: types.RoleCounselor}

		req := httptest.NewRequest("PUT", "/counselors/"+c.ID.String(),
			jsonBody(t, map[string]any{"name": "Hacked"}))
		req.SetPathValue("id", c.ID.String())
		req = asPrincipal(req, other)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Dana Reyes", store.counselors[c.ID].Name)
	})

	t.Run("password change is re-hashed", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)

		req := httptest.NewRequest("PUT", "/counselors/"+c.ID.String(),
			jsonBody(t, map[string]any{"password": "brand-new-password"}))
		req.SetPathValue("id", c.ID.String())
		req = asPrincipal(req, adminPrincipal)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		hash := store.counselors[c.ID].PasswordHash
		assert.NotEqual(t, "existing-hash", hash)
		assert.NotEqual(t, "brand-new-password", hash)
		assert.True(t, s.passwords.VerifyPassword("brand-new-password", hash))
	})

	t.Run("email change to a taken address conflicts", func(t *testing.T) {
		s, store, _ := newTestServer()
		first := seedCounselor(store)
		second := db.Counselor{ID: uuid.New(), Name: "Lee", Email: "lee@careerdesk.example"}
		store.counselors[second.ID] = second

		req := httptest.NewRequest("PUT", "/counselors/"+second.ID.String(),
			jsonBody(t, map[string]any{"email": first.Email}))
		req.SetPathValue("id", second.ID.String())
		req = asPrincipal(req, adminPrincipal)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("no principal", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)

		req := httptest.NewRequest("PUT", "/counselors/"+c.ID.String(),
			jsonBody(t, map[string]any{"name": "X"}))
		req.SetPathValue("id", c.ID.String())
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown counselor", func(t *testing.T) {
		s, _, _ := newTestServer()
		id := uuid.New()

		req := httptest.NewRequest("PUT", "/counselors/"+id.String(),
			jsonBody(t, map[string]any{"name": "X"}))
		req.SetPathValue("id", id.String())
		req = asPrincipal(req, adminPrincipal)
		rec := httptest.NewRecorder()
		s.handleUpdateCounselor(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleDeleteCounselor(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		s, store, _ := newTestServer()
		c := seedCounselor(store)

		req := httptest.NewRequest("DELETE", "/counselors/"+c.ID.String(), nil)
		req.SetPathValue("id", c.ID.String())
		rec := httptest.NewRecorder()
		s.handleDeleteCounselor(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, store.counselors)
	})

	t.Run("not found", func(t *testing.T) {
		s, _, _ := newTestServer()
		id := uuid.New()

		req := httptest.NewRequest("DELETE", "/counselors/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()
		s.handleDeleteCounselor(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleListCounselors(t *testing.T) {
	s, store, _ := newTestServer()
	seedCounselor(store)

	req := httptest.NewRequest("GET", "/counselors", nil)
	rec := httptest.NewRecorder()
	s.handleListCounselors(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListCounselorsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.NotContains(t, rec.Body.String(), "existing-hash")
}
