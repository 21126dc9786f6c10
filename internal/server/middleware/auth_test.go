package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerdesk/careerdesk-api/internal/types"
)

// fakeValidator resolves a single known token to a fixed principal.
type fakeValidator struct {
	token     string
	principal *types.Principal
}

type fakePrincipalGetter struct {
	principal *types.Principal
}

func (g *fakePrincipalGetter) Principal() (*types.Principal, error) {
	if g.principal == nil {
		return nil, fmt.Errorf("no principal")
	}
	return g.principal, nil
}

func (f *fakeValidator) ValidateToken(_ context.Context, tokenString string) (PrincipalGetter, error) {
	if tokenString != f.token {
		return nil, fmt.Errorf("invalid token")
	}
	return &fakePrincipalGetter{principal: f.principal}, nil
}

func okHandler(captured **types.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			p, _ := GetPrincipal(r)
			*captured = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	principal := &types.Principal{
		ID:    uuid.New(),
		Email: "dana@careerdesk.example",
		Role:  types.RoleCounselor,
	}
	validator := &fakeValidator{token: "good-token", principal: principal}

	t.Run("valid bearer token", func(t *testing.T) {
		var seen *types.Principal
		handler := Authenticate(validator)(okHandler(&seen))

		req := httptest.NewRequest("GET", "/jobs", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, principal.ID, seen.ID)
	})

	t.Run("lowercase bearer prefix is accepted", func(t *testing.T) {
		handler := Authenticate(validator)(okHandler(nil))

		req := httptest.NewRequest("GET", "/jobs", nil)
		req.Header.Set("Authorization", "bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		handler := Authenticate(validator)(okHandler(nil))

		req := httptest.NewRequest("GET", "/jobs", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		handler := Authenticate(validator)(okHandler(nil))

		req := httptest.NewRequest("GET", "/jobs", nil)
		req.Header.Set("Authorization", "good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		handler := Authenticate(validator)(okHandler(nil))

		req := httptest.NewRequest("GET", "/jobs", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(role types.Role, required types.Role) *httptest.ResponseRecorder {
		handler := RequireRole(required)(okHandler(nil))
		req := httptest.NewRequest("POST", "/jobs", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &types.Principal{
			ID:   uuid.New(),
			Role: role,
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("matching role passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, run(types.RoleAdmin, types.RoleAdmin).Code)
		assert.Equal(t, http.StatusOK, run(types.RoleCounselor, types.RoleCounselor).Code)
	})

	t.Run("mismatched role is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, run(types.RoleCounselor, types.RoleAdmin).Code)
		assert.Equal(t, http.StatusForbidden, run(types.RoleAdmin, types.RoleCounselor).Code)
	})

	t.Run("unknown role is forbidden, never allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, run(types.Role("superuser"), types.RoleAdmin).Code)
		assert.Equal(t, http.StatusForbidden, run(types.Role(""), types.RoleAdmin).Code)
	})

	t.Run("no principal in context", func(t *testing.T) {
		handler := RequireRole(types.RoleAdmin)(okHandler(nil))
		req := httptest.NewRequest("POST", "/jobs", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetPrincipal(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		principal := &types.Principal{ID: uuid.New(), Role: types.RoleAdmin}
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), principal))

		got, err := GetPrincipal(req)
		require.NoError(t, err)
		assert.Equal(t, principal, got)
	})

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		_, err := GetPrincipal(req)
		assert.Error(t, err)
	})
}
