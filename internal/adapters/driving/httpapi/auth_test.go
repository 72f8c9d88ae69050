package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestAuthenticator_Disabled(t *testing.T) {
	a := NewAuthenticator(nil)

	id, err := a.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, err)
	assert.False(t, a.Enabled())
	assert.Equal(t, domain.Anonymous, id)
}

func TestAuthenticator_Resolvers(t *testing.T) {
	a := NewAuthenticator(map[string]domain.Role{
		"view-token": domain.RoleViewer,
		"edit-token": domain.RoleEditor,
	})

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantRole   domain.Role
		wantScheme string
		wantErr    error
	}{
		{
			name:       "bearer",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer edit-token") },
			wantRole:   domain.RoleEditor,
			wantScheme: "bearer",
		},
		{
			name:       "header",
			setup:      func(r *http.Request) { r.Header.Set(TokenHeader, "view-token") },
			wantRole:   domain.RoleViewer,
			wantScheme: "header",
		},
		{
			name:       "cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "view-token"}) },
			wantRole:   domain.RoleViewer,
			wantScheme: "cookie",
		},
		{
			name:    "no credentials",
			setup:   func(*http.Request) {},
			wantErr: domain.ErrAuthRequired,
		},
		{
			name:    "unknown token",
			setup:   func(r *http.Request) { r.Header.Set(TokenHeader, "nope") },
			wantErr: domain.ErrAuthInvalid,
		},
		{
			name: "first credential found decides",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer nope")
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "edit-token"})
			},
			wantErr: domain.ErrAuthInvalid,
		},
		{
			name: "bearer wins over header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer view-token")
				r.Header.Set(TokenHeader, "edit-token")
			},
			wantRole:   domain.RoleViewer,
			wantScheme: "bearer",
		},
		{
			name:    "basic auth is ignored",
			setup:   func(r *http.Request) { r.SetBasicAuth("u", "edit-token") },
			wantErr: domain.ErrAuthRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)

			id, err := a.Authenticate(r)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, id.Role)
			assert.Equal(t, tt.wantScheme, id.Scheme)
			assert.Regexp(t, "^token:[0-9a-f]{12}$", id.Subject)
		})
	}
}

func TestRoutes_EnforceRoles(t *testing.T) {
	env := newTestEnv(t, Config{Tokens: map[string]domain.Role{
		"viewer": domain.RoleViewer,
		"editor": domain.RoleEditor,
	}})
	_, err := env.archive.Ingest(t.Context(), []byte("%PDF doc"), "doc.pdf")
	require.NoError(t, err)

	as := func(method, target, token string) int {
		r := httptest.NewRequest(method, target, nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := env.do(r)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, as(http.MethodGet, "/api/docs", ""))
	assert.Equal(t, http.StatusUnauthorized, as(http.MethodGet, "/api/docs", "bogus"))
	assert.Equal(t, http.StatusOK, as(http.MethodGet, "/api/docs", "viewer"))
	assert.Equal(t, http.StatusOK, as(http.MethodGet, "/api/search?q=x", "viewer"))
	assert.Equal(t, http.StatusForbidden, as(http.MethodDelete, "/api/docs/1", "viewer"))
	assert.Equal(t, http.StatusForbidden, as(http.MethodPost, "/api/upload", "viewer"))
	assert.Equal(t, http.StatusNoContent, as(http.MethodDelete, "/api/docs/1", "editor"))
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	env := newTestEnv(t, Config{Tokens: map[string]domain.Role{"t": domain.RoleEditor}})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/docs", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}
