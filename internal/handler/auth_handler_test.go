package handler

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name             string
		creds            model.Credentials
		expectedStatus   int
		expectedRedirect string
		expectedMessage  string
	}{
		{
			name:             "User goes home",
			creds:            model.Credentials{Email: "ada@example.com", Password: "secret"},
			expectedStatus:   http.StatusOK,
			expectedRedirect: "/",
		},
		{
			name:             "Admin goes to dashboard",
			creds:            model.Credentials{Email: "admin@example.com", Password: "secret"},
			expectedStatus:   http.StatusOK,
			expectedRedirect: "/admin",
		},
		{
			name:            "Wrong password shows server message",
			creds:           model.Credentials{Email: "ada@example.com", Password: "nope"},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			h := NewAuthHandler(env.app, zerolog.Nop())

			w := serve(h.Login, http.MethodPost, "/api/auth/login", "/api/auth/login", tt.creds)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, tt.expectedMessage, decodeBody[model.ErrorResponse](t, w).Message)
				assert.False(t, env.app.Auth.IsAuthenticated())
				return
			}

			resp := decodeBody[authResponse](t, w)
			assert.Equal(t, tt.expectedRedirect, resp.Redirect)
			assert.True(t, env.app.Auth.IsAuthenticated())

			token, err := env.store.Get(context.Background(), storage.KeyAuthToken)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAuthHandler_RegisterDefaultsToUser(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewAuthHandler(env.app, zerolog.Nop())

	w := serve(h.Register, http.MethodPost, "/api/auth/register", "/api/auth/register",
		model.Registration{Name: "Grace", Email: "grace@example.com", Password: "pw"})

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody[authResponse](t, w)
	require.NotNil(t, resp.User)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.Equal(t, "/", resp.Redirect)
}

func TestAuthHandler_SessionAndLogout(t *testing.T) {
	env := newTestEnv(t, model.RoleAdmin)
	h := NewAuthHandler(env.app, zerolog.Nop())

	w := serve(h.Session, http.MethodGet, "/api/auth/session", "/api/auth/session", nil)
	session := decodeBody[sessionResponse](t, w)
	assert.True(t, session.Authenticated)
	assert.True(t, session.IsAdmin)
	require.NotNil(t, session.User)
	assert.Equal(t, "Ada", session.User.Name)

	w = serve(h.Logout, http.MethodPost, "/api/auth/logout", "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(h.Session, http.MethodGet, "/api/auth/session", "/api/auth/session", nil)
	session = decodeBody[sessionResponse](t, w)
	assert.False(t, session.Authenticated)
	assert.Nil(t, session.User)

	_, err := env.store.Get(context.Background(), storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
