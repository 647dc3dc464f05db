package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthenticator is a mock implementation of Authenticator.
type MockAuthenticator struct {
	mock.Mock
	token string
}

func (m *MockAuthenticator) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) SetToken(token string) {
	m.token = token
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	api := new(MockAuthenticator)
	creds := model.Credentials{Email: "ada@example.com", Password: "secret"}
	api.On("Login", mock.Anything, creds).Return(&model.AuthResponse{
		User:  &model.User{ID: "u1", Name: "Ada", Role: model.RoleAdmin},
		Token: "tok-1",
	}, nil)

	m := NewManager(ctx, api, store, zerolog.Nop())
	require.False(t, m.IsAuthenticated())

	user, err := m.Login(ctx, creds)

	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsAdmin())
	assert.Equal(t, "tok-1", m.Token())
	assert.Equal(t, "tok-1", api.token)
	assert.False(t, m.Loading())
	assert.Empty(t, m.LastError())
	assert.Equal(t, "/admin", RedirectFor(user))

	raw, err := store.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", string(raw))

	var stored model.User
	found, err := storage.GetJSON(ctx, store, storage.KeyAuthUser, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.User{ID: "u1", Name: "Ada", Role: model.RoleAdmin}, stored)

	api.AssertExpectations(t)
}

func TestManager_InvalidResponse(t *testing.T) {
	tests := []struct {
		name string
		resp *model.AuthResponse
	}{
		{name: "Missing token", resp: &model.AuthResponse{User: &model.User{Name: "Ada"}}},
		{name: "Missing user", resp: &model.AuthResponse{Token: "tok"}},
		{name: "Empty body", resp: &model.AuthResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := new(MockAuthenticator)
			api.On("Login", mock.Anything, mock.Anything).Return(tt.resp, nil)
			m := NewManager(ctx, api, storage.NewMemoryStore(), zerolog.Nop())

			user, err := m.Login(ctx, model.Credentials{})

			assert.ErrorIs(t, err, model.ErrInvalidAuthResponse)
			assert.Nil(t, user)
			assert.False(t, m.IsAuthenticated())
			assert.Equal(t, "Invalid response from server", m.LastError())
			assert.Empty(t, api.token)
		})
	}
}

func TestManager_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "API message",
			err:      &apiclient.APIError{StatusCode: 401, Message: "Invalid credentials"},
			expected: "Invalid credentials",
		},
		{
			name:     "Transport error",
			err:      errors.New("dial tcp: connection refused"),
			expected: "dial tcp: connection refused",
		},
		{
			name:     "Empty error text",
			err:      errors.New(""),
			expected: "Request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			api := new(MockAuthenticator)
			api.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err)
			m := NewManager(ctx, api, storage.NewMemoryStore(), zerolog.Nop())

			_, err := m.Login(ctx, model.Credentials{})

			require.Error(t, err)
			assert.Equal(t, tt.expected, m.LastError())

			m.ClearError()
			assert.Empty(t, m.LastError())
		})
	}
}

func TestManager_RegisterDefaultsRole(t *testing.T) {
	ctx := context.Background()
	api := new(MockAuthenticator)
	api.On("Register", mock.Anything, model.Registration{
		Name: "Bo", Email: "bo@example.com", Password: "pw", Role: model.RoleUser,
	}).Return(&model.AuthResponse{
		User:  &model.User{ID: "u2", Name: "Bo", Role: model.RoleUser},
		Token: "tok-2",
	}, nil)

	m := NewManager(ctx, api, storage.NewMemoryStore(), zerolog.Nop())
	user, err := m.Register(ctx, model.Registration{Name: "Bo", Email: "bo@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.False(t, m.IsAdmin())
	assert.Equal(t, "/", RedirectFor(user))
	api.AssertExpectations(t)
}

func TestManager_Logout(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	api := new(MockAuthenticator)
	api.On("Login", mock.Anything, mock.Anything).Return(&model.AuthResponse{
		User: &model.User{Name: "Ada", Role: model.RoleUser}, Token: "tok",
	}, nil)

	m := NewManager(ctx, api, store, zerolog.Nop())
	_, err := m.Login(ctx, model.Credentials{})
	require.NoError(t, err)

	m.Logout(ctx)

	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.User())
	assert.Empty(t, api.token)
	_, err = store.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyAuthUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_Hydrate(t *testing.T) {
	valid := signedToken(t, time.Now().Add(time.Hour))
	expired := signedToken(t, time.Now().Add(-time.Hour))

	tests := []struct {
		name          string
		user          string
		token         string
		authenticated bool
		expectToken   string
	}{
		{name: "Opaque token", user: `{"_id":"u1","name":"Ada","role":"Admin"}`, token: "opaque", authenticated: true, expectToken: "opaque"},
		{name: "Valid JWT", user: `{"id":"u1","name":"Ada","role":"User"}`, token: valid, authenticated: true, expectToken: valid},
		{name: "Expired JWT", user: `{"id":"u1","name":"Ada","role":"User"}`, token: expired, authenticated: false},
		{name: "Unreadable user", user: `{oops`, token: "opaque", authenticated: false, expectToken: "opaque"},
		{name: "Token only", token: "opaque", authenticated: false, expectToken: "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			if tt.user != "" {
				require.NoError(t, store.Set(ctx, storage.KeyAuthUser, []byte(tt.user)))
			}
			if tt.token != "" {
				require.NoError(t, store.Set(ctx, storage.KeyAuthToken, []byte(tt.token)))
			}
			api := new(MockAuthenticator)

			m := NewManager(ctx, api, store, zerolog.Nop())

			assert.Equal(t, tt.authenticated, m.IsAuthenticated())
			assert.Equal(t, tt.expectToken, m.Token())
			assert.Equal(t, tt.expectToken, api.token)
		})
	}
}

func TestManager_HydrateExpiredClearsStorage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyAuthUser, []byte(`{"id":"u1","name":"Ada"}`)))
	require.NoError(t, store.Set(ctx, storage.KeyAuthToken, []byte(signedToken(t, time.Now().Add(-time.Minute)))))

	NewManager(ctx, new(MockAuthenticator), store, zerolog.Nop())

	_, err := store.Get(ctx, storage.KeyAuthToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyAuthUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_HydrateUserWithoutToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyAuthUser, []byte(`{"id":"u1","name":"Ada","role":"Admin"}`)))

	m := NewManager(ctx, new(MockAuthenticator), store, zerolog.Nop())

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
	assert.Nil(t, m.User())
	assert.Nil(t, m.Snapshot().User)
	_, err := store.Get(ctx, storage.KeyAuthUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_BearerHeaderOnLaterRequests(t *testing.T) {
	var productsAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"_id": "u1", "name": "Ada", "role": "User"},
			"token": "server-token",
		})
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		productsAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := apiclient.New(server.URL, 5*time.Second, zerolog.Nop())
	m := NewManager(ctx, client, storage.NewMemoryStore(), zerolog.Nop())

	_, err := m.Login(ctx, model.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = client.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer server-token", productsAuth)

	m.Logout(ctx)
	_, err = client.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, productsAuth)
}
