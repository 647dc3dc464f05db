package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/app"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeed = []model.Product{
	{ID: "1", Name: "Lamp", Description: "Desk lamp", Price: 10, ImageURL: "assets/lamp.png"},
	{ID: "2", Name: "Headphones", Price: 49.99},
}

// fakeRemote stands in for the remote commerce API.
type fakeRemote struct {
	mu             sync.Mutex
	products       string
	orders         string
	checkoutStatus int
	checkouts      []model.Order
	auths          []string
}

func (f *fakeRemote) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.auths = append(f.auths, r.Header.Get("Authorization"))
		w.Write([]byte(f.products))
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		json.NewEncoder(w).Encode(map[string]any{"product": map[string]any{
			"_id":   "new-1",
			"name":  r.FormValue("name"),
			"price": r.FormValue("price"),
		}})
	})
	mux.HandleFunc("PUT /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		json.NewEncoder(w).Encode(map[string]any{"product": map[string]any{
			"_id":   r.PathValue("id"),
			"name":  r.FormValue("name"),
			"price": r.FormValue("price"),
		}})
	})
	mux.HandleFunc("DELETE /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "locked" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"Product is locked"}`))
			return
		}
		w.Write([]byte(`{"message":"deleted"}`))
	})
	mux.HandleFunc("GET /order/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(f.orders))
	})
	mux.HandleFunc("POST /order/createCheckout", func(w http.ResponseWriter, r *http.Request) {
		var order model.Order
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&order))

		f.mu.Lock()
		f.checkouts = append(f.checkouts, order)
		status := f.checkoutStatus
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"payment declined"}`))
			return
		}
		w.Write([]byte(`{"status":"success"}`))
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		role := model.RoleUser
		if creds.Email == "admin@example.com" {
			role = model.RoleAdmin
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"_id": "u1", "name": "Ada", "email": creds.Email, "role": role},
			"token": "tok-" + string(role),
		})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var reg model.Registration
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]any{"_id": "u2", "name": reg.Name, "email": reg.Email, "role": reg.Role},
			"token": "tok-new",
		})
	})
	return mux
}

func (f *fakeRemote) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checkouts)
}

type testEnv struct {
	app    *app.App
	store  storage.Store
	remote *fakeRemote
}

// newTestEnv builds an app against a fake remote API. A non-empty role
// starts the app with a stored session for that role.
func newTestEnv(t *testing.T, role model.Role) *testEnv {
	t.Helper()
	ctx := context.Background()

	remote := &fakeRemote{products: `[]`, orders: `[]`}
	server := httptest.NewServer(remote.handler(t))
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	if role != "" {
		require.NoError(t, storage.SetJSON(ctx, store, storage.KeyAuthUser, model.User{ID: "u1", Name: "Ada", Role: role}))
		require.NoError(t, store.Set(ctx, storage.KeyAuthToken, []byte("opaque")))
	}

	a := app.New(ctx, store, app.Options{
		APIBaseURL:    server.URL,
		APITimeout:    2 * time.Second,
		UploadBaseURL: "http://img.test/uploads/",
		Seed:          testSeed,
	}, zerolog.Nop())
	a.Checkout.SetDelay(0)
	t.Cleanup(a.Close)

	return &testEnv{app: a, store: store, remote: remote}
}

// serve routes one request through a chi router so URL params resolve.
func serve(h http.HandlerFunc, method, pattern, path string, body any) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestWriteDomainError(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedCode    string
		expectedMessage string
	}{
		{
			name:            "Product not found",
			err:             model.ErrProductNotFound,
			expectedStatus:  http.StatusNotFound,
			expectedCode:    model.ErrCodeProductNotFound,
			expectedMessage: "Product not found",
		},
		{
			name:            "Wrapped login required",
			err:             fmt.Errorf("checkout: %w", model.ErrLoginRequired),
			expectedStatus:  http.StatusUnauthorized,
			expectedCode:    model.ErrCodeLoginRequired,
			expectedMessage: model.ErrLoginRequired.Message,
		},
		{
			name:            "Already in shop",
			err:             model.ErrAlreadyInShop,
			expectedStatus:  http.StatusConflict,
			expectedCode:    model.ErrCodeAlreadyInShop,
			expectedMessage: "Product already exists in the shop!",
		},
		{
			name:            "Remote client error keeps status",
			err:             &apiclient.APIError{StatusCode: http.StatusForbidden, Message: "Not allowed"},
			expectedStatus:  http.StatusForbidden,
			expectedCode:    model.ErrCodeRemoteUnavailable,
			expectedMessage: "Not allowed",
		},
		{
			name:            "Remote server error",
			err:             &apiclient.APIError{StatusCode: http.StatusInternalServerError},
			expectedStatus:  http.StatusBadGateway,
			expectedCode:    model.ErrCodeRemoteUnavailable,
			expectedMessage: "Request failed with status code 500",
		},
		{
			name:            "Unknown error",
			err:             errors.New("disk full"),
			expectedStatus:  http.StatusInternalServerError,
			expectedCode:    model.ErrCodeInternalError,
			expectedMessage: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			writeDomainError(w, tt.err, "fallback", logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeBody[model.ErrorResponse](t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
}
