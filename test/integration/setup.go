package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/database"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/router"
	"storefront/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupPostgresStore starts a PostgreSQL test container, migrates it and
// returns a state store backed by it.
func SetupPostgresStore(t *testing.T) storage.Store {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create schema
	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, nil)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return storage.NewPostgresStore(pool, zerolog.Nop())
}

type remoteUser struct {
	id       string
	name     string
	password string
	role     model.Role
}

// RemoteAPI is an in-memory stand-in for the remote commerce API.
type RemoteAPI struct {
	mu       sync.Mutex
	users    map[string]remoteUser
	tokens   map[string]model.Role
	products []map[string]any
	orders   []map[string]any
	nextID   int

	Server *httptest.Server
}

// NewRemoteAPI starts the fake remote API with one user and one admin.
func NewRemoteAPI(t *testing.T) *RemoteAPI {
	t.Helper()

	api := &RemoteAPI{
		users: map[string]remoteUser{
			"ada@example.com":   {id: "u1", name: "Ada", password: "secret", role: model.RoleUser},
			"admin@example.com": {id: "u2", name: "Root", password: "secret", role: model.RoleAdmin},
		},
		tokens: map[string]model.Role{},
		products: []map[string]any{
			{"_id": "r1", "name": "Remote Lamp", "description": "From the API", "price": "25.50", "imageUrl": "uploads/lamp.jpg"},
			{"_id": "r2", "name": "Remote Desk", "price": 100},
		},
	}
	api.Server = httptest.NewServer(api.routes())
	t.Cleanup(api.Server.Close)
	return api
}

// Orders returns a copy of the accepted orders.
func (a *RemoteAPI) Orders() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any{}, a.orders...)
}

func (a *RemoteAPI) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds model.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"message": "bad request"})
			return
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		u, ok := a.users[creds.Email]
		if !ok || u.password != creds.Password {
			reply(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
			return
		}
		reply(w, http.StatusOK, a.session(creds.Email, u))
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var reg model.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"message": "bad request"})
			return
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if _, exists := a.users[reg.Email]; exists {
			reply(w, http.StatusConflict, map[string]any{"message": "User already exists"})
			return
		}
		a.nextID++
		u := remoteUser{id: fmt.Sprintf("u%d", 100+a.nextID), name: reg.Name, password: reg.Password, role: reg.Role}
		a.users[reg.Email] = u
		reply(w, http.StatusCreated, a.session(reg.Email, u))
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		reply(w, http.StatusOK, a.products)
	})
	mux.HandleFunc("POST /order/createCheckout", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.authorize(r); !ok {
			reply(w, http.StatusUnauthorized, map[string]any{"message": "Not authorized"})
			return
		}
		var order map[string]any
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"message": "bad request"})
			return
		}

		a.mu.Lock()
		a.nextID++
		order["_id"] = fmt.Sprintf("o%d", a.nextID)
		order["createdAt"] = time.Now().UTC().Format(time.RFC3339)
		a.orders = append(a.orders, order)
		a.mu.Unlock()

		reply(w, http.StatusOK, map[string]any{"status": "success"})
	})
	mux.HandleFunc("GET /order/orders", func(w http.ResponseWriter, r *http.Request) {
		if role, ok := a.authorize(r); !ok || role != model.RoleAdmin {
			reply(w, http.StatusForbidden, map[string]any{"message": "Admin only"})
			return
		}
		reply(w, http.StatusOK, a.Orders())
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		if role, ok := a.authorize(r); !ok || role != model.RoleAdmin {
			reply(w, http.StatusForbidden, map[string]any{"message": "Admin only"})
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			reply(w, http.StatusBadRequest, map[string]any{"message": "bad form"})
			return
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		a.nextID++
		p := map[string]any{
			"_id":         fmt.Sprintf("p%d", a.nextID),
			"name":        r.FormValue("name"),
			"description": r.FormValue("description"),
			"price":       r.FormValue("price"),
		}
		a.products = append(a.products, p)
		reply(w, http.StatusCreated, map[string]any{"product": p})
	})
	return mux
}

// session must be called with mu held.
func (a *RemoteAPI) session(email string, u remoteUser) map[string]any {
	token := fmt.Sprintf("token-%s-%d", u.id, len(a.tokens))
	a.tokens[token] = u.role
	return map[string]any{
		"user":  map[string]any{"_id": u.id, "name": u.name, "email": email, "role": u.role},
		"token": token,
	}
}

func (a *RemoteAPI) authorize(r *http.Request) (model.Role, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	role, ok := a.tokens[token]
	return role, ok
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Storefront is a running front end wired to a fake remote API.
type Storefront struct {
	App     *app.App
	Handler http.Handler
	Remote  *RemoteAPI
}

// NewStorefront hydrates an app from store and builds its router.
func NewStorefront(t *testing.T, store storage.Store, remote *RemoteAPI) *Storefront {
	t.Helper()

	a := app.New(context.Background(), store, app.Options{
		APIBaseURL:    remote.Server.URL,
		APITimeout:    5 * time.Second,
		UploadBaseURL: "http://localhost:5000/uploads/",
	}, zerolog.Nop())
	a.Checkout.SetDelay(0)
	t.Cleanup(a.Close)

	m := metrics.NewServerMetrics("integration", prometheus.NewRegistry())
	return &Storefront{
		App:     a,
		Handler: router.New(a, m, "*", zerolog.Nop()),
		Remote:  remote,
	}
}
