// Package admin implements the admin product manager and orders dashboard.
package admin

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/apiclient"
	"storefront/internal/model"
	"storefront/internal/notify"

	"github.com/rs/zerolog"
)

// Notification texts shown after product operations.
const (
	MsgProductAdded   = "Product added successfully"
	MsgProductUpdated = "Product updated successfully"
	MsgProductDeleted = "Product deleted"

	fallbackSave     = "Failed to save product"
	fallbackDelete   = "Failed to delete product"
	fallbackProducts = "Unable to load products"
	fallbackOrders   = "Unable to load orders"
)

// API is the remote API surface used by the admin dashboard.
type API interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]model.OrderSummary, error)
}

// Manager keeps the admin product list in step with the remote API. A
// failed remote call leaves the list unchanged.
type Manager struct {
	mu       sync.RWMutex
	products []model.Product
	lastErr  string

	api    API
	notes  *notify.Center
	logger zerolog.Logger
}

// NewManager creates a manager with an empty product list.
func NewManager(api API, notes *notify.Center, logger zerolog.Logger) *Manager {
	return &Manager{
		products: []model.Product{},
		api:      api,
		notes:    notes,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// Products returns a copy of the admin product list.
func (m *Manager) Products() []model.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Product{}, m.products...)
}

// LastError returns the message of the last failed list refresh.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Refresh replaces the list with the remote catalogue.
func (m *Manager) Refresh(ctx context.Context) ([]model.Product, error) {
	products, err := m.api.ListProducts(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.lastErr = apiclient.Message(err, fallbackProducts)
		m.logger.Error().Err(err).Msg("failed to load products")
		return nil, err
	}

	m.lastErr = ""
	m.products = append([]model.Product{}, products...)
	m.logger.Debug().Int("products", len(products)).Msg("products loaded")
	return append([]model.Product{}, m.products...), nil
}

// saveMessage is the notification text for a failed create or update.
func saveMessage(err error) string {
	if errors.Is(err, apiclient.ErrMissingProduct) {
		return fallbackSave
	}
	return apiclient.Message(err, fallbackSave)
}

// Create submits a new product and prepends the server's record to the list.
func (m *Manager) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	created, err := m.api.CreateProduct(ctx, in)
	if err != nil {
		m.notes.Error(saveMessage(err))
		m.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create product")
		return nil, err
	}

	m.mu.Lock()
	m.products = append([]model.Product{*created}, m.products...)
	m.mu.Unlock()

	m.notes.Success(MsgProductAdded)
	m.logger.Info().Str("product_id", created.ID).Msg("product created")
	return created, nil
}

// Update submits changes to product id and replaces the matching entry with
// the server's record.
func (m *Manager) Update(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	updated, err := m.api.UpdateProduct(ctx, id, in)
	if err != nil {
		m.notes.Error(saveMessage(err))
		m.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, err
	}

	m.mu.Lock()
	for i := range m.products {
		if m.products[i].ID == updated.ID {
			m.products[i] = *updated
		}
	}
	m.mu.Unlock()

	m.notes.Success(MsgProductUpdated)
	m.logger.Info().Str("product_id", updated.ID).Msg("product updated")
	return updated, nil
}

// Delete removes product id remotely and then from the list.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteProduct(ctx, id); err != nil {
		m.notes.Error(apiclient.Message(err, fallbackDelete))
		m.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return err
	}

	m.mu.Lock()
	kept := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.products = kept
	m.mu.Unlock()

	m.notes.Success(MsgProductDeleted)
	m.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
