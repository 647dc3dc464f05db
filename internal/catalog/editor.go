package catalog

import (
	"context"
	"fmt"
	"math"
	"sync"

	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
)

// ReservePatch holds the editable fields of a reserve product. Nil fields
// are left unchanged.
type ReservePatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// Editor stages changes to the shop and reserve lists until Save writes them
// to storage and announces events.CatalogChanged.
type Editor struct {
	mu      sync.Mutex
	shop    []model.Product
	reserve []model.Product

	store  storage.Store
	bus    *events.Bus
	seed   []model.Product
	logger zerolog.Logger
}

// NewEditor creates an editor holding the stored lists, or the seed and
// built-in reserve lists when nothing readable is stored.
func NewEditor(ctx context.Context, store storage.Store, bus *events.Bus, seed []model.Product, logger zerolog.Logger) *Editor {
	if seed == nil {
		seed = BuiltinSeed()
	}

	e := &Editor{
		store:  store,
		bus:    bus,
		seed:   cloneProducts(seed),
		logger: logger.With().Str("component", "catalog-editor").Logger(),
	}
	e.Reset(ctx)
	return e
}

// Reset discards staged changes and reloads both lists from storage.
func (e *Editor) Reset(ctx context.Context) {
	shop := e.readList(ctx, storage.KeyEditedProducts, e.seed)
	reserve := e.readList(ctx, storage.KeyReserveProducts, BuiltinReserve())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.shop = shop
	e.reserve = reserve
}

func (e *Editor) readList(ctx context.Context, key string, fallback []model.Product) []model.Product {
	var list []model.Product
	found, err := storage.GetJSON(ctx, e.store, key, &list)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("stored list unreadable, using default")
		return cloneProducts(fallback)
	}
	if !found {
		return cloneProducts(fallback)
	}
	return cloneProducts(list)
}

// Shop returns the staged shop list.
func (e *Editor) Shop() []model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneProducts(e.shop)
}

// Reserve returns the staged reserve list.
func (e *Editor) Reserve() []model.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneProducts(e.reserve)
}

// RemoveFromShop moves a shop product to the end of the reserve list. A
// product already in reserve is only removed from the shop.
func (e *Editor) RemoveFromShop(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.shop, id)
	if i < 0 {
		return model.ErrProductNotFound
	}

	removed := e.shop[i]
	e.shop = append(e.shop[:i:i], e.shop[i+1:]...)
	if indexOf(e.reserve, id) < 0 {
		e.reserve = append(e.reserve, removed)
	}

	e.logger.Debug().Str("product_id", id).Msg("product moved to reserve")
	return nil
}

// AddToShop moves a reserve product to the end of the shop list.
func (e *Editor) AddToShop(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if indexOf(e.shop, id) >= 0 {
		return model.ErrAlreadyInShop
	}
	i := indexOf(e.reserve, id)
	if i < 0 {
		return model.ErrProductNotFound
	}

	added := e.reserve[i]
	e.reserve = append(e.reserve[:i:i], e.reserve[i+1:]...)
	e.shop = append(e.shop, added)

	e.logger.Debug().Str("product_id", id).Msg("product moved to shop")
	return nil
}

// EditReserve applies patch to a reserve product and returns the result.
// Prices that are not finite and non-negative are stored as 0.
func (e *Editor) EditReserve(id string, patch ReservePatch) (model.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := indexOf(e.reserve, id)
	if i < 0 {
		return model.Product{}, model.ErrProductNotFound
	}

	p := &e.reserve[i]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		price := *patch.Price
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			price = 0
		}
		p.Price = price
	}
	return *p, nil
}

// Save persists both lists and publishes events.CatalogChanged.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	shop := cloneProducts(e.shop)
	reserve := cloneProducts(e.reserve)
	e.mu.Unlock()

	if err := storage.SetJSON(ctx, e.store, storage.KeyEditedProducts, shop); err != nil {
		e.logger.Error().Err(err).Msg("failed to save shop products")
		return fmt.Errorf("failed to save shop products: %w", err)
	}
	if err := storage.SetJSON(ctx, e.store, storage.KeyReserveProducts, reserve); err != nil {
		e.logger.Error().Err(err).Msg("failed to save reserve products")
		return fmt.Errorf("failed to save reserve products: %w", err)
	}

	e.logger.Info().
		Int("shop", len(shop)).
		Int("reserve", len(reserve)).
		Msg("catalogue edits saved")

	e.bus.Publish(events.CatalogChanged)
	return nil
}

func indexOf(products []model.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
