package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
)

// Store owns the single in-memory cart and mirrors it to durable storage.
// Every mutation commits the new cart in memory first and then re-serialises
// the whole cart under storage.KeyCart before returning. Mutations are applied
// one at a time in the order they arrive.
type Store struct {
	mu      sync.Mutex
	lines   model.Cart
	backend storage.Store
	logger  zerolog.Logger
}

// NewStore creates a cart store hydrated from backend. Stored carts that
// cannot be read are replaced with an empty cart.
func NewStore(ctx context.Context, backend storage.Store, logger zerolog.Logger) *Store {
	s := &Store{
		backend: backend,
		logger:  logger.With().Str("component", "cart-store").Logger(),
	}
	s.lines = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) model.Cart {
	var stored model.Cart
	found, err := storage.GetJSON(ctx, s.backend, storage.KeyCart, &stored)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored cart unreadable, starting with an empty cart")
		return Clear()
	}
	if !found {
		return Clear()
	}

	// Keep the invariants even if the stored value was edited by hand.
	seen := make(map[string]bool, len(stored))
	lines := make(model.Cart, 0, len(stored))
	for _, line := range stored {
		if line.Qty <= 0 || line.ID == "" || seen[line.ID] {
			continue
		}
		seen[line.ID] = true
		lines = append(lines, line)
	}

	s.logger.Debug().Int("lines", len(lines)).Msg("cart hydrated")
	return lines
}

// Lines returns a copy of the current cart.
func (s *Store) Lines() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(model.Cart{}, s.lines...)
}

// Total returns the cart total.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// Count returns the number of items in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.lines)
}

// Add adds one unit of product id from catalog. Ids missing from the catalogue
// leave the cart untouched and return model.ErrProductNotFound.
func (s *Store) Add(ctx context.Context, catalog []model.Product, id string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Add(s.lines, catalog, id)
	if !Contains(next, id) {
		s.logger.Debug().Str("product_id", id).Msg("product not in catalogue, cart unchanged")
		return append(model.Cart{}, s.lines...), model.ErrProductNotFound
	}
	return s.commit(ctx, next)
}

// AdjustQty changes the quantity of line id by delta.
func (s *Store) AdjustQty(ctx context.Context, id string, delta int) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !Contains(s.lines, id) {
		return append(model.Cart{}, s.lines...), model.ErrProductNotFound
	}
	return s.commit(ctx, AdjustQty(s.lines, id, delta))
}

// Remove drops line id.
func (s *Store) Remove(ctx context.Context, id string) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, Remove(s.lines, id))
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, Clear())
}

// commit must be called with mu held. The in-memory cart stays committed even
// when persisting fails; the error is reported to the caller.
func (s *Store) commit(ctx context.Context, next model.Cart) (model.Cart, error) {
	s.lines = next
	out := append(model.Cart{}, next...)

	if err := storage.SetJSON(ctx, s.backend, storage.KeyCart, next); err != nil {
		s.logger.Error().Err(err).Int("lines", len(next)).Msg("failed to persist cart")
		return out, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.logger.Debug().
		Int("lines", len(next)).
		Int("items", Count(next)).
		Msg("cart persisted")
	return out, nil
}
