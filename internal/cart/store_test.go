package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore accepts reads but rejects writes.
type failingStore struct {
	*storage.MemoryStore
}

func (f failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func storedCart(t *testing.T, backend storage.Store) model.Cart {
	t.Helper()
	var c model.Cart
	found, err := storage.GetJSON(context.Background(), backend, storage.KeyCart, &c)
	require.NoError(t, err)
	require.True(t, found)
	return c
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := NewStore(ctx, backend, zerolog.Nop())

	_, err := s.Add(ctx, testCatalog, "1")
	require.NoError(t, err)
	assert.Equal(t, s.Lines(), storedCart(t, backend))

	_, err = s.Add(ctx, testCatalog, "2")
	require.NoError(t, err)
	_, err = s.AdjustQty(ctx, "1", 2)
	require.NoError(t, err)
	assert.Equal(t, model.Cart{
		{ID: "1", Name: "Lamp", Price: 10, Qty: 3},
		{ID: "2", Name: "Chair", Price: 25.5, Qty: 1},
	}, storedCart(t, backend))

	_, err = s.Remove(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.Cart{{ID: "2", Name: "Chair", Price: 25.5, Qty: 1}}, storedCart(t, backend))

	_, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, storedCart(t, backend))

	raw, err := backend.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestStore_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	s := NewStore(ctx, backend, zerolog.Nop())

	c, err := s.Add(ctx, testCatalog, "404")

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Empty(t, c)
	_, getErr := backend.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, getErr, storage.ErrNotFound, "no-op must not persist")

	_, err = s.AdjustQty(ctx, "404", 1)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()

	first := NewStore(ctx, backend, zerolog.Nop())
	for _, id := range []string{"3", "1", "2", "1"} {
		_, err := first.Add(ctx, testCatalog, id)
		require.NoError(t, err)
	}

	second := NewStore(ctx, backend, zerolog.Nop())

	assert.Equal(t, first.Lines(), second.Lines())
	assert.Equal(t, []string{"3", "1", "2"}, ids(second.Lines()))
	assert.Equal(t, first.Total(), second.Total())
	assert.Equal(t, 4, second.Count())
}

func TestStore_HydrateMalformed(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	require.NoError(t, backend.Set(ctx, storage.KeyCart, []byte(`{not json`)))

	s := NewStore(ctx, backend, zerolog.Nop())

	assert.Empty(t, s.Lines())
}

func TestStore_HydrateDropsInvalidLines(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStore()
	stored := model.Cart{
		{ID: "1", Price: 10, Qty: 1},
		{ID: "2", Price: 10, Qty: 0},
		{ID: "1", Price: 10, Qty: 5},
		{ID: "", Price: 10, Qty: 1},
		{ID: "3", Price: 10, Qty: -2},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, storage.KeyCart, data))

	s := NewStore(ctx, backend, zerolog.Nop())

	assert.Equal(t, model.Cart{{ID: "1", Price: 10, Qty: 1}}, s.Lines())
}

func TestStore_PersistFailureKeepsCommittedState(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, failingStore{storage.NewMemoryStore()}, zerolog.Nop())

	c, err := s.Add(ctx, testCatalog, "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist cart")
	assert.Len(t, c, 1)
	assert.Len(t, s.Lines(), 1)
}

func TestStore_LinesIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(ctx, storage.NewMemoryStore(), zerolog.Nop())
	_, err := s.Add(ctx, testCatalog, "1")
	require.NoError(t, err)

	lines := s.Lines()
	lines[0].Qty = 100

	assert.Equal(t, 1, s.Lines()[0].Qty)
}

func ids(c model.Cart) []string {
	out := make([]string, len(c))
	for i, l := range c {
		out[i] = l.ID
	}
	return out
}
