package tui

import (
	"context"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/model"
	"storefront/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	a := app.New(context.Background(), storage.NewMemoryStore(), app.Options{
		APIBaseURL: "http://127.0.0.1:1",
		APITimeout: time.Second,
		Seed: []model.Product{
			{ID: "1", Name: "Lamp", Price: 10},
			{ID: "2", Name: "Desk", Price: 20},
		},
	}, zerolog.Nop())
	t.Cleanup(a.Close)

	m := New(a, model.Contact{Name: "Ada", Email: "ada@example.com", Phone: "1", Address: "2"})
	return step(t, m, m.Init())
}

// step runs cmd and feeds its message back into the model.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	return step(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadsSeed(t *testing.T) {
	m := newTestModel(t)

	require.Len(t, m.products, 2)
	assert.Contains(t, m.View(), "Lamp")
	assert.Contains(t, m.status, "Loaded 2 products (seed)")
}

func TestModel_CartKeys(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("a"))
	m = press(t, m, runes("+"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, runes("a"))

	cart := m.app.CartView()
	assert.Equal(t, 3, cart.Count)
	assert.Equal(t, 40.0, cart.Total)
	assert.Contains(t, m.View(), "[cart: 3]")

	m = press(t, m, runes("x"))
	assert.Equal(t, 2, m.app.CartView().Count)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, runes("-"))
	m = press(t, m, runes("-"))
	assert.Empty(t, m.app.CartView().Lines)

	m = press(t, m, runes("-"))
	assert.Contains(t, m.status, "Product not found")
}

func TestModel_CheckoutSignedOut(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, runes("a"))

	next, cmd := m.Update(runes("c"))

	assert.Nil(t, cmd, "no order is submitted without a session")
	assert.Equal(t, model.ErrLoginRequired.Message, next.(Model).status)
	assert.Equal(t, 1, m.app.CartView().Count)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(runes("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
