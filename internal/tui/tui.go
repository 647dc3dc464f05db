// Package tui is the terminal storefront: a bubbletea model driving the same
// application state as the HTTP front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// opTimeout bounds a single remote-backed action. Checkout includes the
// processing delay.
const opTimeout = 30 * time.Second

// Model is the bubbletea model of the terminal storefront.
type Model struct {
	app     *app.App
	contact model.Contact

	products []app.ProductCard
	source   catalog.Source
	cursor   int
	status   string
	busy     bool
}

// New creates the model. contact fills the checkout form.
func New(a *app.App, contact model.Contact) Model {
	return Model{app: a, contact: contact, status: "Loading products..."}
}

type productsLoaded struct {
	products []app.ProductCard
	source   catalog.Source
}

type cartChanged struct {
	status string
	err    error
}

type checkoutDone struct {
	result string
	err    error
}

// Init loads the catalogue.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Update handles key presses and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case productsLoaded:
		m.products = msg.products
		m.source = msg.source
		if m.cursor >= len(m.products) {
			m.cursor = max(len(m.products)-1, 0)
		}
		m.status = fmt.Sprintf("Loaded %d products (%s)", len(m.products), msg.source)

	case cartChanged:
		m.status = msg.status
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		}

	case checkoutDone:
		m.busy = false
		m.status = msg.result
		if msg.err != nil {
			m.status = msg.err.Error()
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "r":
		m.status = "Reloading..."
		return m, m.loadCmd()
	case "a":
		if p, ok := m.selected(); ok {
			return m, m.cartCmd("Added "+p.Name, func(ctx context.Context) error {
				_, err := m.app.AddToCart(ctx, p.ID)
				return err
			})
		}
	case "+", "=":
		if p, ok := m.selected(); ok {
			return m, m.cartCmd("Increased "+p.Name, func(ctx context.Context) error {
				_, err := m.app.Cart.AdjustQty(ctx, p.ID, 1)
				return err
			})
		}
	case "-":
		if p, ok := m.selected(); ok {
			return m, m.cartCmd("Decreased "+p.Name, func(ctx context.Context) error {
				_, err := m.app.Cart.AdjustQty(ctx, p.ID, -1)
				return err
			})
		}
	case "x":
		if p, ok := m.selected(); ok {
			return m, m.cartCmd("Removed "+p.Name, func(ctx context.Context) error {
				_, err := m.app.Cart.Remove(ctx, p.ID)
				return err
			})
		}
	case "c":
		if m.busy {
			return m, nil
		}
		if !m.app.Auth.IsAuthenticated() {
			m.status = model.ErrLoginRequired.Message
			return m, nil
		}
		m.busy = true
		m.status = "Please wait..."
		return m, m.checkoutCmd()
	}
	return m, nil
}

func (m Model) selected() (app.ProductCard, bool) {
	if m.cursor < 0 || m.cursor >= len(m.products) {
		return app.ProductCard{}, false
	}
	return m.products[m.cursor], true
}

func (m Model) loadCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		cards, source := a.Products(ctx)
		return productsLoaded{products: cards, source: source}
	}
}

func (m Model) cartCmd(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return cartChanged{err: err}
		}
		return cartChanged{status: status}
	}
}

func (m Model) checkoutCmd() tea.Cmd {
	a, contact := m.app, m.contact
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		result, err := a.Checkout.Submit(ctx, contact)
		if err != nil {
			var domainErr *model.DomainError
			if errors.As(err, &domainErr) {
				return checkoutDone{err: errors.New(domainErr.Message)}
			}
			return checkoutDone{err: err}
		}
		return checkoutDone{result: fmt.Sprintf("Order placed: %.2f. See %s", result.Order.Total, result.Next)}
	}
}

// View renders the product list, the cart and the status line.
func (m Model) View() string {
	b := &strings.Builder{}
	cart := m.app.CartView()

	header := "Storefront"
	if u := m.app.Auth.User(); u != nil {
		header += fmt.Sprintf(" - signed in as %s", u.Name)
	}
	fmt.Fprintf(b, "%s    [cart: %d]\n\n", header, cart.Count)

	fmt.Fprintf(b, "Products (%s):\n", m.source)
	for i, p := range m.products {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-32s %10.2f\n", marker, p.Name, p.Price)
	}

	fmt.Fprintln(b, "\nCart:")
	if len(cart.Lines) == 0 {
		fmt.Fprintln(b, "  (empty)")
	}
	for _, l := range cart.Lines {
		fmt.Fprintf(b, "  %-30s x%-3d %10.2f\n", l.Name, l.Qty, l.Price*float64(l.Qty))
	}
	fmt.Fprintf(b, "  Total: %.2f\n", cart.Total)

	fmt.Fprintf(b, "\nStatus: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: up/down select, a add, +/- quantity, x remove, c checkout, r reload, q quit")
	return b.String()
}
