// Package checkout implements the checkout flow: it turns the cart and the
// contact form into an order, submits it and clears the cart on success.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/notify"

	"github.com/rs/zerolog"
)

// State is a checkout flow state.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// ProcessingDelay is how long a successful order shows as processing before
// the cart is cleared.
const ProcessingDelay = 3 * time.Second

// Paths the flow points the user to.
const (
	OrderStatusPath = "/order-status"
	LoginPath       = "/login"
	RegisterPath    = "/register"
)

// Button labels of the checkout form.
const (
	LabelPlaceOrder = "Place Order"
	LabelWait       = "Please wait..."
)

// OrderSubmitter sends orders to the remote API.
type OrderSubmitter interface {
	CreateCheckout(ctx context.Context, order model.Order) (*model.CheckoutResponse, error)
}

// SessionChecker reports whether a user is signed in.
type SessionChecker interface {
	IsAuthenticated() bool
}

// CartStore is the cart the flow reads and clears.
type CartStore interface {
	Lines() model.Cart
	Clear(ctx context.Context) (model.Cart, error)
}

// Transition is a state change observed by listeners.
type Transition struct {
	From State
	To   State
}

// View is what the checkout area shows: either a login prompt or the form.
type View struct {
	LoginRequired bool     `json:"loginRequired"`
	Message       string   `json:"message,omitempty"`
	LoginPath     string   `json:"loginPath,omitempty"`
	RegisterPath  string   `json:"registerPath,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	Total         float64  `json:"total"`
	State         State    `json:"state"`
	ButtonLabel   string   `json:"buttonLabel,omitempty"`
}

// Result is returned by a successful submission.
type Result struct {
	Order model.Order `json:"order"`
	Next  string      `json:"next"`
}

// Flow is the checkout state machine. Only one submission runs at a time.
type Flow struct {
	mu        sync.Mutex
	state     State
	listeners []func(Transition)
	last      *model.Order

	api     OrderSubmitter
	session SessionChecker
	cart    CartStore
	notes   *notify.Center
	delay   time.Duration
	logger  zerolog.Logger
}

// NewFlow creates an idle checkout flow.
func NewFlow(api OrderSubmitter, session SessionChecker, cartStore CartStore, notes *notify.Center, logger zerolog.Logger) *Flow {
	return &Flow{
		state:   StateIdle,
		api:     api,
		session: session,
		cart:    cartStore,
		notes:   notes,
		delay:   ProcessingDelay,
		logger:  logger.With().Str("component", "checkout").Logger(),
	}
}

// OnTransition registers fn to be called after every state change.
func (f *Flow) OnTransition(fn func(Transition)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// SetDelay replaces the processing delay. Zero skips it.
func (f *Flow) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns the checkout area for the current cart and session. An empty
// cart has no checkout area and yields model.ErrEmptyCart.
func (f *Flow) View() (View, error) {
	lines := f.cart.Lines()
	if len(lines) == 0 {
		return View{}, model.ErrEmptyCart
	}

	state := f.State()
	if !f.session.IsAuthenticated() {
		return View{
			LoginRequired: true,
			Message:       model.ErrLoginRequired.Message,
			LoginPath:     LoginPath,
			RegisterPath:  RegisterPath,
			Total:         cart.Total(lines),
			State:         state,
		}, nil
	}

	label := LabelPlaceOrder
	if state != StateIdle {
		label = LabelWait
	}
	return View{
		Fields:      []string{"name", "email", "phone", "address"},
		Total:       cart.Total(lines),
		State:       state,
		ButtonLabel: label,
	}, nil
}

// Submit places an order for the current cart. It refuses without a session
// or while another submission is running, and never calls the API then.
func (f *Flow) Submit(ctx context.Context, contact model.Contact) (*Result, error) {
	if !f.session.IsAuthenticated() {
		return nil, model.ErrLoginRequired
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	lines := f.cart.Lines()
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	if !f.begin() {
		return nil, model.ErrCheckoutInProgress
	}

	order := BuildOrder(contact, lines)
	log := f.logger.With().Float64("total", order.Total).Int("items", len(order.Items)).Logger()
	log.Info().Msg("submitting order")

	resp, err := f.api.CreateCheckout(ctx, order)
	if err == nil && (resp == nil || resp.Status != model.CheckoutStatusSuccess) {
		status := ""
		if resp != nil {
			status = resp.Status
		}
		err = fmt.Errorf("unexpected checkout status %q", status)
	}
	if err != nil {
		log.Error().Err(err).Msg("order submission failed")
		f.notes.Error(model.ErrCheckoutFailed.Message)
		f.transition(StateFailed)
		f.transition(StateIdle)
		return nil, fmt.Errorf("%w: %w", model.ErrCheckoutFailed, err)
	}

	f.mu.Lock()
	placed := order
	f.last = &placed
	f.mu.Unlock()

	f.transition(StateSuccess)
	log.Info().Msg("order accepted")

	f.wait(ctx)

	// The order is placed; clear the cart even if the caller has gone away.
	if _, err := f.cart.Clear(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("failed to clear cart after checkout")
	}
	f.transition(StateIdle)

	return &Result{Order: order, Next: OrderStatusPath}, nil
}

// OrderStatus is the order-status view.
type OrderStatus struct {
	Processing bool         `json:"processing"`
	Order      *model.Order `json:"order,omitempty"`
}

// LastOrder reports the most recently accepted order. Processing is true
// while that order is still inside the processing delay.
func (f *Flow) LastOrder() OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := OrderStatus{Processing: f.state == StateSuccess}
	if f.last != nil {
		order := *f.last
		status.Order = &order
	}
	return status
}

// begin moves Idle to Submitting and reports whether it did.
func (f *Flow) begin() bool {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return false
	}
	f.state = StateSubmitting
	listeners := append([]func(Transition){}, f.listeners...)
	f.mu.Unlock()

	notifyAll(listeners, Transition{From: StateIdle, To: StateSubmitting})
	return true
}

func (f *Flow) transition(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	listeners := append([]func(Transition){}, f.listeners...)
	f.mu.Unlock()

	notifyAll(listeners, Transition{From: from, To: to})
}

func notifyAll(listeners []func(Transition), t Transition) {
	for _, fn := range listeners {
		fn(t)
	}
}

func (f *Flow) wait(ctx context.Context) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()

	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		f.logger.Warn().Err(ctx.Err()).Msg("processing delay interrupted")
	}
}

// BuildOrder assembles an order from the contact fields and cart lines.
func BuildOrder(contact model.Contact, lines model.Cart) model.Order {
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, model.OrderItem{ID: l.ID, Name: l.Name, Price: l.Price, Qty: l.Qty})
	}
	return model.Order{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Address: contact.Address,
		Total:   cart.Total(lines),
		Items:   items,
	}
}

func validateContact(c model.Contact) error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"phone", c.Phone},
		{"address", c.Address},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return model.NewDomainError(model.ErrCodeMissingField, field.name+" is required")
		}
	}
	return nil
}
