package handler

import (
	"errors"
	"net/http"

	"storefront/internal/app"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// CheckoutHandler serves the checkout area and the order-status view.
type CheckoutHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(a *app.App, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		app:    a,
		logger: logger.With().Str("handler", "checkout").Logger(),
	}
}

// View handles GET /api/checkout. Signed-out users get the login prompt
// instead of the form.
func (h *CheckoutHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Checkout.View()
	if err != nil {
		writeDomainError(w, err, "checkout unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/checkout. The response is sent once the order
// has been accepted and the cart cleared.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// The login prompt wins over a malformed form.
	if !h.app.Auth.IsAuthenticated() {
		writeDomainError(w, model.ErrLoginRequired, "", h.logger)
		return
	}

	var contact model.Contact
	if !decodeJSON(w, r, &contact, h.logger) {
		return
	}

	result, err := h.app.Checkout.Submit(r.Context(), contact)
	if err != nil {
		if errors.Is(err, model.ErrCheckoutFailed) {
			h.logger.Warn().Err(err).Msg("checkout failed")
			writeDomainError(w, model.ErrCheckoutFailed, "", h.logger)
			return
		}
		writeDomainError(w, err, "checkout failed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// OrderStatus handles GET /api/order-status.
func (h *CheckoutHandler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Checkout.LastOrder())
}
