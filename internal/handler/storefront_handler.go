package handler

import (
	"net/http"

	"storefront/internal/app"
	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// StorefrontHandler serves the home view, the catalogue and the cart.
type StorefrontHandler struct {
	app     *app.App
	metrics *metrics.ServerMetrics
	logger  zerolog.Logger
}

// NewStorefrontHandler creates a new storefront handler.
func NewStorefrontHandler(a *app.App, m *metrics.ServerMetrics, logger zerolog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		app:     a,
		metrics: m,
		logger:  logger.With().Str("handler", "storefront").Logger(),
	}
}

type productsResponse struct {
	Products []app.ProductCard `json:"products"`
	Source   string            `json:"source"`
}

type addItemRequest struct {
	ID string `json:"id"`
}

type adjustItemRequest struct {
	Delta int `json:"delta"`
}

// Home handles GET /api/storefront.
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Home(r.Context()))
}

// Products handles GET /api/products.
func (h *StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	cards, source := h.app.Products(r.Context())
	writeJSON(w, http.StatusOK, productsResponse{Products: cards, Source: string(source)})
}

// Cart handles GET /api/cart.
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.CartView())
}

// AddItem handles POST /api/cart/items.
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "id is required", h.logger)
		return
	}

	if _, err := h.app.AddToCart(r.Context(), req.ID); err != nil {
		writeDomainError(w, err, "failed to add to cart", h.logger)
		return
	}

	h.counted("add")
	writeJSON(w, http.StatusOK, h.app.CartView())
}

// AdjustItem handles PATCH /api/cart/items/{productID}.
func (h *StorefrontHandler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	var req adjustItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.Delta == 0 {
		writeDomainError(w, model.ErrInvalidQuantity, "", h.logger)
		return
	}

	if _, err := h.app.Cart.AdjustQty(r.Context(), id, req.Delta); err != nil {
		writeDomainError(w, err, "failed to update cart", h.logger)
		return
	}

	h.counted("adjust")
	writeJSON(w, http.StatusOK, h.app.CartView())
}

// RemoveItem handles DELETE /api/cart/items/{productID}.
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	if _, err := h.app.Cart.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to update cart", h.logger)
		return
	}

	h.counted("remove")
	writeJSON(w, http.StatusOK, h.app.CartView())
}

// ClearCart handles DELETE /api/cart.
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.app.Cart.Clear(r.Context()); err != nil {
		writeDomainError(w, err, "failed to clear cart", h.logger)
		return
	}

	h.counted("clear")
	writeJSON(w, http.StatusOK, h.app.CartView())
}

// Notifications handles GET /api/notifications. Pending notifications are
// returned once.
func (h *StorefrontHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Notes.Drain())
}

func (h *StorefrontHandler) counted(op string) {
	if h.metrics != nil {
		h.metrics.CartMutations.WithLabelValues(op).Inc()
	}
}
