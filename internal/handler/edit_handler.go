package handler

import (
	"net/http"

	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// EditHandler serves the local catalogue edit surface.
type EditHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewEditHandler creates a new edit handler.
func NewEditHandler(a *app.App, logger zerolog.Logger) *EditHandler {
	return &EditHandler{
		app:    a,
		logger: logger.With().Str("handler", "edit").Logger(),
	}
}

type editResponse struct {
	Shop    []model.Product `json:"shop"`
	Reserve []model.Product `json:"reserve"`
}

// View handles GET /api/edit.
func (h *EditHandler) View(w http.ResponseWriter, r *http.Request) {
	h.writeLists(w)
}

// AddToShop handles POST /api/edit/shop/{productID}.
func (h *EditHandler) AddToShop(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Editor.AddToShop(chi.URLParam(r, "productID")); err != nil {
		writeDomainError(w, err, "failed to add product", h.logger)
		return
	}
	h.writeLists(w)
}

// RemoveFromShop handles DELETE /api/edit/shop/{productID}.
func (h *EditHandler) RemoveFromShop(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Editor.RemoveFromShop(chi.URLParam(r, "productID")); err != nil {
		writeDomainError(w, err, "failed to remove product", h.logger)
		return
	}
	h.writeLists(w)
}

// EditReserve handles PATCH /api/edit/reserve/{productID}.
func (h *EditHandler) EditReserve(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ReservePatch
	if !decodeJSON(w, r, &patch, h.logger) {
		return
	}

	product, err := h.app.Editor.EditReserve(chi.URLParam(r, "productID"), patch)
	if err != nil {
		writeDomainError(w, err, "failed to edit product", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Save handles POST /api/edit/save. The storefront picks up the saved list
// immediately.
func (h *EditHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Editor.Save(r.Context()); err != nil {
		writeDomainError(w, err, "failed to save catalogue", h.logger)
		return
	}
	h.app.Notes.Success("Changes saved")
	h.writeLists(w)
}

func (h *EditHandler) writeLists(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, editResponse{Shop: h.app.Editor.Shop(), Reserve: h.app.Editor.Reserve()})
}
