package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/admin"
	"storefront/internal/app"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxUploadBytes bounds multipart product forms, image included.
const maxUploadBytes = 10 << 20

// AdminHandler serves the admin dashboard: product CRUD and the orders view.
type AdminHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(a *app.App, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		app:    a,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
}

// ListProducts handles GET /api/admin/products.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.app.Admin.Refresh(r.Context())
	if err != nil {
		writeDomainError(w, err, h.app.Admin.LastError(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// CreateProduct handles POST /api/admin/products. Both multipart forms and
// JSON bodies are accepted.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.productInput(w, r)
	if !ok {
		return
	}

	created, err := h.app.Admin.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err, "Failed to save product", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/admin/products/{productID}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	in, ok := h.productInput(w, r)
	if !ok {
		return
	}

	updated, err := h.app.Admin.Update(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, err, "Failed to save product", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/admin/products/{productID}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")

	if err := h.app.Admin.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete product", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Orders handles GET /api/admin/orders?page=N.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid page parameter", h.logger)
			return
		}
		page = n
	}

	orders, message, err := h.app.Admin.Orders(r.Context())
	if err != nil {
		writeDomainError(w, err, message, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, admin.Paginate(orders, page))
}

func (h *AdminHandler) productInput(w http.ResponseWriter, r *http.Request) (model.ProductInput, bool) {
	var in model.ProductInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid product form", h.logger)
			return in, false
		}
		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")
		in.Price = r.FormValue("price")

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read image", h.logger)
				return in, false
			}
			in.Image = &model.ImageUpload{Filename: header.Filename, Data: data}
		}
	} else {
		var req productRequest
		if !decodeJSON(w, r, &req, h.logger) {
			return in, false
		}
		in.Name = req.Name
		in.Description = req.Description
		if price := string(req.Price); price != "null" {
			in.Price = strings.Trim(price, `"`)
		}
	}

	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "name is required", h.logger)
		return in, false
	}
	return in, true
}
