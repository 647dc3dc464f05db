package handler

import (
	"net/http"

	"storefront/internal/apiclient"
	"storefront/internal/app"
	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// AuthHandler handles sign-in, registration and sign-out.
type AuthHandler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(a *app.App, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		app:    a,
		logger: logger.With().Str("handler", "auth").Logger(),
	}
}

type authResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

type sessionResponse struct {
	User          *model.User `json:"user"`
	Authenticated bool        `json:"authenticated"`
	IsAdmin       bool        `json:"isAdmin"`
	Loading       bool        `json:"loading"`
	Error         string      `json:"error,omitempty"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !decodeJSON(w, r, &creds, h.logger) {
		return
	}

	user, err := h.app.Auth.Login(r.Context(), creds)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Redirect: auth.RedirectFor(user)})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if !decodeJSON(w, r, &reg, h.logger) {
		return
	}

	user, err := h.app.Auth.Register(r.Context(), reg)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Redirect: auth.RedirectFor(user)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.app.Auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{
		User:          h.app.Auth.User(),
		Authenticated: h.app.Auth.IsAuthenticated(),
		IsAdmin:       h.app.Auth.IsAdmin(),
		Loading:       h.app.Auth.Loading(),
		Error:         h.app.Auth.LastError(),
	})
}

// writeAuthError reports the message recorded by the session, which already
// prefers the server's own wording.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if code := apiclient.StatusCode(err); code >= 400 && code < 500 {
		status = code
	}
	writeError(w, status, model.ErrCodeInvalidAuth, h.app.Auth.LastError(), h.logger)
}
