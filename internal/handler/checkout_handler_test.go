package handler

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContact = model.Contact{Name: "Ada", Email: "ada@example.com", Phone: "5551234", Address: "1 Loop St"}

func TestCheckoutHandler_View(t *testing.T) {
	tests := []struct {
		name           string
		role           model.Role
		fillCart       bool
		expectedStatus int
		loginRequired  bool
	}{
		{
			name:           "Empty cart",
			role:           model.RoleUser,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Signed out shows login prompt",
			fillCart:       true,
			expectedStatus: http.StatusOK,
			loginRequired:  true,
		},
		{
			name:           "Signed in shows form",
			role:           model.RoleUser,
			fillCart:       true,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.role)
			if tt.fillCart {
				_, err := env.app.AddToCart(context.Background(), "1")
				require.NoError(t, err)
			}
			h := NewCheckoutHandler(env.app, zerolog.Nop())

			w := serve(h.View, http.MethodGet, "/api/checkout", "/api/checkout", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			view := decodeBody[checkout.View](t, w)
			assert.Equal(t, tt.loginRequired, view.LoginRequired)
			if tt.loginRequired {
				assert.Equal(t, "/login", view.LoginPath)
				assert.Equal(t, "/register", view.RegisterPath)
			} else {
				assert.Equal(t, checkout.LabelPlaceOrder, view.ButtonLabel)
			}
		})
	}
}

func TestCheckoutHandler_SubmitSuccess(t *testing.T) {
	env := newTestEnv(t, model.RoleUser)
	_, err := env.app.AddToCart(context.Background(), "2")
	require.NoError(t, err)
	h := NewCheckoutHandler(env.app, zerolog.Nop())

	w := serve(h.Submit, http.MethodPost, "/api/checkout", "/api/checkout", testContact)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[checkout.Result](t, w)
	assert.Equal(t, "/order-status", result.Next)
	assert.Equal(t, 49.99, result.Order.Total)
	assert.Zero(t, env.app.Cart.Count())
	assert.Equal(t, 1, env.remote.orderCount())

	w = serve(h.OrderStatus, http.MethodGet, "/api/order-status", "/api/order-status", nil)
	status := decodeBody[checkout.OrderStatus](t, w)
	require.NotNil(t, status.Order)
	assert.Equal(t, "Ada", status.Order.Name)
	assert.False(t, status.Processing)
}

func TestCheckoutHandler_SubmitRejected(t *testing.T) {
	tests := []struct {
		name           string
		role           model.Role
		fillCart       bool
		body           any
		remoteStatus   int
		expectedStatus int
		expectedCode   string
		expectedCalls  int
	}{
		{
			name:           "Signed out never posts",
			fillCart:       true,
			body:           testContact,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   model.ErrCodeLoginRequired,
		},
		{
			name:           "Empty cart",
			role:           model.RoleUser,
			body:           testContact,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeEmptyCart,
		},
		{
			name:           "Missing field",
			role:           model.RoleUser,
			fillCart:       true,
			body:           model.Contact{Name: "Ada"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "Remote failure",
			role:           model.RoleUser,
			fillCart:       true,
			body:           testContact,
			remoteStatus:   http.StatusPaymentRequired,
			expectedStatus: http.StatusBadGateway,
			expectedCode:   model.ErrCodeCheckoutFailed,
			expectedCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.role)
			env.remote.checkoutStatus = tt.remoteStatus
			if tt.fillCart {
				_, err := env.app.AddToCart(context.Background(), "1")
				require.NoError(t, err)
			}
			before := env.app.Cart.Count()
			h := NewCheckoutHandler(env.app, zerolog.Nop())

			w := serve(h.Submit, http.MethodPost, "/api/checkout", "/api/checkout", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCode, decodeBody[model.ErrorResponse](t, w).Error)
			assert.Equal(t, tt.expectedCalls, env.remote.orderCount())
			assert.Equal(t, before, env.app.Cart.Count(), "cart must stay intact")
		})
	}
}
