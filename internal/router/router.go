package router

import (
	"net/http"

	"storefront/internal/app"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(a *app.App, m *metrics.ServerMetrics, allowedOrigin string, logger zerolog.Logger) http.Handler {
	storefront := handler.NewStorefrontHandler(a, m, logger)
	checkout := handler.NewCheckoutHandler(a, logger)
	auth := handler.NewAuthHandler(a, logger)
	admin := handler.NewAdminHandler(a, logger)
	edit := handler.NewEditHandler(a, logger)

	r := chi.NewRouter()

	// Recovery -> RequestID -> RealIP -> Logging -> Metrics -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(allowedOrigin))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/storefront", storefront.Home)
		r.Get("/products", storefront.Products)
		r.Get("/notifications", storefront.Notifications)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", storefront.Cart)
			r.Delete("/", storefront.ClearCart)
			r.Post("/items", storefront.AddItem)
			r.Patch("/items/{productID}", storefront.AdjustItem)
			r.Delete("/items/{productID}", storefront.RemoveItem)
		})

		r.Get("/checkout", checkout.View)
		r.Post("/checkout", checkout.Submit)
		r.Get("/order-status", checkout.OrderStatus)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.Login)
			r.Post("/register", auth.Register)
			r.Post("/logout", auth.Logout)
			r.Get("/session", auth.Session)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(a.Auth, logger, model.RoleAdmin))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/products", admin.ListProducts)
				r.Post("/products", admin.CreateProduct)
				r.Put("/products/{productID}", admin.UpdateProduct)
				r.Delete("/products/{productID}", admin.DeleteProduct)
				r.Get("/orders", admin.Orders)
			})

			r.Route("/edit", func(r chi.Router) {
				r.Get("/", edit.View)
				r.Post("/shop/{productID}", edit.AddToShop)
				r.Delete("/shop/{productID}", edit.RemoveFromShop)
				r.Patch("/reserve/{productID}", edit.EditReserve)
				r.Post("/save", edit.Save)
			})
		})
	})

	return r
}
